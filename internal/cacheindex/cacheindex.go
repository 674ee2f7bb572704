// Package cacheindex keeps a small queryable side table of cache activity.
// The binary snapshot files written by internal/cache remain the cache of
// record; this index only records per-module runs — hit or miss,
// header count, duration, the define sets in effect — so the CLI's
// "cache stats" surface can answer questions without decoding snapshots.
package cacheindex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Run is one recorded generator pass over a single module.
type Run struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	Module   string `gorm:"type:varchar(255);index"`
	CacheHit bool
	Reason   string `gorm:"type:varchar(255)"` // miss reason, empty on a hit

	HeaderCount int
	TypeCount   int
	DurationMS  int64

	// Defines serializes the three definition sets the run was keyed by.
	Defines datatypes.JSON `gorm:"type:jsonb"`

	Platform      string `gorm:"type:varchar(50)"`
	Architecture  string `gorm:"type:varchar(50)"`
	Configuration string `gorm:"type:varchar(50)"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

// DefineSets is the JSON payload stored in Run.Defines.
type DefineSets struct {
	Public     []string `json:"public"`
	Private    []string `json:"private"`
	CompileEnv []string `json:"compileEnv"`
}

// Open connects to the index database at dsn (a file path) and migrates the
// schema. The pure-Go sqlite driver keeps the generator cgo-free.
func Open(dsn string, debug bool) (*gorm.DB, error) {
	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
	}

	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	} else {
		config.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

// Record inserts one run row, assigning it a fresh id when the caller left
// it empty, and returns the id.
func Record(db *gorm.DB, run *Run, defines DefineSets) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	payload, err := json.Marshal(defines)
	if err != nil {
		payload = []byte("{}")
	}
	run.Defines = datatypes.JSON(payload)
	if err := db.Create(run).Error; err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return run.ID, nil
}

// Stats summarizes the recorded runs of one module; Summarize returns one
// per module, ordered by module name.
type Stats struct {
	Module    string
	Runs      int64
	Hits      int64
	LastRunAt time.Time
}

// Summarize aggregates the run table for the "cache stats" command.
func Summarize(db *gorm.DB) ([]Stats, error) {
	var out []Stats
	err := db.Model(&Run{}).
		Select("module, COUNT(*) AS runs, SUM(CASE WHEN cache_hit THEN 1 ELSE 0 END) AS hits").
		Group("module").
		Order("module").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("summarize runs: %w", err)
	}
	// An aggregate over created_at loses the column's datetime type, so the
	// newest run of each module is read back as a row instead.
	for i := range out {
		var last Run
		if err := db.Where("module = ?", out[i].Module).Order("created_at DESC").Take(&last).Error; err != nil {
			return nil, fmt.Errorf("summarize runs: %w", err)
		}
		out[i].LastRunAt = last.CreatedAt
	}
	return out, nil
}

// Recent returns the latest n runs across all modules.
func Recent(db *gorm.DB, n int) ([]Run, error) {
	var out []Run
	err := db.Order("created_at DESC").Limit(n).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// Clear drops every recorded run, for "cache clear".
func Clear(db *gorm.DB) (int64, error) {
	res := db.Where("1 = 1").Delete(&Run{})
	if res.Error != nil {
		return 0, fmt.Errorf("clear runs: %w", res.Error)
	}
	return res.RowsAffected, nil
}
