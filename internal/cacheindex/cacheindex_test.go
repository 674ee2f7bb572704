package cacheindex

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesParentDirectory(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "index", "runs.db"), false)
	require.NoError(t, err)
	require.NotNil(t, db)
}

func TestRecordAssignsRunID(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"), false)
	require.NoError(t, err)

	id, err := Record(db, &Run{Module: "Core", CacheHit: false, HeaderCount: 3}, DefineSets{
		Public: []string{"FLAX_EDITOR"},
	})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
}

func TestSummarizeGroupsByModule(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"), false)
	require.NoError(t, err)

	for _, hit := range []bool{false, true, true} {
		_, err := Record(db, &Run{Module: "Core", CacheHit: hit}, DefineSets{})
		require.NoError(t, err)
	}
	_, err = Record(db, &Run{Module: "Graphics", CacheHit: false}, DefineSets{})
	require.NoError(t, err)

	stats, err := Summarize(db)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "Core", stats[0].Module)
	assert.Equal(t, int64(3), stats[0].Runs)
	assert.Equal(t, int64(2), stats[0].Hits)
	assert.Equal(t, "Graphics", stats[1].Module)
}

func TestRecentAndClear(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"), false)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := Record(db, &Run{Module: "Core"}, DefineSets{})
		require.NoError(t, err)
	}

	runs, err := Recent(db, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	n, err := Clear(db)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	runs, err = Recent(db, 3)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
