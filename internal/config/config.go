// Package config assembles the generator's runtime configuration from three
// layers, lowest priority first: built-in defaults, a .env file plus process
// environment (loaded with godotenv), and explicit CLI flags applied by the
// command layer on top.
package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries everything the orchestrator needs to process modules: the
// output folders, the build-environment triple the cache is keyed by,
// the three preprocessor definition sets, worker count and the cache
// index location.
type Config struct {
	IntermediateFolder string
	ProjectFolder      string

	Platform      string
	Architecture  string
	Configuration string

	PublicDefines     []string
	PrivateDefines    []string
	CompileEnvDefines []string

	Workers       int
	CacheIndexDSN string

	Verbose bool
}

// Load builds a Config from defaults overlaid with environment variables.
// A .env file in the working directory is honored when present; a missing
// file is not an error.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		IntermediateFolder: getenv("BINDGEN_INTERMEDIATE", "Cache/Intermediate"),
		ProjectFolder:      getenv("BINDGEN_PROJECT", "."),
		Platform:           getenv("BINDGEN_PLATFORM", runtime.GOOS),
		Architecture:       getenv("BINDGEN_ARCH", runtime.GOARCH),
		Configuration:      getenv("BINDGEN_CONFIGURATION", "Development"),
		Workers:            runtime.NumCPU(),
		CacheIndexDSN:      getenv("BINDGEN_CACHE_INDEX", "Cache/bindgen-index.db"),
	}
	if v := os.Getenv("BINDGEN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	cfg.PublicDefines = splitDefines(os.Getenv("BINDGEN_PUBLIC_DEFINES"))
	cfg.PrivateDefines = splitDefines(os.Getenv("BINDGEN_PRIVATE_DEFINES"))
	cfg.CompileEnvDefines = splitDefines(os.Getenv("BINDGEN_COMPILE_ENV_DEFINES"))
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitDefines parses a ";"-separated define list, dropping empty entries.
func splitDefines(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, d := range strings.Split(raw, ";") {
		d = strings.TrimSpace(d)
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}
