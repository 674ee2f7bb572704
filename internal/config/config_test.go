package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "Cache/Intermediate", cfg.IntermediateFolder)
	assert.Equal(t, "Development", cfg.Configuration)
	assert.Greater(t, cfg.Workers, 0)
	assert.Empty(t, cfg.PublicDefines)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("BINDGEN_CONFIGURATION", "Release")
	t.Setenv("BINDGEN_PLATFORM", "Windows")
	t.Setenv("BINDGEN_WORKERS", "3")
	t.Setenv("BINDGEN_PUBLIC_DEFINES", "FLAX_EDITOR;USE_NETWORKING=1; ;")

	cfg := Load()
	assert.Equal(t, "Release", cfg.Configuration)
	assert.Equal(t, "Windows", cfg.Platform)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, []string{"FLAX_EDITOR", "USE_NETWORKING=1"}, cfg.PublicDefines)
}

func TestLoadIgnoresInvalidWorkerCount(t *testing.T) {
	t.Setenv("BINDGEN_WORKERS", "not-a-number")
	cfg := Load()
	assert.Greater(t, cfg.Workers, 0)
}
