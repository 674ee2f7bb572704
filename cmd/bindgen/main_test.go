package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaxengine/bindgen/internal/config"
)

func TestParseModuleArgs(t *testing.T) {
	cfg := &config.Config{PublicDefines: []string{"FLAX_EDITOR"}}
	modules, err := parseModuleArgs([]string{"Core=Source/Core", "Graphics=Source/Graphics"}, "Core", nil, cfg)
	require.NoError(t, err)
	require.Len(t, modules, 2)
	assert.Equal(t, "Core", modules[0].Name)
	assert.Equal(t, "Source/Core", modules[0].SourceFolder)
	assert.True(t, modules[0].IsCoreModule)
	assert.False(t, modules[1].IsCoreModule)
	assert.Equal(t, []string{"FLAX_EDITOR"}, modules[1].PublicDefines)
}

func TestParseModuleArgsRejectsBareName(t *testing.T) {
	_, err := parseModuleArgs([]string{"Core"}, "", nil, &config.Config{})
	require.Error(t, err)
}

func TestGenerateCommandEndToEnd(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "Source", "Core")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))
	header := "API_CLASS() class FLAX_API Foo\n{\nAPI_FUNCTION() int Bar(float x);\n};\n"
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "Foo.h"), []byte(header), 0o644))

	t.Setenv("BINDGEN_INTERMEDIATE", filepath.Join(dir, "Cache"))
	t.Setenv("BINDGEN_PROJECT", dir)
	t.Setenv("BINDGEN_CACHE_INDEX", filepath.Join(dir, "index.db"))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"generate", "Core=" + srcDir, "--json"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), `"generated": true`)
	assert.Contains(t, out.String(), `"module": "Core"`)

	glue, err := os.ReadFile(filepath.Join(dir, "Cache", "Core.Bindings.Gen.cpp"))
	require.NoError(t, err)
	assert.Contains(t, string(glue), "Internal_Bar")
}

func TestCacheStatsAndClear(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BINDGEN_INTERMEDIATE", filepath.Join(dir, "Cache"))
	t.Setenv("BINDGEN_CACHE_INDEX", filepath.Join(dir, "index.db"))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"cache", "stats"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "MODULE")

	out.Reset()
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"cache", "clear"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Removed 0 snapshots")
}
