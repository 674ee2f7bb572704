package orchestrator

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaxengine/bindgen/internal/buildenv"
	"github.com/flaxengine/bindgen/internal/buildlog"
	"github.com/flaxengine/bindgen/internal/config"
)

const testHeader = `API_CLASS() class FLAX_API Foo
{
API_FUNCTION() int Bar(float x);
};
`

func testSetup(t *testing.T) (*config.Config, buildenv.ModuleOptions, string) {
	t.Helper()
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "Source", "Core")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))
	headerPath := filepath.Join(srcDir, "Foo.h")
	require.NoError(t, os.WriteFile(headerPath, []byte(testHeader), 0o644))

	cfg := &config.Config{
		IntermediateFolder: filepath.Join(dir, "Cache"),
		ProjectFolder:      dir,
		Platform:           "Linux",
		Architecture:       "x64",
		Configuration:      "Development",
		Workers:            1,
	}
	opts := buildenv.ModuleOptions{Name: "Core", BinaryModule: "Core", SourceFolder: srcDir}
	return cfg, opts, headerPath
}

func newTestOrchestrator(cfg *config.Config) *Orchestrator {
	return &Orchestrator{Config: cfg, Log: buildlog.New(io.Discard, buildlog.LevelError)}
}

func TestRunGeneratesBindings(t *testing.T) {
	cfg, opts, _ := testSetup(t)

	results := newTestOrchestrator(cfg).Run([]buildenv.ModuleOptions{opts})
	require.Len(t, results, 1)
	res := results[0]
	require.Empty(t, res.Error)
	assert.True(t, res.Generated)
	assert.False(t, res.CacheHit)
	assert.NotEmpty(t, res.RunID)

	out, err := os.ReadFile(res.NativePath)
	require.NoError(t, err)
	assert.Contains(t, string(out), `ADD_INTERNAL_CALL("Foo::Internal_Bar", &Internal_Bar);`)

	// Binary-module descriptor pair.
	for _, name := range []string{"Core.Gen.h", "Core.Gen.cpp"} {
		_, err := os.Stat(filepath.Join(cfg.ProjectFolder, "Source", name))
		assert.NoError(t, err)
	}
}

func TestSecondRunHitsCache(t *testing.T) {
	cfg, opts, _ := testSetup(t)

	first := newTestOrchestrator(cfg).Run([]buildenv.ModuleOptions{opts})
	require.Empty(t, first[0].Error)
	require.False(t, first[0].CacheHit)

	second := newTestOrchestrator(cfg).Run([]buildenv.ModuleOptions{opts})
	require.Empty(t, second[0].Error)
	assert.True(t, second[0].CacheHit)
	assert.True(t, second[0].Generated)
}

func TestTouchedHeaderInvalidatesCache(t *testing.T) {
	cfg, opts, headerPath := testSetup(t)

	first := newTestOrchestrator(cfg).Run([]buildenv.ModuleOptions{opts})
	require.Empty(t, first[0].Error)

	// Bump the header's timestamp past the snapshot's recorded one.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(headerPath, future, future))

	third := newTestOrchestrator(cfg).Run([]buildenv.ModuleOptions{opts})
	require.Empty(t, third[0].Error)
	assert.False(t, third[0].CacheHit)
	assert.True(t, third[0].Generated)
}

func TestDiffModeWritesNothing(t *testing.T) {
	cfg, opts, _ := testSetup(t)

	orch := newTestOrchestrator(cfg)
	orch.Diff = true
	results := orch.Run([]buildenv.ModuleOptions{opts})
	require.Empty(t, results[0].Error)
	assert.NotEmpty(t, results[0].DiffText)

	_, err := os.Stat(results[0].NativePath)
	assert.True(t, os.IsNotExist(err))
}

func TestFailingModuleDoesNotAbortOthers(t *testing.T) {
	cfg, opts, _ := testSetup(t)

	badDir := filepath.Join(cfg.ProjectFolder, "Source", "Bad")
	require.NoError(t, os.MkdirAll(badDir, 0o755))
	bad := "API_CLASS() class FLAX_API Broken\n{\n" // unbalanced brace
	require.NoError(t, os.WriteFile(filepath.Join(badDir, "Broken.h"), []byte(bad), 0o644))
	badOpts := buildenv.ModuleOptions{Name: "Bad", BinaryModule: "Bad", SourceFolder: badDir}

	results := newTestOrchestrator(cfg).Run([]buildenv.ModuleOptions{badOpts, opts})
	require.Len(t, results, 2)
	assert.NotEmpty(t, results[0].Error)
	assert.Empty(t, results[1].Error)
	assert.True(t, results[1].Generated)
}

func TestParallelParseIsDeterministic(t *testing.T) {
	cfg, opts, _ := testSetup(t)
	for _, name := range []string{"Alpha.h", "Mid.h", "Zeta.h"} {
		src := "API_STRUCT() struct FLAX_API S" + name[:1] + "\n{\nAPI_FIELD() int32 A;\n};\n"
		require.NoError(t, os.WriteFile(filepath.Join(opts.SourceFolder, name), []byte(src), 0o644))
	}
	cfg.Workers = 4

	first := newTestOrchestrator(cfg).Run([]buildenv.ModuleOptions{opts})
	require.Empty(t, first[0].Error)
	firstOut, err := os.ReadFile(first[0].NativePath)
	require.NoError(t, err)

	// Force a reparse and compare outputs byte for byte.
	require.NoError(t, os.Remove(filepath.Join(cfg.IntermediateFolder, "Core.bindings.cache")))
	second := newTestOrchestrator(cfg).Run([]buildenv.ModuleOptions{opts})
	require.Empty(t, second[0].Error)
	secondOut, err := os.ReadFile(second[0].NativePath)
	require.NoError(t, err)

	assert.Equal(t, string(firstOut), string(secondOut))
}
