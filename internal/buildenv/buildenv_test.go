package buildenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("// header\n"), 0o644))
	}
}

func paths(headers []Header, root string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		rel, _ := filepath.Rel(root, h.Path)
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func TestCollectHeadersSortedAndFiltered(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "Zeta.h", "Alpha.h", "Sub/Nested.h", "Notes.txt", "Impl.cpp")

	headers, err := CollectHeaders(ModuleOptions{Name: "Core", SourceFolder: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha.h", "Sub/Nested.h", "Zeta.h"}, paths(headers, root))
	for _, h := range headers {
		assert.NotZero(t, h.ModTimeTicks)
	}
}

func TestCollectHeadersExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "Keep.h", "Internal/Hidden.h", "Internal/Deep/Also.h")

	headers, err := CollectHeaders(ModuleOptions{
		Name:         "Core",
		SourceFolder: root,
		ExcludeGlobs: []string{"Internal/**"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Keep.h"}, paths(headers, root))
}

func TestCollectHeadersIncludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "Api/Foo.h", "Api/Bar.h", "Private/Baz.h")

	headers, err := CollectHeaders(ModuleOptions{
		Name:         "Core",
		SourceFolder: root,
		IncludeGlobs: []string{"Api/**"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Api/Bar.h", "Api/Foo.h"}, paths(headers, root))
}

func TestCoreModuleSkipsAPIDefinitionsHeader(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "Config.h", "Foo.h")

	core, err := CollectHeaders(ModuleOptions{Name: "Core", SourceFolder: root, IsCoreModule: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo.h"}, paths(core, root))

	other, err := CollectHeaders(ModuleOptions{Name: "Other", SourceFolder: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"Config.h", "Foo.h"}, paths(other, root))
}

func TestBasenamePatternMatching(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "Deep/Nested/Skip.h", "Keep.h")

	headers, err := CollectHeaders(ModuleOptions{
		Name:         "Core",
		SourceFolder: root,
		ExcludeGlobs: []string{"Skip.h"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Keep.h"}, paths(headers, root))
}
