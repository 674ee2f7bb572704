// Package buildenv is the seam between the generator core and the external
// build system: it describes one binary module (name, source folder, build
// flags, define sets) and enumerates the module's header files the way the
// orchestrator expects them: every .h under the source folder,
// exclude globs applied, the well-known API-definitions header skipped for
// the core module, the result sorted for determinism.
package buildenv

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/flaxengine/bindgen/internal/bgerr"
)

// CoreAPIDefinitionsHeader is the header that declares the API_* macros
// themselves; it carries no bindable declarations and parsing it from the
// core module would only produce noise.
const CoreAPIDefinitionsHeader = "Config.h"

// ModuleOptions describes one module as handed over by the build system.
type ModuleOptions struct {
	Name         string
	BinaryModule string
	SourceFolder string
	IsCoreModule bool

	// Include and exclude are doublestar globs matched against paths
	// relative to SourceFolder; an empty include list means "everything".
	IncludeGlobs []string
	ExcludeGlobs []string

	PublicDefines     []string
	PrivateDefines    []string
	CompileEnvDefines []string
}

// Header is one enumerated source header with the metadata the cache key
// needs.
type Header struct {
	Path         string
	ModTimeTicks int64
}

// CollectHeaders walks the module's source folder for .h files, applies the
// glob filters and the core-module API-definitions skip, and returns the
// list sorted by path.
func CollectHeaders(opts ModuleOptions) ([]Header, error) {
	var headers []Header
	err := filepath.WalkDir(opts.SourceFolder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".h") {
			return nil
		}
		rel, relErr := filepath.Rel(opts.SourceFolder, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		if opts.IsCoreModule && filepath.Base(path) == CoreAPIDefinitionsHeader {
			return nil
		}
		if !matchesAny(rel, opts.IncludeGlobs, true) || matchesAny(rel, opts.ExcludeGlobs, false) {
			return nil
		}
		info, statErr := d.Info()
		if statErr != nil {
			return statErr
		}
		headers = append(headers, Header{Path: path, ModTimeTicks: info.ModTime().UnixNano()})
		return nil
	})
	if err != nil {
		return nil, bgerr.Wrap(bgerr.KindIO, opts.SourceFolder, 0, err)
	}
	sort.Slice(headers, func(i, j int) bool { return headers[i].Path < headers[j].Path })
	return headers, nil
}

// matchesAny reports whether rel matches one of patterns; empty pattern
// lists fall back to emptyResult (include lists default to "match all",
// exclude lists to "match none"). Patterns without a path separator are
// also tried against the basename, the same convenience the engine's file
// walker offers.
func matchesAny(rel string, patterns []string, emptyResult bool) bool {
	if len(patterns) == 0 {
		return emptyResult
	}
	for _, pattern := range patterns {
		if ok, err := doublestar.PathMatch(pattern, rel); err == nil && ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, err := doublestar.PathMatch(pattern, filepath.Base(rel)); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// GeneratorModTime returns the generator binary's own last-write timestamp,
// one of the cache-key inputs: rebuilding the generator invalidates
// every snapshot it ever wrote.
func GeneratorModTime() int64 {
	exe, err := os.Executable()
	if err != nil {
		return 0
	}
	info, err := os.Stat(exe)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}
