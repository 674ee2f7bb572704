// Package orchestrator drives the generation pipeline for each module:
// header enumeration, cache probe, parse (optionally parallel across
// headers), semantic init, cache save and native glue emission, surfacing
// a BindingsResult per module. A failing module is logged and reported but
// never aborts unrelated modules.
package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
	"gorm.io/gorm"

	"github.com/flaxengine/bindgen/internal/buildenv"
	"github.com/flaxengine/bindgen/internal/buildlog"
	"github.com/flaxengine/bindgen/internal/cache"
	"github.com/flaxengine/bindgen/internal/cacheindex"
	"github.com/flaxengine/bindgen/internal/config"
	"github.com/flaxengine/bindgen/internal/emitter"
	"github.com/flaxengine/bindgen/internal/model"
	"github.com/flaxengine/bindgen/internal/parser"
	"github.com/flaxengine/bindgen/internal/preproc"
	"github.com/flaxengine/bindgen/internal/resolver"
	"github.com/flaxengine/bindgen/internal/semantic"
)

// Versions stamped into JSON results so CI consumers can detect shape and
// generator drift independently.
const (
	ToolVersion   = "1.0.0"
	SchemaVersion = 1
)

// BindingsResult records the outcome for one module: the two glue
// output paths and whether any bindings were generated at all.
type BindingsResult struct {
	ToolVersion   string `json:"toolVersion"`
	SchemaVersion int    `json:"schemaVersion"`

	RunID      string `json:"runId"`
	Module     string `json:"module"`
	NativePath string `json:"nativePath,omitempty"`
	CSharpPath string `json:"csharpPath,omitempty"`
	Generated  bool   `json:"generated"`
	CacheHit   bool   `json:"cacheHit"`
	DiffText   string `json:"diff,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Orchestrator processes modules sequentially, parallelizing within one
// module across headers.
type Orchestrator struct {
	Config *config.Config
	Log    *buildlog.Logger
	Index  *gorm.DB // optional cache-run index; nil disables recording

	// DryRun computes everything but writes no output files.
	DryRun bool

	// Diff renders a unified diff between the previous on-disk output and
	// the freshly emitted one instead of writing, for "generate --diff".
	Diff bool
}

// Run processes each module in order and returns one result per module.
// The shared resolver build grows as modules complete so later modules can
// reference earlier ones.
func (o *Orchestrator) Run(modules []buildenv.ModuleOptions) []BindingsResult {
	build := resolver.NewBuild(nil)
	results := make([]BindingsResult, 0, len(modules))
	for _, opts := range modules {
		res := o.runModule(opts, build)
		if res.Error != "" {
			o.Log.Errorf("%s", res.Error)
		}
		results = append(results, res)
	}
	return results
}

func (o *Orchestrator) runModule(opts buildenv.ModuleOptions, build *resolver.Build) BindingsResult {
	started := time.Now()
	res := BindingsResult{
		ToolVersion:   ToolVersion,
		SchemaVersion: SchemaVersion,
		RunID:         uuid.NewString(),
		Module:        opts.Name,
	}

	headers, err := buildenv.CollectHeaders(opts)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if len(headers) == 0 {
		return res
	}

	key := o.cacheKey(opts, headers)
	cachePath := filepath.Join(o.Config.IntermediateFolder, opts.Name+".bindings.cache")

	var module *model.Module
	load := cache.LoadFile(cachePath, key)
	if load.Hit {
		module = load.Module
		o.Log.Debugf("%s: cache hit", opts.Name)
		build.AddModule(module)
		semantic.Relink(module, build)
	} else {
		o.Log.Debugf("%s: cache miss (%s)", opts.Name, load.Reason)
		module, err = o.parseModule(opts, headers, build)
		if err != nil {
			res.Error = err.Error()
			o.recordRun(opts, res, headers, started, load.Reason, 0)
			return res
		}
		if err := semantic.Analyze(module, build); err != nil {
			res.Error = err.Error()
			o.recordRun(opts, res, headers, started, load.Reason, countTypes(module))
			return res
		}
		if !o.DryRun && !o.Diff {
			if err := cache.SaveFile(cachePath, key, module); err != nil {
				// A failed save only costs the next run a reparse.
				o.Log.Warnf("%s: cache save failed: %v", opts.Name, err)
			}
		}
	}
	res.CacheHit = load.Hit

	out, err := emitter.Emit(build, module)
	if err != nil {
		res.Error = err.Error()
		o.recordRun(opts, res, headers, started, load.Reason, countTypes(module))
		return res
	}

	res.NativePath = filepath.Join(o.Config.IntermediateFolder, opts.Name+".Bindings.Gen.cpp")
	res.CSharpPath = filepath.Join(o.Config.IntermediateFolder, opts.Name+".Bindings.Gen.cs")
	res.Generated = true
	if o.Diff {
		prev, _ := os.ReadFile(res.NativePath)
		text, diffErr := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(prev)),
			B:        difflib.SplitLines(string(out)),
			FromFile: res.NativePath,
			ToFile:   res.NativePath + " (regenerated)",
			Context:  3,
		})
		if diffErr == nil {
			res.DiffText = text
		}
	} else if !o.DryRun {
		if err := os.MkdirAll(filepath.Dir(res.NativePath), 0o755); err != nil {
			res.Error = err.Error()
			return res
		}
		if err := os.WriteFile(res.NativePath, out, 0o644); err != nil {
			res.Error = err.Error()
			return res
		}
		if err := o.writeBinaryModuleDescriptor(opts); err != nil {
			res.Error = err.Error()
			return res
		}
	}
	o.recordRun(opts, res, headers, started, load.Reason, countTypes(module))
	o.Log.Infof("%s: bindings generated (%d headers, %s)", opts.Name, len(headers), time.Since(started).Round(time.Millisecond))
	return res
}

// parseModule parses every header into a fresh Module, across the worker
// pool when more than one worker is configured. File nodes land in
// completion order under parallelism, so the module's children are
// re-sorted by path before initialization.
func (o *Orchestrator) parseModule(opts buildenv.ModuleOptions, headers []buildenv.Header, build *resolver.Build) (*model.Module, error) {
	module := &model.Module{
		Base:     model.Base{Name: opts.Name},
		ID:       opts.Name,
		FilePath: opts.SourceFolder,
	}
	build.AddModule(module)

	workers := o.Config.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(headers) {
		workers = len(headers)
	}

	parseOne := func(h buildenv.Header) error {
		src, err := os.ReadFile(h.Path)
		if err != nil {
			return fmt.Errorf("%s: %w", h.Path, err)
		}
		pre := preproc.New(
			preproc.FromList(opts.PublicDefines),
			preproc.FromList(opts.PrivateDefines),
			preproc.FromList(opts.CompileEnvDefines))
		_, err = parser.ParseFile(h.Path, src, module, pre, parser.UnknownTagHooks{
			OnUnknownTag: func(tag, file string, line int) {
				o.Log.Warnf("%s(%d): unknown tag %q ignored", file, line, tag)
			},
		})
		return err
	}

	if workers == 1 {
		for _, h := range headers {
			if err := parseOne(h); err != nil {
				return nil, err
			}
		}
	} else {
		jobs := make(chan buildenv.Header)
		errs := make(chan error, len(headers))
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for h := range jobs {
					errs <- parseOne(h)
				}
			}()
		}
		for _, h := range headers {
			jobs <- h
		}
		close(jobs)
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}

	sortFilesByPath(module)
	return module, nil
}

// countTypes tallies the type definitions across a module's files, for the
// cache-index telemetry row.
func countTypes(module *model.Module) int {
	if module == nil {
		return 0
	}
	n := 0
	for _, f := range module.Children {
		n += len(f.Info().Children)
	}
	return n
}

// sortFilesByPath re-sorts a module's File children by path, restoring
// determinism after parallel insertion.
func sortFilesByPath(module *model.Module) {
	sort.SliceStable(module.Children, func(i, j int) bool {
		fi, iok := module.Children[i].(*model.File)
		fj, jok := module.Children[j].(*model.File)
		if !iok || !jok {
			return iok && !jok
		}
		return fi.Path < fj.Path
	})
}

func (o *Orchestrator) cacheKey(opts buildenv.ModuleOptions, headers []buildenv.Header) cache.Key {
	entries := make([]cache.HeaderEntry, len(headers))
	for i, h := range headers {
		entries[i] = cache.HeaderEntry{Path: h.Path, ModTime: h.ModTimeTicks}
	}
	return cache.Key{
		IntermediateFolder: o.Config.IntermediateFolder,
		Platform:           o.Config.Platform,
		Architecture:       o.Config.Architecture,
		Configuration:      o.Config.Configuration,
		PublicDefines:      opts.PublicDefines,
		PrivateDefines:     opts.PrivateDefines,
		CompileEnvDefines:  opts.CompileEnvDefines,
		Headers:            entries,
		GeneratorModTime:   buildenv.GeneratorModTime(),
	}
}

// writeBinaryModuleDescriptor emits the binary-module descriptor pair:
// {ProjectFolder}/Source/{BinaryModuleName}.Gen.h and .cpp declaring the
// module's entry point and the GetBinaryModule accessor the glue references.
func (o *Orchestrator) writeBinaryModuleDescriptor(opts buildenv.ModuleOptions) error {
	binaryName := opts.BinaryModule
	if binaryName == "" {
		binaryName = opts.Name
	}
	dir := filepath.Join(o.Config.ProjectFolder, "Source")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	header := fmt.Sprintf(`// This code was automatically generated.
// Changes to this file will be lost if the code is regenerated.

#pragma once

#include "Engine/Scripting/BinaryModule.h"

extern "C" BinaryModule* GetBinaryModule%s();
`, opts.Name)

	source := fmt.Sprintf(`// This code was automatically generated.
// Changes to this file will be lost if the code is regenerated.

#include "%s.Gen.h"

BinaryModule* GetBinaryModule%s()
{
    static NativeBinaryModule module(StringAnsiView("%s"));
    return &module;
}
`, binaryName, opts.Name, binaryName)

	if err := os.WriteFile(filepath.Join(dir, binaryName+".Gen.h"), []byte(header), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, binaryName+".Gen.cpp"), []byte(source), 0o644)
}

func (o *Orchestrator) recordRun(opts buildenv.ModuleOptions, res BindingsResult, headers []buildenv.Header, started time.Time, missReason string, typeCount int) {
	if o.Index == nil {
		return
	}
	run := &cacheindex.Run{
		ID:            res.RunID,
		Module:        opts.Name,
		CacheHit:      res.CacheHit,
		Reason:        missReason,
		HeaderCount:   len(headers),
		TypeCount:     typeCount,
		DurationMS:    time.Since(started).Milliseconds(),
		Platform:      o.Config.Platform,
		Architecture:  o.Config.Architecture,
		Configuration: o.Config.Configuration,
	}
	defines := cacheindex.DefineSets{
		Public:     opts.PublicDefines,
		Private:    opts.PrivateDefines,
		CompileEnv: opts.CompileEnvDefines,
	}
	if _, err := cacheindex.Record(o.Index, run, defines); err != nil {
		o.Log.Warnf("%s: cache index record failed: %v", opts.Name, err)
	}
}
