// Command bindgen generates scripting bindings for annotated C++ modules:
// it parses API-tagged headers into a reflection model, caches the model
// per module, and emits the native glue sources.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/flaxengine/bindgen/internal/buildenv"
	"github.com/flaxengine/bindgen/internal/buildlog"
	"github.com/flaxengine/bindgen/internal/cacheindex"
	"github.com/flaxengine/bindgen/internal/config"
	"github.com/flaxengine/bindgen/internal/orchestrator"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bindgen",
		Short:         "Scripting-bindings generator for annotated C++ modules",
		Version:       orchestrator.ToolVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Flags are case-insensitive, like the API tag parameters they mirror.
	root.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ToLower(name))
	})
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newCacheCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	var (
		jsonOut  bool
		diff     bool
		dryRun   bool
		verbose  bool
		workers  int
		coreName string
		excludes []string
	)

	cmd := &cobra.Command{
		Use:   "generate NAME=SOURCE_FOLDER ...",
		Short: "Generate bindings for one or more modules",
		Long: "Each argument names one module and its source folder, e.g.\n" +
			"  bindgen generate Core=Source/Engine/Core Graphics=Source/Engine/Graphics",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if workers > 0 {
				cfg.Workers = workers
			}
			cfg.Verbose = verbose

			log := buildlog.Default
			if verbose {
				log.SetLevel(buildlog.LevelDebug)
			}

			modules, err := parseModuleArgs(args, coreName, excludes, cfg)
			if err != nil {
				return err
			}

			orch := &orchestrator.Orchestrator{
				Config: cfg,
				Log:    log,
				DryRun: dryRun,
				Diff:   diff,
			}
			if db, err := cacheindex.Open(cfg.CacheIndexDSN, verbose); err == nil {
				orch.Index = db
			} else {
				log.Warnf("cache index unavailable: %v", err)
			}

			results := orch.Run(modules)

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					switch {
					case r.Error != "":
						fmt.Fprintf(cmd.OutOrStdout(), "%s: FAILED: %s\n", r.Module, r.Error)
					case r.DiffText != "":
						fmt.Fprint(cmd.OutOrStdout(), r.DiffText)
					case r.Generated:
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.Module, r.NativePath)
					default:
						fmt.Fprintf(cmd.OutOrStdout(), "%s: no bindings\n", r.Module)
					}
				}
			}

			for _, r := range results {
				if r.Error != "" {
					return fmt.Errorf("%d of %d modules failed", countFailed(results), len(results))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print results as JSON for CI consumption")
	cmd.Flags().BoolVar(&diff, "diff", false, "Print a unified diff against the previous output instead of writing")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and validate but write nothing")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "Worker count for per-header parsing (default: CPU count)")
	cmd.Flags().StringVar(&coreName, "core", "", "Name of the core module (its API-definitions header is skipped)")
	cmd.Flags().StringArrayVar(&excludes, "exclude", nil, "Glob of headers to skip, repeatable (e.g. '**/Internal/**')")
	return cmd
}

func parseModuleArgs(args []string, coreName string, excludes []string, cfg *config.Config) ([]buildenv.ModuleOptions, error) {
	modules := make([]buildenv.ModuleOptions, 0, len(args))
	for _, arg := range args {
		name, folder, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("module argument %q is not NAME=SOURCE_FOLDER", arg)
		}
		modules = append(modules, buildenv.ModuleOptions{
			Name:              name,
			BinaryModule:      name,
			SourceFolder:      folder,
			IsCoreModule:      name == coreName,
			ExcludeGlobs:      excludes,
			PublicDefines:     cfg.PublicDefines,
			PrivateDefines:    cfg.PrivateDefines,
			CompileEnvDefines: cfg.CompileEnvDefines,
		})
	}
	return modules, nil
}

func countFailed(results []orchestrator.BindingsResult) int {
	n := 0
	for _, r := range results {
		if r.Error != "" {
			n++
		}
	}
	return n
}
