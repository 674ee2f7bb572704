package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flaxengine/bindgen/internal/cache"
	"github.com/flaxengine/bindgen/internal/cacheindex"
	"github.com/flaxengine/bindgen/internal/config"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the bindings cache",
	}
	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheClearCmd())
	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	var recent int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-module cache hit rates and snapshot keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db, err := cacheindex.Open(cfg.CacheIndexDSN, false)
			if err != nil {
				return fmt.Errorf("open cache index: %w", err)
			}

			stats, err := cacheindex.Summarize(db)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODULE\tRUNS\tHITS\tLAST RUN")
			for _, s := range stats {
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", s.Module, s.Runs, s.Hits, s.LastRunAt.Format("2006-01-02 15:04:05"))
			}
			w.Flush()

			if recent > 0 {
				runs, err := cacheindex.Recent(db, recent)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout())
				for _, r := range runs {
					outcome := "miss"
					if r.CacheHit {
						outcome = "hit"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s (%d headers, %d types, %dms)\n",
						r.CreatedAt.Format("15:04:05"), r.Module, outcome, r.HeaderCount, r.TypeCount, r.DurationMS)
				}
			}

			// Snapshot keys straight from the binary cache files, without
			// decoding the node bodies.
			snapshots, _ := filepath.Glob(filepath.Join(cfg.IntermediateFolder, "*.bindings.cache"))
			for _, path := range snapshots {
				key, err := cache.Peek(path)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: unreadable (%v)\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s/%s/%s, %d headers\n",
					filepath.Base(path), key.Platform, key.Architecture, key.Configuration, len(key.Headers))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&recent, "recent", 0, "Also list the N most recent runs")
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete cache snapshots and the run index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			snapshots, _ := filepath.Glob(filepath.Join(cfg.IntermediateFolder, "*.bindings.cache"))
			removed := 0
			for _, path := range snapshots {
				if err := os.Remove(path); err == nil {
					removed++
				}
			}

			cleared := int64(0)
			if db, err := cacheindex.Open(cfg.CacheIndexDSN, false); err == nil {
				cleared, _ = cacheindex.Clear(db)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d snapshots, cleared %d index rows\n", removed, cleared)
			return nil
		},
	}
}
