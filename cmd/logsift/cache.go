package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/logsift/pkg/daemon"
	"github.com/jamesainslie/logsift/pkg/logsift/cache"
	"github.com/jamesainslie/logsift/pkg/logsift/config"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the result cache",
	Long: `Commands for managing the logsift result cache.

The cache stores extraction and analysis results keyed by archive content, so
repeat runs over the same archive skip decompression. Cache data is stored in
the XDG cache directory (typically ~/.cache/logsift/results).`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached results",
	Long:  `Removes all cached results. The daemon holds the cache open, so stop it first.`,
	RunE:  runCacheClear,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Long:  `Displays the cache location, its size on disk, and the number of live entries.`,
	RunE:  runCacheStats,
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show cache location",
	Long:  `Prints the path to the cache directory.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.CachePath())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}

var errCacheBusy = errors.New("cache is in use by the running daemon (stop it with: logsift daemon stop)")

// openCacheDirect opens the cache for maintenance, failing clearly when the
// daemon holds it.
func openCacheDirect(cfg *config.Config) (*cache.Cache, error) {
	if daemon.IsDaemonRunning(cfg.PIDPath()) {
		return nil, errCacheBusy
	}
	return cache.Open(cfg.CachePath(), cfg.Cache.TTL)
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.CachePath()); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "Cache is already empty.")
		return nil
	}

	c, err := openCacheDirect(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
	return nil
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	cachePath := cfg.CachePath()

	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		fmt.Fprintln(out, "Cache: empty (no cache directory)")
		fmt.Fprintf(out, "Cache location: %s\n", cachePath)
		return nil
	}

	size, files, err := dirSize(cachePath)
	if err != nil {
		return fmt.Errorf("failed to calculate cache size: %w", err)
	}

	fmt.Fprintf(out, "Cache location: %s\n", cachePath)
	fmt.Fprintf(out, "Cache enabled: %t\n", cfg.Cache.Enabled)
	fmt.Fprintf(out, "Cache TTL: %s\n", cfg.Cache.TTL)
	fmt.Fprintf(out, "Cache size: %s in %d files\n", types.FormatSize(size), files)

	c, err := openCacheDirect(cfg)
	if err != nil {
		// Entry counts come from the daemon's status while it runs.
		printVerbose("entry counts unavailable: %v", err)
		return nil
	}
	defer c.Close()

	stats, err := c.Stats()
	if err != nil {
		return fmt.Errorf("failed to count cache entries: %w", err)
	}
	fmt.Fprintf(out, "Extractions: %d\n", stats.Extractions)
	fmt.Fprintf(out, "Analyses: %d\n", stats.Analyses)
	return nil
}

func dirSize(root string) (int64, int, error) {
	var size int64
	var files int
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
			files++
		}
		return nil
	})
	return size, files, err
}
