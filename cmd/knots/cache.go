package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/knots-cli/knots/internal/cache"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the per-file result cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached result",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the number and size of cached results",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache() (*cache.Cache, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	c, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
	if err != nil {
		return nil, "", fmt.Errorf("opening cache: %w", err)
	}
	return c, cfg.Cache.Dir, nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	c, dir, err := openCache()
	if err != nil {
		return err
	}
	if err := c.Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	color.Green("Cleared %s", dir)
	return nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	c, dir, err := openCache()
	if err != nil {
		return err
	}
	stats, err := c.GetStats()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Cache directory: %s\n", dir)
	fmt.Fprintf(out, "Entries:         %d\n", stats.Entries)
	fmt.Fprintf(out, "Size:            %d bytes\n", stats.TotalSize)
	return nil
}
