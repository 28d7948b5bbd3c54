package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbtool/jbt/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:          "cache",
	Short:        "Manage the compiled-artifact cache",
	SilenceUsage: true,
}

var cacheStatsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show cache entry count and artifact size",
	RunE:         runCacheStats,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

var cacheClearCmd = &cobra.Command{
	Use:          "clear",
	Short:        "Remove all cached entries and artifacts",
	RunE:         runCacheClear,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheStats(cmd *cobra.Command, argv []string) error {
	store, err := cache.OpenStore("")
	if err != nil {
		return err
	}

	defer store.Close()

	count, size, err := store.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Entries: %d\n", count)
	fmt.Printf("Size: %s\n", formatSize(size))

	return nil
}

func runCacheClear(cmd *cobra.Command, argv []string) error {
	store, err := cache.OpenStore("")
	if err != nil {
		return err
	}

	defer store.Close()

	if err := store.Clear(); err != nil {
		return err
	}

	fmt.Println("Cache cleared.")

	return nil
}

func formatSize(bytes int64) string {
	const unit = 1024

	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
