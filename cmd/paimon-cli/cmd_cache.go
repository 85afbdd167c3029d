package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"paimon-cli/internal/cache"
)

// Cache-related flags.
var cacheWarehouse string

// initCacheCommands initializes all cache-related commands.
func initCacheCommands() {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Row count cache operations",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List cached row counts",
		Args:  cobra.NoArgs,
		RunE:  runCacheList,
	}
	cacheCmd.AddCommand(listCmd)

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete cached row counts",
		Args:  cobra.NoArgs,
		RunE:  runCacheClean,
	}
	cleanCmd.Flags().StringVar(&cacheWarehouse, "warehouse", "", "Only delete entries of this warehouse")
	cacheCmd.AddCommand(cleanCmd)

	rootCmd.AddCommand(cacheCmd)
}

// openCacheForCommand opens the cache even when caching is disabled in the
// settings, so old entries can still be listed and removed.
func openCacheForCommand(a *app) (*cache.Cache, error) {
	path, err := a.cachePath()
	if err != nil {
		return nil, err
	}
	a.logger.Debugf("opening cache at %s", path)
	c, err := cache.OpenWithDependencies(cache.DefaultConfig().WithCachePath(path), a.logger, afero.NewOsFs())
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return c, nil
}

// runCacheList implements the cache list command.
func runCacheList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	defer a.close()

	c, err := openCacheForCommand(a)
	if err != nil {
		return err
	}
	defer closeQuietly(a.logger, "cache", c)

	output, err := c.Summary()
	if err != nil {
		return fmt.Errorf("failed to list cache contents: %w", err)
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}

// runCacheClean implements the cache clean command.
func runCacheClean(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	defer a.close()

	c, err := openCacheForCommand(a)
	if err != nil {
		return err
	}
	defer closeQuietly(a.logger, "cache", c)

	removed, err := c.Clean(cacheWarehouse)
	if err != nil {
		return fmt.Errorf("failed to clean cache: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d cached row count(s) from %s\n", removed, c.Path())
	return nil
}
