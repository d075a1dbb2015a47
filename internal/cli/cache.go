package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tagcloud/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached layout and artifact",
		Long: `Remove every cached layout and artifact from the configured backend.

The file backend deletes its entry files. Redis deletes the keys under the
configured prefix and MongoDB empties the cache collection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheClear(cmd.Context())
		},
	}
}

func (c *CLI) runCacheClear(ctx context.Context) error {
	ch, err := c.openCache(ctx, false)
	if err != nil {
		return err
	}
	defer ch.Close()

	n, err := cache.Clear(ctx, ch)
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	if n == 0 {
		printInfo("Cache is empty")
		return nil
	}
	printSuccess("Cleared %d cached entries", n)
	printDetail("Backend: %s", c.cacheLocation())
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(c.cacheLocation())
			return nil
		},
	}
}

// cacheLocation describes the configured backend: a directory for the
// file backend, an address for the network backends.
func (c *CLI) cacheLocation() string {
	cfg := c.Config.Cache
	switch cfg.Backend {
	case cache.BackendRedis:
		return fmt.Sprintf("redis://%s/%d (prefix %s)", cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Prefix)
	case cache.BackendMongo:
		return fmt.Sprintf("%s (%s.%s)", cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	case cache.BackendMemory, cache.BackendNone:
		return cfg.Backend
	}
	if cfg.Dir != "" {
		return cfg.Dir
	}
	dir, err := cacheDir()
	if err != nil {
		return "unavailable: " + err.Error()
	}
	return dir
}
