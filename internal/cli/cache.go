package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/feedwatch/sourcegrid/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response and rows cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached responses and packed rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			// --no-cache must not turn clear into a no-op
			opts, err := cfg.CacheOptions(false)
			if err != nil {
				return err
			}
			ch, err := cache.Open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer ch.Close()

			w := cmd.OutOrStdout()
			clearer, ok := ch.(cache.Clearer)
			if !ok {
				printInfo(w, "Cache backend %q keeps nothing to clear", opts.Backend)
				return nil
			}
			n, err := clearer.Clear(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess(w, "Cleared %d cached entries", n)
			printDetail(w, "%s", cacheLocation(opts))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := cfg.CacheOptions(false)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cacheLocation(opts))
			return nil
		},
	}
}

// cacheLocation describes where opts stores entries.
func cacheLocation(opts cache.Options) string {
	switch opts.Backend {
	case cache.BackendRedis:
		return "redis://" + opts.Redis.Addr + "/" + fmt.Sprint(opts.Redis.DB)
	case cache.BackendNone:
		return "(disabled)"
	default:
		return opts.Dir
	}
}
