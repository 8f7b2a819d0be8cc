package cli

import (
	"github.com/spf13/cobra"

	"github.com/feedwatch/sourcegrid/pkg/buildinfo"
	"github.com/feedwatch/sourcegrid/pkg/config"
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with values
// injected via ldflags at build time.
//
// Parameters:
//   - v: semantic version string (e.g., "v1.2.3")
//   - c: git commit SHA (short or long form)
//   - d: build timestamp (e.g., "2025-12-20T14:32:01Z")
func SetVersion(v, c, d string) {
	buildinfo.Version = v
	buildinfo.Commit = c
	buildinfo.Date = d
}

// RootCommand creates the root cobra command with all subcommands registered.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the command context and accessible to all
// commands via loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "sourcegrid browses and manages the sources of an RSS aggregator",
		Long: `sourcegrid is the admin companion of an RSS aggregation backend.

It lists ingested sources as a grid of tiles, where sources with a banner
image are packed into rows of their own, manages feeds and companies, runs
ingests and serves the packed grid over HTTP for the dashboard.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if c.verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/sourcegrid/config.toml)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.apiURL, "api-url", "", "backend base URL (overrides config and "+config.EnvAPIURL+")")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the response and rows caches")

	// Register all subcommands
	root.AddCommand(c.sourcesCommand())
	root.AddCommand(c.sourceCommand())
	root.AddCommand(c.ingestCommand())
	root.AddCommand(c.feedsCommand())
	root.AddCommand(c.companiesCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.healthCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
