package cli

import (
	"github.com/spf13/cobra"

	"github.com/feedwatch/sourcegrid/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve packed rows and feed management over HTTP",
		Long: `Serve packed rows and feed management over HTTP for the dashboard.

GET /api/rows packs a page of sources for the width or column count given in
the query. Feed and company endpoints proxy the backend. Prometheus metrics
are served on /metrics. The server stops gracefully on interrupt.`,
		Example: `  sourcegrid serve
  sourcegrid serve --addr 127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := c.openEnv(ctx)
			if err != nil {
				return err
			}
			if addr != "" {
				e.cfg.Server.Addr = addr
			}

			srv := server.New(e.client, server.Config{
				Addr:     e.cfg.Server.Addr,
				PageSize: e.cfg.PageSize,
				Grid:     e.cfg.TileGrid(),
				Width:    e.cfg.Grid.Width,
				Cache:    e.cache,
				Keyer:    e.cfg.Keyer(),
				Logger:   c.Logger,
			})
			// the server owns the cache from here on
			defer srv.Close()

			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config or "+server.DefaultAddr+")")
	return cmd
}
