package cli

import (
	"github.com/spf13/cobra"
)

// healthCommand creates the health command.
func (c *CLI) healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			h, err := e.client.Health(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printSuccess(w, "Backend %s", h.Status)
			printKeyValue(w, "URL", e.client.BaseURL())
			printKeyValue(w, "Database", h.Database)
			return nil
		},
	}
}
