package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/feedwatch/sourcegrid/pkg/board"
)

// ingestCommand creates the ingest command.
func (c *CLI) ingestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [feed-id...]",
		Short: "Ingest sources from all feeds, or from the given feeds",
		Long: `Ingest sources from the enabled feeds.

Without arguments every enabled feed is ingested. With feed ids only those
feeds are. The backend reports how many sources were created and updated
and which feeds failed.`,
		Example: `  sourcegrid ingest
  sourcegrid ingest 12 14`,
		ValidArgsFunction: c.completeFeeds,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("feed", args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			e, err := c.openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			msg := "Ingesting all feeds..."
			if len(ids) > 0 {
				msg = fmt.Sprintf("Ingesting %d feeds...", len(ids))
			}
			spinner := newSpinnerWithContext(ctx, msg)
			spinner.Start()

			result, err := e.client.IngestSources(ctx, ids...)
			if err != nil {
				spinner.StopWithError("Ingest failed")
				return err
			}
			spinner.Stop()

			w := cmd.OutOrStdout()
			if len(result.Errors) > 0 {
				printWarning(w, "Ingest finished with %d feed errors", len(result.Errors))
			} else {
				printSuccess(w, "Ingest finished")
			}
			printDetail(w, "%s", board.IngestSummary(*result))
			for _, ie := range result.Errors {
				printDetail(w, "#%d %s: %s", ie.FeedID, ie.FeedURL, ie.Error)
			}
			if result.SourcesCreated > 0 {
				printNextStep(w, "See the new sources", appName+" sources --refresh")
			}
			return nil
		},
	}

	return cmd
}
