package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feedwatch/sourcegrid/pkg/board"
	"github.com/feedwatch/sourcegrid/pkg/pipeline"
	"github.com/feedwatch/sourcegrid/pkg/rss"
)

// sourcesOpts holds the command-line flags for the sources command.
// Zero values fall back to the configuration.
type sourcesOpts struct {
	feedID    int64   // list the sources of one feed
	companyID int64   // list the sources of one company
	limit     int     // page size
	offset    int     // page start
	columns   int     // explicit column count; 0 derives it from width
	width     float64 // container width in pixels
	gap       float64 // grid gap in pixels
	tileWidth float64 // minimum tile width in pixels
	cellWidth int     // text cell width in characters
	format    string  // output format: text or json
	output    string  // output file; stdout when empty
	refresh   bool    // bypass cached responses and rows
}

// sourcesCommand creates the sources command.
func (c *CLI) sourcesCommand() *cobra.Command {
	var opts sourcesOpts

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Fetch a page of sources and pack it into rows of tiles",
		Long: `Fetch one page of sources and pack it into rows of tiles.

Sources with a banner image and sources without one are packed into
separate rows of at most --columns tiles, keeping the backend order as far
as the grid allows. Without --columns the count is derived from --width,
--gap and --tile-width the way the dashboard derives it from its container.

Packed rows are cached per page content and column count.`,
		Example: `  sourcegrid sources --columns 3
  sourcegrid sources --company 4 --width 900 --format json -o grid.json
  sourcegrid sources --offset 50 --limit 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runSources(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.Int64Var(&opts.feedID, "feed", 0, "only sources of this feed id")
	flags.Int64Var(&opts.companyID, "company", 0, "only sources of this company id")
	flags.IntVar(&opts.limit, "limit", 0, "page size (default from config)")
	flags.IntVar(&opts.offset, "offset", 0, "index of the first source")
	flags.IntVar(&opts.columns, "columns", 0, "columns per row (default derived from --width)")
	flags.Float64Var(&opts.width, "width", 0, "container width in pixels (default from config)")
	flags.Float64Var(&opts.gap, "gap", 0, "grid gap in pixels (default from config)")
	flags.Float64Var(&opts.tileWidth, "tile-width", 0, "minimum tile width in pixels (default from config)")
	flags.IntVar(&opts.cellWidth, "cell-width", 0, "text cell width in characters")
	flags.StringVarP(&opts.format, "format", "f", pipeline.FormatText, "output format: text, json")
	flags.StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	flags.BoolVar(&opts.refresh, "refresh", false, "bypass cached responses and rows")

	cmd.MarkFlagsMutuallyExclusive("feed", "company")
	_ = cmd.RegisterFlagCompletionFunc("company", c.completeCompanies)
	_ = cmd.RegisterFlagCompletionFunc("feed", c.completeFeeds)
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{pipeline.FormatText, pipeline.FormatJSON}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// runSources executes the pipeline and writes the requested format.
func (c *CLI) runSources(ctx context.Context, stdout io.Writer, opts sourcesOpts) error {
	e, err := c.openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	popts := e.pipelineOptions()
	popts.FeedID = opts.feedID
	popts.CompanyID = opts.companyID
	popts.Offset = opts.offset
	popts.Columns = opts.columns
	popts.CellWidth = opts.cellWidth
	popts.Refresh = opts.refresh
	popts.Formats = []string{opts.format}
	if opts.limit != 0 {
		popts.Limit = opts.limit
	}
	if opts.width != 0 {
		popts.Width = opts.width
	}
	if opts.gap != 0 {
		popts.Gap = opts.gap
	}
	if opts.tileWidth != 0 {
		popts.TileWidth = opts.tileWidth
	}

	prog := newProgress(loggerFromContext(ctx))
	result, err := e.runner().Execute(ctx, popts)
	if err != nil {
		return fmt.Errorf("sources: %w", err)
	}
	prog.done(fmt.Sprintf("Packed %s into %d rows", board.SourceCount(result.Stats.Items), result.Stats.RowCount))

	out, err := openOutput(opts.output, stdout)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(result.Artifacts[opts.format]); err != nil {
		return err
	}

	if opts.output != "" && opts.output != "-" {
		printSuccess(stdout, "Wrote %s", result.Window)
		printFile(stdout, opts.output)
		printStats(stdout, result.Stats.Items, result.Stats.Banners, result.Stats.RowCount, result.Columns, result.CacheInfo.RowsHit)
		return nil
	}
	if opts.format == pipeline.FormatText && result.Window.HasNext {
		printNextStep(stdout, "Next page", fmt.Sprintf("%s sources --offset %d", appName, result.Window.NextOffset))
	}
	return nil
}

// sourceCommand creates the source command showing a single source.
func (c *CLI) sourceCommand() *cobra.Command {
	var (
		asJSON  bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "source <id>",
		Short: "Show a single source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("source", args[0])
			if err != nil {
				return err
			}

			e, err := c.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			detail, err := e.client.GetSource(cmd.Context(), id, refresh)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(detail)
			}
			printSource(w, detail)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the source as JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache")

	return cmd
}

// printSource prints the fields of a source detail as key-value lines.
func printSource(w io.Writer, d *rss.SourceDetail) {
	fmt.Fprintln(w, StyleTitle.Render(d.Title))
	printKeyValue(w, "ID", fmt.Sprint(d.ID))
	printKeyValue(w, "URL", StyleLink.Render(d.URL))
	printKeyValue(w, "Author", d.Author)
	if t, ok := d.Published(); ok {
		printKeyValue(w, "Published", t.Format("2006-01-02 15:04"))
	} else {
		printKeyValue(w, "Published", d.PublishedAt)
	}
	printKeyValue(w, "Companies", d.Companies())
	printKeyValue(w, "Sections", strings.Join(d.FeedSections, ", "))
	printKeyValue(w, "Banner", d.ImageURL)
	if d.Summary != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleDim.Render(d.Summary))
	}
}
