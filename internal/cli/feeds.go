package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feedwatch/sourcegrid/pkg/board"
	apperr "github.com/feedwatch/sourcegrid/pkg/errors"
	"github.com/feedwatch/sourcegrid/pkg/rss"
)

// feedsOpts holds the command-line flags for the feeds command.
type feedsOpts struct {
	query   string // substring of the feed URL or section
	enabled string // all, enabled or disabled
	sort    string // sort mode within a company
	company string // company slug to show alone
	refresh bool   // bypass the response cache
}

// feedsCommand creates the feeds command and its subcommands.
func (c *CLI) feedsCommand() *cobra.Command {
	var opts feedsOpts

	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "List feeds grouped by company",
		Long: `List feeds grouped by company.

Companies with the most feeds come first. Within a company feeds are sorted
by --sort: trust_desc (default), trust_asc, url_asc or url_desc.`,
		Example: `  sourcegrid feeds --enabled disabled
  sourcegrid feeds --company leMonde --sort url_asc
  sourcegrid feeds toggle 12 off`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFeeds(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.query, "query", "q", "", "only feeds whose URL or section contains this text")
	flags.StringVar(&opts.enabled, "enabled", string(board.EnabledAll), "all, enabled or disabled")
	flags.StringVar(&opts.sort, "sort", string(board.SortTrustDesc), "trust_desc, trust_asc, url_asc or url_desc")
	flags.StringVar(&opts.company, "company", "", "only the company with this slug")
	flags.BoolVar(&opts.refresh, "refresh", false, "bypass the response cache")

	_ = cmd.RegisterFlagCompletionFunc("enabled", cobra.FixedCompletions(
		[]string{string(board.EnabledAll), string(board.EnabledOnly), string(board.DisabledOnly)}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("sort", cobra.FixedCompletions(
		sortModeNames(), cobra.ShellCompDirectiveNoFileComp))

	cmd.AddCommand(c.feedsToggleCommand())
	cmd.AddCommand(c.feedsCheckCommand())
	cmd.AddCommand(c.feedsSyncCommand())

	return cmd
}

func (c *CLI) runFeeds(cmd *cobra.Command, opts feedsOpts) error {
	enabled, ok := board.ParseEnabledFilter(opts.enabled)
	if !ok {
		return apperr.New(apperr.ErrCodeInvalidInput, "invalid --enabled %q (must be one of: all, enabled, disabled)", opts.enabled)
	}
	mode, ok := board.ParseSortMode(opts.sort)
	if !ok {
		return apperr.New(apperr.ErrCodeInvalidInput, "invalid --sort %q (must be one of: %s)", opts.sort, strings.Join(sortModeNames(), ", "))
	}

	e, err := c.openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	feeds, err := e.client.ListFeeds(cmd.Context(), opts.refresh)
	if err != nil {
		return err
	}

	groups := board.GroupByCompany(board.FilterFeeds(feeds, board.FeedFilter{Query: opts.query, Enabled: enabled}))
	if opts.company != "" {
		g, ok := board.FindGroup(groups, opts.company)
		if !ok {
			return apperr.New(apperr.ErrCodeNotFound, "no company %q among the listed feeds", opts.company)
		}
		groups = []board.CompanyGroup{g}
	}

	w := cmd.OutOrStdout()
	if len(groups) == 0 {
		printInfo(w, "No feeds match")
		return nil
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printGroup(w, g, board.SortFeeds(g.Feeds, mode))
	}
	return nil
}

// printGroup prints a company heading and a table of its feeds.
func printGroup(w io.Writer, g board.CompanyGroup, feeds []rss.Feed) {
	fmt.Fprintf(w, "%s %s\n", StyleTitle.Render(g.Name), StyleDim.Render(fmt.Sprintf("(%s, %d feeds)", g.Slug, len(feeds))))

	rows := make([][]string, 0, len(feeds))
	for _, f := range feeds {
		rows = append(rows, []string{
			fmt.Sprint(f.ID),
			truncate(f.Section, 20),
			truncate(f.URL, 60),
			fmt.Sprintf("%.2f", f.TrustScore),
			enabledLabel(f.Enabled),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "Section", "URL", "Trust", "State"}, rows))
}

func sortModeNames() []string {
	names := make([]string, len(board.SortModes))
	for i, m := range board.SortModes {
		names[i] = string(m)
	}
	return names
}

// feedsToggleCommand creates the "feeds toggle" subcommand.
func (c *CLI) feedsToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "toggle <feed-id> on|off",
		Short:             "Enable or disable a feed",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeToggle(c.completeFeeds),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("feed", args[0])
			if err != nil {
				return err
			}
			enabled, err := parseSwitch(args[1])
			if err != nil {
				return err
			}

			e, err := c.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := e.client.SetFeedEnabled(cmd.Context(), id, enabled)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Feed #%d %s", res.FeedID, enabledLabel(res.Enabled))
			return nil
		},
	}
}

// feedsCheckCommand creates the "feeds check" subcommand.
func (c *CLI) feedsCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "check [feed-id...]",
		Short:             "Check that feeds are reachable",
		Long:              "Check that feeds are reachable. Without arguments every feed is checked; only failures are listed.",
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

			spinner := newSpinnerWithContext(ctx, "Checking feeds...")
			spinner.Start()
			failures, err := e.client.CheckFeeds(ctx, ids...)
			if err != nil {
				spinner.StopWithError("Check failed")
				return err
			}
			spinner.Stop()

			w := cmd.OutOrStdout()
			if len(failures) == 0 {
				printSuccess(w, "All checked feeds are reachable")
				return nil
			}
			printWarning(w, "%d feeds failed", len(failures))
			rows := make([][]string, 0, len(failures))
			for _, f := range failures {
				protection := "-"
				if f.FetchProtection != nil {
					protection = fmt.Sprint(*f.FetchProtection)
				}
				rows = append(rows, []string{fmt.Sprint(f.FeedID), truncate(f.URL, 50), truncate(f.Error, 50), protection})
			}
			fmt.Fprintln(w, renderTable([]string{"ID", "URL", "Error", "Protection"}, rows))
			return nil
		},
	}
}

// feedsSyncCommand creates the "feeds sync" subcommand.
func (c *CLI) feedsSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Synchronise the feed catalogue from its repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := c.openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			spinner := newSpinnerWithContext(ctx, "Syncing feeds...")
			spinner.Start()
			res, err := e.client.SyncFeeds(ctx)
			if err != nil {
				spinner.StopWithError("Sync failed")
				return err
			}
			spinner.Stop()

			printSuccess(cmd.OutOrStdout(), "Feed catalogue %s", syncActionLabel(res.RepositoryAction))
			return nil
		},
	}
}

func syncActionLabel(action string) string {
	switch action {
	case rss.RepositoryCloned:
		return "cloned"
	case rss.RepositoryUpdated:
		return "updated"
	case rss.RepositoryUpToDate:
		return "already up to date"
	default:
		return "synchronised (" + action + ")"
	}
}

// completeToggle completes the id with idFn and then on/off.
func (c *CLI) completeToggle(idFn cobra.CompletionFunc) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		switch len(args) {
		case 0:
			return idFn(cmd, args, toComplete)
		case 1:
			return []string{"on", "off"}, cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}
