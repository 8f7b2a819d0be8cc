package cli

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/feedwatch/sourcegrid/pkg/board"
	"github.com/feedwatch/sourcegrid/pkg/rss"
)

// companiesCommand creates the companies command and its subcommands.
func (c *CLI) companiesCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "companies",
		Short: "List the companies owning feeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			feeds, err := e.client.ListFeeds(cmd.Context(), refresh)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			opts := board.CompanyOptions(feeds)
			if len(opts) == 0 {
				printInfo(w, "No companies")
				return nil
			}

			counts := lo.CountValuesBy(feeds, func(f rss.Feed) int64 {
				if f.Company == nil {
					return 0
				}
				return f.Company.ID
			})
			enabled := lo.SliceToMap(lo.FilterMap(feeds, func(f rss.Feed, _ int) (rss.Company, bool) {
				if f.Company == nil {
					return rss.Company{}, false
				}
				return *f.Company, true
			}), func(co rss.Company) (int64, bool) { return co.ID, co.Enabled })

			rows := lo.Map(opts, func(o board.CompanyOption, _ int) []string {
				return []string{fmt.Sprint(o.ID), o.Name, fmt.Sprint(counts[o.ID]), enabledLabel(enabled[o.ID])}
			})
			fmt.Fprintln(w, renderTable([]string{"ID", "Company", "Feeds", "State"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache")
	cmd.AddCommand(c.companiesToggleCommand())
	return cmd
}

// companiesToggleCommand creates the "companies toggle" subcommand.
func (c *CLI) companiesToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "toggle <company-id> on|off",
		Short:             "Enable or disable a company and its feeds",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeToggle(c.completeCompanies),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("company", args[0])
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

			res, err := e.client.SetCompanyEnabled(cmd.Context(), id, enabled)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Company #%d %s", res.CompanyID, enabledLabel(res.Enabled))
			return nil
		},
	}
}
