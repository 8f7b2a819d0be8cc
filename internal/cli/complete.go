package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feedwatch/sourcegrid/pkg/board"
	"github.com/feedwatch/sourcegrid/pkg/rss"
)

// completeFeeds completes feed ids with their labels as descriptions.
func (c *CLI) completeFeeds(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	feeds, ok := c.feedsForCompletion(cmd)
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, f := range board.FeedOptions(feeds) {
		id := fmt.Sprint(f.ID)
		if strings.HasPrefix(id, toComplete) {
			out = append(out, id+"\t"+board.FeedLabel(f))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeCompanies completes company ids with their names as descriptions.
func (c *CLI) completeCompanies(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	feeds, ok := c.feedsForCompletion(cmd)
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, opt := range board.CompanyOptions(feeds) {
		id := fmt.Sprint(opt.ID)
		if strings.HasPrefix(id, toComplete) {
			out = append(out, id+"\t"+opt.Name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// feedsForCompletion lists feeds through the cache. Failures yield no
// completions rather than an error on the user's prompt.
func (c *CLI) feedsForCompletion(cmd *cobra.Command) ([]rss.Feed, bool) {
	e, err := c.openEnv(cmd.Context())
	if err != nil {
		return nil, false
	}
	defer e.Close()

	feeds, err := e.client.ListFeeds(cmd.Context(), false)
	if err != nil {
		return nil, false
	}
	return feeds, true
}
