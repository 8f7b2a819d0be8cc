package pipeline

import (
	"context"
	"time"

	"github.com/feedwatch/sourcegrid/pkg/api"
	"github.com/feedwatch/sourcegrid/pkg/observability"
	"github.com/feedwatch/sourcegrid/pkg/rss"
)

// SourceLister loads pages of sources. *api.Client implements it.
type SourceLister interface {
	ListSources(ctx context.Context, q api.SourceQuery) (*rss.SourcePage, error)
}

// Fetch loads the page described by opts.
func Fetch(ctx context.Context, src SourceLister, opts Options) (*rss.SourcePage, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return nil, err
	}

	endpoint := fetchEndpoint(opts)
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, endpoint)
	start := time.Now()

	page, err := src.ListSources(ctx, opts.Query())

	items := 0
	if page != nil {
		items = len(page.Items)
	}
	hooks.OnFetchComplete(ctx, endpoint, items, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// fetchEndpoint names the backend list endpoint for metrics.
func fetchEndpoint(opts Options) string {
	switch {
	case opts.FeedID > 0:
		return "sources_by_feed"
	case opts.CompanyID > 0:
		return "sources_by_company"
	default:
		return "sources"
	}
}
