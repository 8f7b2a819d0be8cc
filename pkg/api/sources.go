package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	apperr "github.com/feedwatch/sourcegrid/pkg/errors"
	"github.com/feedwatch/sourcegrid/pkg/rss"
)

// DefaultPageSize is the page size of the sources list when none is given.
const DefaultPageSize = 50

// SourceQuery selects a page of sources. FeedID takes precedence over
// CompanyID; zero values mean "not set".
type SourceQuery struct {
	FeedID    int64
	CompanyID int64
	Limit     int
	Offset    int
	Refresh   bool // bypass the response cache
}

func (q SourceQuery) path() string {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	offset := max(q.Offset, 0)

	path := "/sources/"
	switch {
	case q.FeedID > 0:
		path = fmt.Sprintf("/sources/feeds/%d", q.FeedID)
	case q.CompanyID > 0:
		path = fmt.Sprintf("/sources/companies/%d", q.CompanyID)
	}

	v := url.Values{}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("offset", strconv.Itoa(offset))
	return path + "?" + v.Encode()
}

// ListSources returns one page of sources, optionally restricted to a feed
// or a company.
func (c *Client) ListSources(ctx context.Context, q SourceQuery) (*rss.SourcePage, error) {
	var page rss.SourcePage
	if err := c.get(ctx, q.path(), q.Refresh, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []rss.Source{}
	}
	return &page, nil
}

// GetSource returns a single source with its feed sections.
func (c *Client) GetSource(ctx context.Context, id int64, refresh bool) (*rss.SourceDetail, error) {
	if err := apperr.ValidateID("source", id); err != nil {
		return nil, err
	}
	var detail rss.SourceDetail
	if err := c.get(ctx, fmt.Sprintf("/sources/%d", id), refresh, &detail); err != nil {
		if apperr.Is(err, apperr.ErrCodeNotFound) {
			return nil, apperr.Wrap(apperr.ErrCodeSourceNotFound, err, "source %d not found", id)
		}
		return nil, err
	}
	return &detail, nil
}

type ingestRequest struct {
	FeedIDs []int64 `json:"feed_ids"`
}

// IngestSources asks the backend to fetch feeds and store new sources.
// With no feed IDs every enabled feed is ingested and no body is sent.
func (c *Client) IngestSources(ctx context.Context, feedIDs ...int64) (*rss.IngestResult, error) {
	for _, id := range feedIDs {
		if err := apperr.ValidateID("feed", id); err != nil {
			return nil, err
		}
	}

	var body any
	if len(feedIDs) > 0 {
		body = ingestRequest{FeedIDs: feedIDs}
	}

	var result rss.IngestResult
	if err := c.send(ctx, http.MethodPost, "/sources/ingest", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
