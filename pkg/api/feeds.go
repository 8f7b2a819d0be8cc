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

// ListFeeds returns every feed known to the backend with its company.
func (c *Client) ListFeeds(ctx context.Context, refresh bool) ([]rss.Feed, error) {
	var feeds []rss.Feed
	if err := c.get(ctx, "/rss/", refresh, &feeds); err != nil {
		return nil, err
	}
	return feeds, nil
}

// SyncFeeds pulls the feed catalogue repository and reconciles feeds.
func (c *Client) SyncFeeds(ctx context.Context) (*rss.SyncResult, error) {
	var result rss.SyncResult
	if err := c.send(ctx, http.MethodPost, "/rss/sync", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckFeeds probes feeds for reachability and returns the failing ones.
// With no IDs the backend checks every feed.
func (c *Client) CheckFeeds(ctx context.Context, feedIDs ...int64) ([]rss.FeedCheckResult, error) {
	path := "/rss/feeds/check"
	if len(feedIDs) > 0 {
		v := url.Values{}
		for _, id := range feedIDs {
			if err := apperr.ValidateID("feed", id); err != nil {
				return nil, err
			}
			v.Add("feed_ids", strconv.FormatInt(id, 10))
		}
		path += "?" + v.Encode()
	}

	results := []rss.FeedCheckResult{}
	if err := c.send(ctx, http.MethodPost, path, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

type enabledRequest struct {
	Enabled bool `json:"enabled"`
}

// SetFeedEnabled enables or disables a feed.
func (c *Client) SetFeedEnabled(ctx context.Context, feedID int64, enabled bool) (*rss.FeedToggle, error) {
	if err := apperr.ValidateID("feed", feedID); err != nil {
		return nil, err
	}
	var result rss.FeedToggle
	path := fmt.Sprintf("/rss/feeds/%d/enabled", feedID)
	if err := c.send(ctx, http.MethodPatch, path, enabledRequest{Enabled: enabled}, &result); err != nil {
		if apperr.Is(err, apperr.ErrCodeNotFound) {
			return nil, apperr.Wrap(apperr.ErrCodeFeedNotFound, err, "feed %d not found", feedID)
		}
		return nil, err
	}
	return &result, nil
}

// SetCompanyEnabled enables or disables every feed of a company.
func (c *Client) SetCompanyEnabled(ctx context.Context, companyID int64, enabled bool) (*rss.CompanyToggle, error) {
	if err := apperr.ValidateID("company", companyID); err != nil {
		return nil, err
	}
	var result rss.CompanyToggle
	path := fmt.Sprintf("/rss/companies/%d/enabled", companyID)
	if err := c.send(ctx, http.MethodPatch, path, enabledRequest{Enabled: enabled}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health reports the backend status. It is never cached.
func (c *Client) Health(ctx context.Context) (*rss.Health, error) {
	body, err := c.fetch(ctx, "/health/")
	if err != nil {
		return nil, err
	}
	var h rss.Health
	if err := decode(body, &h); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeUpstream, err, "decode health report")
	}
	return &h, nil
}
