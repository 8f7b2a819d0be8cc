package rss

import (
	"strings"
	"time"

	"github.com/feedwatch/sourcegrid/pkg/tiles"
)

// Company is a publisher owning one or more feeds.
type Company struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	IconURL         string `json:"icon_url,omitempty"`
	Country         string `json:"country,omitempty"`
	Language        string `json:"language,omitempty"`
	FetchProtection int    `json:"fetchprotection"`
	Enabled         bool   `json:"enabled"`
}

// Feed is a single RSS endpoint of a company.
type Feed struct {
	ID              int64    `json:"id"`
	URL             string   `json:"url"`
	Section         string   `json:"section,omitempty"`
	Enabled         bool     `json:"enabled"`
	TrustScore      float64  `json:"trust_score"`
	FetchProtection int      `json:"fetchprotection"`
	Company         *Company `json:"company"`
}

// CompanyName returns the owning company's name, or "" when the feed has none.
func (f Feed) CompanyName() string {
	if f.Company == nil {
		return ""
	}
	return f.Company.Name
}

// Source is an ingested article as listed on the sources page.
type Source struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary,omitempty"`
	Author       string   `json:"author,omitempty"`
	URL          string   `json:"url"`
	PublishedAt  string   `json:"published_at,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	CompanyName  string   `json:"company_name,omitempty"`
	CompanyNames []string `json:"company_names,omitempty"`
}

// HasBanner reports whether the source renders as a banner tile.
func (s Source) HasBanner() bool {
	return tiles.HasBannerImage(s.ImageURL)
}

// Companies joins the company names of the source for display. Older
// backends send a single company_name instead of the list.
func (s Source) Companies() string {
	if len(s.CompanyNames) == 0 {
		return s.CompanyName
	}
	return strings.Join(s.CompanyNames, ", ")
}

// publishedLayouts are the timestamp shapes the backend emits. Naive
// timestamps carry no offset and are read as UTC.
var publishedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Published parses PublishedAt. ok is false when the field is empty or
// in an unknown format.
func (s Source) Published() (t time.Time, ok bool) {
	raw := strings.TrimSpace(s.PublishedAt)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SourceDetail is a source together with the sections of the feeds it
// was ingested from.
type SourceDetail struct {
	Source
	FeedSections []string `json:"feed_sections"`
}

// SourcePage is one page of sources.
type SourcePage struct {
	Items  []Source `json:"items"`
	Total  int      `json:"total"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
}

// IngestError reports a feed that failed during an ingest run.
type IngestError struct {
	FeedID  int64  `json:"feed_id"`
	FeedURL string `json:"feed_url"`
	Error   string `json:"error"`
}

// IngestResult summarises an ingest run.
type IngestResult struct {
	Status         string        `json:"status"`
	FeedsProcessed int           `json:"feeds_processed"`
	FeedsSkipped   int           `json:"feeds_skipped"`
	SourcesCreated int           `json:"sources_created"`
	SourcesUpdated int           `json:"sources_updated"`
	Errors         []IngestError `json:"errors"`
	DurationMS     int64         `json:"duration_ms"`
}

// Repository actions reported by a feed sync.
const (
	RepositoryCloned   = "cloned"
	RepositoryUpdated  = "update"
	RepositoryUpToDate = "up_to_date"
)

// SyncResult is the outcome of synchronising the feed catalogue repository.
type SyncResult struct {
	RepositoryAction string `json:"repository_action"`
}

// FeedCheckResult reports a feed that failed a reachability check.
type FeedCheckResult struct {
	FeedID          int64  `json:"feed_id"`
	URL             string `json:"url"`
	Error           string `json:"error"`
	FetchProtection *int   `json:"fetchprotection"`
}

// FeedToggle is the backend's answer to a feed enable/disable request.
type FeedToggle struct {
	FeedID  int64 `json:"feed_id"`
	Enabled bool  `json:"enabled"`
}

// CompanyToggle is the backend's answer to a company enable/disable request.
type CompanyToggle struct {
	CompanyID int64 `json:"company_id"`
	Enabled   bool  `json:"enabled"`
}

// Health is the backend health report.
type Health struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}
