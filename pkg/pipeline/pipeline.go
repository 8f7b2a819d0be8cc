// Package pipeline provides the fetch → pack → render pipeline behind the
// sources grid.
//
// This package implements the pipeline used by the CLI, the interactive
// browser and the HTTP server. By centralizing it, every entry point packs
// the same page into the same rows.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Load one page of sources from the backend
//  2. Pack: Arrange the page into rows of tiles (see package tiles)
//  3. Render: Produce output documents (JSON, text)
//
// Packed rows are cached by page content and column count, so repeated
// requests for the same page at the same width skip the pack stage.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(client, cache, nil, logger)
//	opts := pipeline.Options{
//	    CompanyID: 4,
//	    Width:     1200,
//	    Formats:   []string{"json"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc := result.Artifacts["json"]
//
// Re-pack an already fetched page for a new width:
//
//	rows := pipeline.Repack(result.Page, tiles.Columns(800, 16, 270))
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/feedwatch/sourcegrid/pkg/api"
	"github.com/feedwatch/sourcegrid/pkg/board"
	"github.com/feedwatch/sourcegrid/pkg/cache"
	apperr "github.com/feedwatch/sourcegrid/pkg/errors"
	"github.com/feedwatch/sourcegrid/pkg/rss"
	"github.com/feedwatch/sourcegrid/pkg/tiles"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultLimit is the page size when none is given.
	DefaultLimit = api.DefaultPageSize

	// DefaultWidth is the container width used to derive the column count
	// when neither Columns nor Width is set.
	DefaultWidth = 1200.0
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatText: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	FeedID    int64 `json:"feed_id,omitempty"`
	CompanyID int64 `json:"company_id,omitempty"`
	Limit     int   `json:"limit,omitempty"`
	Offset    int   `json:"offset,omitempty"`
	Refresh   bool  `json:"refresh,omitempty"` // bypass the response and rows caches

	// Pack options. Columns wins over the width-derived count when set.
	Columns   int     `json:"columns,omitempty"`
	Width     float64 `json:"width,omitempty"`
	Gap       float64 `json:"gap,omitempty"`
	TileWidth float64 `json:"tile_width,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	CellWidth int      `json:"cell_width,omitempty"` // text format only

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Page is the fetched page of sources.
	Page *rss.SourcePage

	// PageHash is the content hash of the page.
	PageHash string

	// Rows is the page packed into rows of at most Columns tiles.
	Rows [][]rss.Source

	// Columns is the column count used for packing.
	Columns int

	// Window locates the page in the full list.
	Window board.Window

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Items      int
	Banners    int
	RowCount   int
	FetchTime  time.Duration
	PackTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RowsHit bool // Whether the packed rows came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperr.New(apperr.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, text)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	if err := o.ValidateForPack(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks the paging and filter fields.
func (o *Options) ValidateForFetch() error {
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	if err := apperr.ValidatePage(o.Limit, o.Offset); err != nil {
		return err
	}
	if o.FeedID < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "feed id must not be negative, got %d", o.FeedID)
	}
	if o.CompanyID < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "company id must not be negative, got %d", o.CompanyID)
	}
	o.setLoggerDefault()
	return nil
}

// SetPackDefaults fills in the grid geometry.
func (o *Options) SetPackDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Gap == 0 {
		o.Gap = tiles.DefaultGap
	}
	if o.TileWidth == 0 {
		o.TileWidth = tiles.DefaultMinTileWidth
	}
	o.setLoggerDefault()
}

// ValidateForPack validates the column count and grid geometry and resolves
// Columns from the width when it is zero.
func (o *Options) ValidateForPack() error {
	if err := apperr.ValidateColumns(o.Columns); err != nil {
		return err
	}
	o.SetPackDefaults()
	if o.Width < 0 || o.Gap < 0 || o.TileWidth < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "width, gap and tile_width must not be negative")
	}
	if o.Columns == 0 {
		o.Columns = tiles.Columns(o.Width, o.Gap, o.TileWidth)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	o.setLoggerDefault()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// Query returns the backend query for the fetch stage.
func (o *Options) Query() api.SourceQuery {
	return api.SourceQuery{
		FeedID:    o.FeedID,
		CompanyID: o.CompanyID,
		Limit:     o.Limit,
		Offset:    o.Offset,
		Refresh:   o.Refresh,
	}
}

// RowsKeyOpts returns cache key options for the packed rows.
func (o *Options) RowsKeyOpts() cache.RowsKeyOpts {
	return cache.RowsKeyOpts{Columns: o.Columns}
}

func (o *Options) setLoggerDefault() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
