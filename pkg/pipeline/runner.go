package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/feedwatch/sourcegrid/pkg/board"
	"github.com/feedwatch/sourcegrid/pkg/cache"
	"github.com/feedwatch/sourcegrid/pkg/observability"
	"github.com/feedwatch/sourcegrid/pkg/render"
	"github.com/feedwatch/sourcegrid/pkg/rss"
)

// TTLRows is how long packed rows stay cached. Rows are keyed by page
// content, so a long TTL never serves stale packing.
const TTLRows = 24 * time.Hour

// Runner encapsulates pipeline execution with caching.
// The CLI, the browser and the server all use it to avoid duplicating
// caching logic.
//
// The Runner is stateless except for the source, cache and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Source SourceLister
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner reading pages from src.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(src SourceLister, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source: src,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete fetch → pack → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{Columns: opts.Columns}

	// Stage 1: Fetch
	fetchStart := time.Now()
	page, err := Fetch(ctx, r.Source, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Page = page
	result.PageHash = PageHash(page)
	result.Window = board.PageWindow(*page, opts.Limit)
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.Items = len(page.Items)

	r.Logger.Info("fetched sources",
		"items", len(page.Items),
		"total", page.Total,
		"offset", page.Offset,
		"duration", result.Stats.FetchTime)

	// Stage 2: Pack
	packStart := time.Now()
	rows, rowsHit := r.PackWithCacheInfo(ctx, page, result.PageHash, opts)
	result.Rows = rows
	result.Stats.PackTime = time.Since(packStart)
	result.Stats.RowCount = len(rows)
	result.CacheInfo.RowsHit = rowsHit

	grid := render.Grid{Columns: opts.Columns, Window: result.Window, Rows: rows}
	result.Stats.Banners = grid.Banners()

	r.Logger.Info("packed rows",
		"columns", opts.Columns,
		"rows", len(rows),
		"banners", result.Stats.Banners,
		"cached", rowsHit,
		"duration", result.Stats.PackTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, err := Render(ctx, grid, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// PackWithCacheInfo packs page with caching and returns cache hit info.
// pageHash must be [PageHash] of page. Cache failures degrade to packing.
func (r *Runner) PackWithCacheInfo(ctx context.Context, page *rss.SourcePage, pageHash string, opts Options) ([][]rss.Source, bool) {
	key := r.Keyer.RowsKey(pageHash, opts.RowsKeyOpts())
	hooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var idx [][]int
			if json.Unmarshal(data, &idx) == nil {
				if rows, ok := rowsFromIndexes(page, idx); ok {
					hooks.OnCacheHit(ctx, "rows")
					return rows, true
				}
			}
			// If deserialization fails, fall through to recompute
		}
		hooks.OnCacheMiss(ctx, "rows")
	}

	idx := packIndexes(ctx, page, opts.Columns)
	rows, _ := rowsFromIndexes(page, idx)

	if data, err := json.Marshal(idx); err == nil {
		if err := r.Cache.Set(ctx, key, data, TTLRows); err != nil {
			r.Logger.Debug("cache write failed", "key", key, "err", err)
		} else {
			hooks.OnCacheSet(ctx, "rows", len(data))
		}
	}
	return rows, false
}

// Grid builds the render input for page packed at columns, without caching.
func Grid(page *rss.SourcePage, columns, pageSize int) render.Grid {
	return render.Grid{
		Columns: max(columns, 1),
		Window:  board.PageWindow(*page, pageSize),
		Rows:    Repack(page, columns),
	}
}

// PageHash returns the content hash of page. Pages with equal items, total
// and offset share a hash.
func PageHash(page *rss.SourcePage) string {
	data, err := json.Marshal(page)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
