package pipeline

import (
	"context"
	"time"

	"github.com/feedwatch/sourcegrid/pkg/observability"
	"github.com/feedwatch/sourcegrid/pkg/rss"
	"github.com/feedwatch/sourcegrid/pkg/tiles"
)

// Repack arranges the items of page into rows of at most columns tiles.
// It is pure: the same page and column count always yield the same rows.
// A column count below 1 is treated as 1.
func Repack(page *rss.SourcePage, columns int) [][]rss.Source {
	if page == nil {
		return nil
	}
	return tiles.Pack(page.Items, columns, rss.Source.HasBanner)
}

// packIndexes packs the positions of the page items rather than the items,
// so the result identifies every tile even when IDs repeat. It is the
// cached form of a packing.
func packIndexes(ctx context.Context, page *rss.SourcePage, columns int) [][]int {
	var items []rss.Source
	if page != nil {
		items = page.Items
	}

	hooks := observability.Pipeline()
	hooks.OnPackStart(ctx, len(items), columns)
	start := time.Now()

	positions := make([]int, len(items))
	for i := range positions {
		positions[i] = i
	}
	idx := tiles.Pack(positions, columns, func(i int) bool { return items[i].HasBanner() })

	hooks.OnPackComplete(ctx, columns, len(idx), time.Since(start))
	return idx
}

// rowsFromIndexes rebuilds rows from packed positions. ok is false when the
// positions do not describe a permutation of the page.
func rowsFromIndexes(page *rss.SourcePage, idx [][]int) (rows [][]rss.Source, ok bool) {
	flat := tiles.Flatten(idx)
	if len(flat) != len(page.Items) {
		return nil, false
	}
	seen := make([]bool, len(page.Items))
	for _, i := range flat {
		if i < 0 || i >= len(page.Items) || seen[i] {
			return nil, false
		}
		seen[i] = true
	}
	if len(idx) == 0 {
		return nil, true
	}

	rows = make([][]rss.Source, len(idx))
	for r, row := range idx {
		rows[r] = make([]rss.Source, len(row))
		for c, i := range row {
			rows[r][c] = page.Items[i]
		}
	}
	return rows, true
}
