package render

import (
	"github.com/feedwatch/sourcegrid/pkg/board"
	"github.com/feedwatch/sourcegrid/pkg/rss"
)

// Grid is a page of sources packed into rows of at most Columns tiles.
type Grid struct {
	Columns int
	Window  board.Window
	Rows    [][]rss.Source
}

// Tiles returns the number of tiles in the grid.
func (g Grid) Tiles() int {
	n := 0
	for _, row := range g.Rows {
		n += len(row)
	}
	return n
}

// Banners returns the number of banner tiles in the grid.
func (g Grid) Banners() int {
	n := 0
	for _, row := range g.Rows {
		for _, s := range row {
			if s.HasBanner() {
				n++
			}
		}
	}
	return n
}
