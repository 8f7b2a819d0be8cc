package tiles

import "math"

// DefaultMinTileWidth is the narrowest a tile may render, in pixels.
const DefaultMinTileWidth = 270.0

// DefaultGap is the default spacing between grid tracks, in pixels.
const DefaultGap = 16.0

// Columns returns how many tiles of at least minTileWidth fit side by side
// in containerWidth when tracks are separated by gap:
//
//	max(1, floor((containerWidth + gap) / (minTileWidth + gap)))
//
// Degenerate measurements (a non-positive track size, NaN or infinite
// inputs) yield a single column.
func Columns(containerWidth, gap, minTileWidth float64) int {
	track := minTileWidth + gap
	if track <= 0 || math.IsNaN(track) || math.IsInf(track, 0) {
		return 1
	}
	n := math.Floor((containerWidth + gap) / track)
	if math.IsNaN(n) || n < 1 {
		return 1
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// Grid describes the track geometry of a tile grid.
type Grid struct {
	MinTileWidth float64 // Narrowest allowed tile, in pixels
	Gap          float64 // Spacing between tracks, in pixels
}

// DefaultGrid returns the grid geometry used by the sources page.
func DefaultGrid() Grid {
	return Grid{MinTileWidth: DefaultMinTileWidth, Gap: DefaultGap}
}

// Columns returns the column count for a container of the given width.
func (g Grid) Columns(containerWidth float64) int {
	return Columns(containerWidth, g.Gap, g.MinTileWidth)
}
