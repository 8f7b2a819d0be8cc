package tiles

import (
	"math"
	"testing"
)

func TestColumns(t *testing.T) {
	tests := []struct {
		name                  string
		width, gap, tileWidth float64
		want                  int
	}{
		{"exact fit without gap", 810, 0, 270, 3},
		{"gap counted once less than tracks", 842, 16, 270, 3},
		{"just short of three", 841, 16, 270, 2},
		{"narrow container", 100, 16, 270, 1},
		{"zero width", 0, 16, 270, 1},
		{"negative width", -500, 16, 270, 1},
		{"wide container", 2000, 16, 270, 7},
		{"non-positive track", 800, 0, 0, 1},
		{"negative track", 800, -300, 270, 1},
		{"nan width", math.NaN(), 16, 270, 1},
		{"infinite tile", 800, 16, math.Inf(1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Columns(tt.width, tt.gap, tt.tileWidth); got != tt.want {
				t.Errorf("Columns(%v, %v, %v) = %d, want %d", tt.width, tt.gap, tt.tileWidth, got, tt.want)
			}
		})
	}
}

func TestGridColumns(t *testing.T) {
	g := DefaultGrid()
	if g.MinTileWidth != DefaultMinTileWidth || g.Gap != DefaultGap {
		t.Fatalf("DefaultGrid() = %+v", g)
	}
	if got := g.Columns(1200); got != 4 {
		t.Errorf("Columns(1200) = %d, want 4", got)
	}
}
