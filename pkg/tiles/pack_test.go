package tiles

import (
	"math/rand/v2"
	"reflect"
	"testing"
)

type tile struct {
	Name   string
	Banner bool
}

func isBanner(t tile) bool { return t.Banner }

func b(name string) tile { return tile{Name: name, Banner: true} }
func n(name string) tile { return tile{Name: name} }

func names(rows [][]tile) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, t := range row {
			out[i][j] = t.Name
		}
	}
	return out
}

func TestPack(t *testing.T) {
	tests := []struct {
		name    string
		items   []tile
		columns int
		want    [][]string
	}{
		{
			name:    "single column keeps arrival order",
			items:   []tile{b("B1"), n("N1"), b("B2")},
			columns: 1,
			want:    [][]string{{"B1"}, {"N1"}, {"B2"}},
		},
		{
			name:    "full banner row then partial plain row",
			items:   []tile{b("B1"), b("B2"), n("N1")},
			columns: 2,
			want:    [][]string{{"B1", "B2"}, {"N1"}},
		},
		{
			name:    "empty input",
			items:   nil,
			columns: 3,
			want:    [][]string{},
		},
		{
			name:    "no banners",
			items:   []tile{n("N1"), n("N2"), n("N3")},
			columns: 2,
			want:    [][]string{{"N1", "N2"}, {"N3"}},
		},
		{
			name:    "rows follow buffer fill order",
			items:   []tile{n("N1"), b("B1"), b("B2"), n("N2")},
			columns: 2,
			want:    [][]string{{"B1", "B2"}, {"N1", "N2"}},
		},
		{
			name:    "columns wider than input drains by earliest head",
			items:   []tile{n("N1"), b("B1"), n("N2")},
			columns: 5,
			want:    [][]string{{"N1", "N2"}, {"B1"}},
		},
		{
			name:    "banner remainder drains after full rows",
			items:   []tile{b("B1"), n("N1"), n("N2"), n("N3")},
			columns: 3,
			want:    [][]string{{"N1", "N2", "N3"}, {"B1"}},
		},
		{
			name:    "interleaved stream",
			items:   []tile{b("B1"), n("N1"), b("B2"), n("N2"), n("N3"), b("B3"), b("B4")},
			columns: 2,
			want:    [][]string{{"B1", "B2"}, {"N1", "N2"}, {"B3", "B4"}, {"N3"}},
		},
		{
			name:    "zero columns treated as one",
			items:   []tile{n("N1"), b("B1")},
			columns: 0,
			want:    [][]string{{"N1"}, {"B1"}},
		},
		{
			name:    "negative columns treated as one",
			items:   []tile{b("B1"), n("N1")},
			columns: -4,
			want:    [][]string{{"B1"}, {"N1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Pack(tt.items, tt.columns, isBanner))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Pack() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPackDoesNotModifyInput(t *testing.T) {
	items := []tile{b("B1"), n("N1"), n("N2"), b("B2"), n("N3")}
	orig := append([]tile(nil), items...)

	_ = Pack(items, 2, isBanner)

	if !reflect.DeepEqual(items, orig) {
		t.Errorf("Pack() modified input: %v, want %v", items, orig)
	}
}

func TestPackRepackIsStateless(t *testing.T) {
	items := randomTiles(rand.New(rand.NewPCG(7, 11)), 40)

	first := names(Pack(items, 3, isBanner))
	_ = Pack(items, 5, isBanner)
	again := names(Pack(items, 3, isBanner))

	if !reflect.DeepEqual(first, again) {
		t.Error("Pack() result changed after packing with another column count")
	}
}

func randomTiles(r *rand.Rand, count int) []tile {
	items := make([]tile, count)
	for i := range items {
		items[i] = tile{Name: string(rune('a'+i%26)) + string(rune('0'+i/26)), Banner: r.IntN(3) == 0}
	}
	return items
}

func TestPackProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 1024))

	for round := 0; round < 500; round++ {
		items := randomTiles(r, r.IntN(60))
		columns := 1 + r.IntN(8)
		rows := Pack(items, columns, isBanner)

		flat := Flatten(rows)
		if len(flat) != len(items) {
			t.Fatalf("round %d: %d items out, want %d", round, len(flat), len(items))
		}

		// Only the drain phase may emit short rows, one per buffer at most,
		// and they come last.
		short := 0
		for i, row := range rows {
			if len(row) == 0 || len(row) > columns {
				t.Fatalf("round %d: row %d has %d items (columns=%d)", round, i, len(row), columns)
			}
			if len(row) < columns {
				short++
			} else if short > 0 {
				t.Fatalf("round %d: full row %d after a partial row", round, i)
			}
			for _, it := range row[1:] {
				if it.Banner != row[0].Banner {
					t.Fatalf("round %d: row %d mixes banner and plain tiles", round, i)
				}
			}
		}
		if short > 2 {
			t.Fatalf("round %d: %d partial rows, want at most 2", round, short)
		}

		seen := make(map[string]int, len(items))
		for _, it := range flat {
			seen[it.Name]++
		}
		for _, it := range items {
			if seen[it.Name] != 1 {
				t.Fatalf("round %d: item %s appears %d times", round, it.Name, seen[it.Name])
			}
		}

		if !reflect.DeepEqual(partition(flat, true), partition(items, true)) {
			t.Fatalf("round %d: banner order not preserved", round)
		}
		if !reflect.DeepEqual(partition(flat, false), partition(items, false)) {
			t.Fatalf("round %d: plain order not preserved", round)
		}
	}
}

func partition(items []tile, banner bool) []string {
	var out []string
	for _, it := range items {
		if it.Banner == banner {
			out = append(out, it.Name)
		}
	}
	return out
}

func TestPackSingleColumnIsArrivalOrder(t *testing.T) {
	items := randomTiles(rand.New(rand.NewPCG(3, 5)), 30)
	flat := Flatten(Pack(items, 1, isBanner))
	if !reflect.DeepEqual(flat, items) {
		t.Errorf("Pack(columns=1) = %v, want input order", flat)
	}
}

func TestHasBannerImage(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"\t\n", false},
		{"https://example.com/a.png", true},
		{"  /img/a.png ", true},
	}

	for _, tt := range tests {
		if got := HasBannerImage(tt.url); got != tt.want {
			t.Errorf("HasBannerImage(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestFlatten(t *testing.T) {
	got := Flatten([][]int{{1, 2}, {3}, nil, {4, 5}})
	want := []int{1, 2, 3, 4, 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}
	if got := Flatten[int](nil); len(got) != 0 {
		t.Errorf("Flatten(nil) = %v, want empty", got)
	}
}
