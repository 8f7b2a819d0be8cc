package sink

import (
	"encoding/json"

	"github.com/feedwatch/sourcegrid/pkg/board"
	"github.com/feedwatch/sourcegrid/pkg/render"
	"github.com/feedwatch/sourcegrid/pkg/rss"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	compact      bool
	resolveImage func(string) string
}

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// WithJSONImageResolver rewrites image_url values, e.g. to route relative
// icon paths through the backend's image endpoint.
func WithJSONImageResolver(fn func(string) string) JSONOption {
	return func(r *jsonRenderer) { r.resolveImage = fn }
}

// Document is the JSON form of a grid.
type Document struct {
	Columns int          `json:"columns"`
	Total   int          `json:"total"`
	Window  board.Window `json:"window"`
	Rows    [][]Tile     `json:"rows"`
}

// Tile is one source in a row.
type Tile struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary,omitempty"`
	URL          string   `json:"url"`
	ImageURL     string   `json:"image_url,omitempty"`
	CompanyNames []string `json:"company_names,omitempty"`
	Company      string   `json:"company_name,omitempty"`
	PublishedAt  string   `json:"published_at,omitempty"`
	Banner       bool     `json:"banner"`
}

// NewDocument converts g into its JSON form. Rows are never nil, so an
// empty grid encodes as "rows": [].
func NewDocument(g render.Grid, opts ...JSONOption) Document {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	return r.document(g)
}

// RenderJSON encodes g as a JSON document. It does not modify g and is safe
// to call concurrently.
func RenderJSON(g render.Grid, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	doc := r.document(g)
	if r.compact {
		return json.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (r jsonRenderer) document(g render.Grid) Document {
	doc := Document{
		Columns: g.Columns,
		Total:   g.Window.Total,
		Window:  g.Window,
		Rows:    make([][]Tile, 0, len(g.Rows)),
	}
	for _, row := range g.Rows {
		tiles := make([]Tile, 0, len(row))
		for _, s := range row {
			tiles = append(tiles, r.tile(s))
		}
		doc.Rows = append(doc.Rows, tiles)
	}
	return doc
}

func (r jsonRenderer) tile(s rss.Source) Tile {
	img := s.ImageURL
	if img != "" && r.resolveImage != nil {
		img = r.resolveImage(img)
	}
	return Tile{
		ID:           s.ID,
		Title:        s.Title,
		Summary:      s.Summary,
		URL:          s.URL,
		ImageURL:     img,
		CompanyNames: s.CompanyNames,
		Company:      s.Companies(),
		PublishedAt:  s.PublishedAt,
		Banner:       s.HasBanner(),
	}
}
