package rss

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSourceHasBanner(t *testing.T) {
	tests := []struct {
		name   string
		source Source
		want   bool
	}{
		{"no image", Source{}, false},
		{"blank image", Source{ImageURL: "  "}, false},
		{"image", Source{ImageURL: "https://cdn.example.com/a.jpg"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.source.HasBanner(); got != tt.want {
				t.Errorf("HasBanner() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSourceDecodesNulls(t *testing.T) {
	payload := `{"id":7,"title":"t","summary":null,"author":null,"url":"https://x",
		"published_at":null,"image_url":null,"company_names":["Le Monde","AFP"]}`

	var s Source
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if s.ID != 7 || s.ImageURL != "" || s.HasBanner() {
		t.Errorf("decoded source = %+v", s)
	}
	if got := s.Companies(); got != "Le Monde, AFP" {
		t.Errorf("Companies() = %q", got)
	}

	single := Source{CompanyName: "Reuters"}
	if got := single.Companies(); got != "Reuters" {
		t.Errorf("Companies() with company_name = %q", got)
	}
}

func TestSourcePublished(t *testing.T) {
	tests := []struct {
		raw    string
		want   time.Time
		wantOK bool
	}{
		{"2025-03-01T10:30:00Z", time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC), true},
		{"2025-03-01T10:30:00.123456", time.Date(2025, 3, 1, 10, 30, 0, 123456000, time.UTC), true},
		{"2025-03-01 10:30:00", time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC), true},
		{"2025-03-01", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := Source{PublishedAt: tt.raw}.Published()
		if ok != tt.wantOK || !got.Equal(tt.want) {
			t.Errorf("Published(%q) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFeedCompanyName(t *testing.T) {
	if got := (Feed{}).CompanyName(); got != "" {
		t.Errorf("CompanyName() = %q, want empty", got)
	}
	f := Feed{Company: &Company{Name: "Reuters"}}
	if got := f.CompanyName(); got != "Reuters" {
		t.Errorf("CompanyName() = %q, want Reuters", got)
	}
}

func TestSourceDetailEmbedsSource(t *testing.T) {
	payload := `{"id":3,"title":"x","url":"u","image_url":"i","feed_sections":["world"]}`

	var d SourceDetail
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if d.ID != 3 || !d.HasBanner() || len(d.FeedSections) != 1 {
		t.Errorf("decoded detail = %+v", d)
	}
}
