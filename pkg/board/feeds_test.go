package board

import (
	"reflect"
	"testing"

	"github.com/feedwatch/sourcegrid/pkg/rss"
)

func TestCompanySlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Le Monde", "leMonde"},
		{"Élysée Presse", "elyseePresse"},
		{"L'Équipe", "l'Equipe"},
		{"BBC News 24", "bBCNews24"},
		{"日本経済新聞", "unknown"},
		{"", "unknown"},
		{"---", "unknown"},
		{"ça va", "cava"},
	}
	for _, tt := range tests {
		if got := CompanySlug(tt.name); got != tt.want {
			t.Errorf("CompanySlug(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestStripAccents(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Crème Brûlée", "Creme Brulee"},
		{"L'Équipe", "L'Equipe"},
		// marks outside the Latin block survive
		{"a\u20d7", "a\u20d7"},
		{"\u0915\u0941", "\u0915\u0941"},
	}
	for _, tt := range tests {
		got, err := stripAccents(tt.in)
		if err != nil {
			t.Fatalf("stripAccents(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("stripAccents(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func feedOf(id int64, company string) rss.Feed {
	f := rss.Feed{ID: id}
	if company != "" {
		f.Company = &rss.Company{Name: company}
	}
	return f
}

func TestGroupByCompany(t *testing.T) {
	feeds := []rss.Feed{
		feedOf(1, "Le Monde"),
		feedOf(2, "AFP"),
		feedOf(3, "Le  Monde"),
		feedOf(4, ""),
		feedOf(5, "BBC"),
		feedOf(6, "AFP"),
		feedOf(7, "  "),
	}

	groups := GroupByCompany(feeds)

	type summary struct {
		slug, name string
		ids        []int64
	}
	var got []summary
	for _, g := range groups {
		s := summary{slug: g.Slug, name: g.Name}
		for _, f := range g.Feeds {
			s.ids = append(s.ids, f.ID)
		}
		got = append(got, s)
	}

	want := []summary{
		{"aFP", "AFP", []int64{2, 6}},
		{"leMonde", "Le Monde", []int64{1, 3}},
		{"unknown", "unknown", []int64{4, 7}},
		{"bBC", "BBC", []int64{5}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GroupByCompany() =\n%v\nwant\n%v", got, want)
	}

	if g, ok := FindGroup(groups, "bBC"); !ok || len(g.Feeds) != 1 {
		t.Errorf("FindGroup(bBC) = %v, %v", g, ok)
	}
	if _, ok := FindGroup(groups, "nope"); ok {
		t.Error("FindGroup(nope) found a group")
	}
}

func TestGroupByCompanyEmpty(t *testing.T) {
	if got := GroupByCompany(nil); len(got) != 0 {
		t.Errorf("GroupByCompany(nil) = %v, want empty", got)
	}
}

func TestFilterFeeds(t *testing.T) {
	feeds := []rss.Feed{
		{ID: 1, URL: "https://lemonde.fr/rss/une.xml", Section: "Une", Enabled: true},
		{ID: 2, URL: "https://lemonde.fr/rss/tech.xml", Section: "Pixels", Enabled: false},
		{ID: 3, URL: "https://afp.com/feed", Enabled: true},
	}

	tests := []struct {
		name   string
		filter FeedFilter
		want   []int64
	}{
		{"no filter", FeedFilter{}, []int64{1, 2, 3}},
		{"enabled", FeedFilter{Enabled: EnabledOnly}, []int64{1, 3}},
		{"disabled", FeedFilter{Enabled: DisabledOnly}, []int64{2}},
		{"url query", FeedFilter{Query: "LEMONDE"}, []int64{1, 2}},
		{"section query", FeedFilter{Query: " pixels "}, []int64{2}},
		{"query and enabled", FeedFilter{Query: "lemonde", Enabled: EnabledOnly}, []int64{1}},
		{"no match", FeedFilter{Query: "bbc"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []int64
			for _, f := range FilterFeeds(feeds, tt.filter) {
				ids = append(ids, f.ID)
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("FilterFeeds() = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestParseEnabledFilter(t *testing.T) {
	tests := []struct {
		in     string
		want   EnabledFilter
		wantOK bool
	}{
		{"", EnabledAll, true},
		{"all", EnabledAll, true},
		{"Enabled", EnabledOnly, true},
		{"disabled", DisabledOnly, true},
		{"maybe", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseEnabledFilter(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseEnabledFilter(%q) = %q, %v", tt.in, got, ok)
		}
	}
}

func TestSortFeeds(t *testing.T) {
	feeds := []rss.Feed{
		{ID: 1, URL: "https://b.example", TrustScore: 0.5},
		{ID: 2, URL: "https://a.example", TrustScore: 0.9},
		{ID: 3, URL: "https://c.example", TrustScore: 0.5},
		{ID: 4, URL: "https://d.example", TrustScore: 0.1},
	}

	tests := []struct {
		mode SortMode
		want []int64
	}{
		{SortTrustDesc, []int64{2, 1, 3, 4}},
		{SortTrustAsc, []int64{4, 1, 3, 2}},
		{SortURLAsc, []int64{2, 1, 3, 4}},
		{SortURLDesc, []int64{4, 3, 1, 2}},
		{"bogus", []int64{2, 1, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			var ids []int64
			for _, f := range SortFeeds(feeds, tt.mode) {
				ids = append(ids, f.ID)
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("SortFeeds(%s) = %v, want %v", tt.mode, ids, tt.want)
			}
		})
	}

	if feeds[0].ID != 1 {
		t.Error("SortFeeds modified its input")
	}
}

func TestParseSortMode(t *testing.T) {
	if m, ok := ParseSortMode(""); !ok || m != SortTrustDesc {
		t.Errorf("ParseSortMode(\"\") = %q, %v", m, ok)
	}
	if m, ok := ParseSortMode("url_desc"); !ok || m != SortURLDesc {
		t.Errorf("ParseSortMode(url_desc) = %q, %v", m, ok)
	}
	if _, ok := ParseSortMode("newest"); ok {
		t.Error("ParseSortMode(newest) accepted")
	}
}
