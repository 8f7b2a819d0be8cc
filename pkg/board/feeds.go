package board

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/samber/lo"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/feedwatch/sourcegrid/pkg/rss"
)

// CompanyGroup is a company card of the feeds page.
type CompanyGroup struct {
	Slug  string     `json:"slug"`
	Name  string     `json:"name"`
	Feeds []rss.Feed `json:"feeds"`
}

const unknownSlug = "unknown"

// GroupByCompany groups feeds by company slug. Groups are ordered by feed
// count, largest first, then by name. The group takes the name of its first
// feed; feeds keep their input order within a group.
func GroupByCompany(feeds []rss.Feed) []CompanyGroup {
	var groups []*CompanyGroup
	bySlug := map[string]*CompanyGroup{}

	for _, f := range feeds {
		name := companyDisplayName(f.CompanyName())
		slug := CompanySlug(name)
		if g, ok := bySlug[slug]; ok {
			g.Feeds = append(g.Feeds, f)
			continue
		}
		g := &CompanyGroup{Slug: slug, Name: name, Feeds: []rss.Feed{f}}
		bySlug[slug] = g
		groups = append(groups, g)
	}

	col := newCollator()
	slices.SortStableFunc(groups, func(a, b *CompanyGroup) int {
		if c := cmp.Compare(len(b.Feeds), len(a.Feeds)); c != 0 {
			return c
		}
		return col.CompareString(a.Name, b.Name)
	})

	return lo.Map(groups, func(g *CompanyGroup, _ int) CompanyGroup { return *g })
}

// FindGroup returns the group with slug.
func FindGroup(groups []CompanyGroup, slug string) (CompanyGroup, bool) {
	return lo.Find(groups, func(g CompanyGroup) bool { return g.Slug == slug })
}

func companyDisplayName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return unknownSlug
	}
	return name
}

// combiningDiacriticals is the Combining Diacritical Marks block, the marks
// NFD splits off Latin letters.
var combiningDiacriticals = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// stripAccents decomposes s and drops the Latin combining accents only.
func stripAccents(s string) (string, error) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningDiacriticals)))
	out, _, err := transform.String(t, s)
	return out, err
}

// CompanySlug folds a company name into an identifier: accents are removed,
// anything but ASCII letters, digits and apostrophes is dropped and the first
// character is lower-cased. Names with nothing left map to "unknown".
func CompanySlug(name string) string {
	folded, err := stripAccents(name)
	if err != nil {
		folded = name
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '\'':
			return r
		}
		return -1
	}, folded)

	if cleaned == "" {
		return unknownSlug
	}
	return strings.ToLower(cleaned[:1]) + cleaned[1:]
}

// EnabledFilter restricts feeds by their enabled flag.
type EnabledFilter string

const (
	EnabledAll   EnabledFilter = "all"
	EnabledOnly  EnabledFilter = "enabled"
	DisabledOnly EnabledFilter = "disabled"
)

// ParseEnabledFilter accepts "", "all", "enabled" and "disabled".
func ParseEnabledFilter(s string) (EnabledFilter, bool) {
	switch f := EnabledFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", EnabledAll:
		return EnabledAll, true
	case EnabledOnly, DisabledOnly:
		return f, true
	}
	return "", false
}

// FeedFilter selects feeds of a group.
type FeedFilter struct {
	// Query matches case-insensitively against the URL and section.
	Query   string
	Enabled EnabledFilter
}

// FilterFeeds returns the feeds matching filter in input order.
func FilterFeeds(feeds []rss.Feed, filter FeedFilter) []rss.Feed {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	return lo.Filter(feeds, func(f rss.Feed, _ int) bool {
		switch filter.Enabled {
		case EnabledOnly:
			if !f.Enabled {
				return false
			}
		case DisabledOnly:
			if f.Enabled {
				return false
			}
		}
		if query == "" {
			return true
		}
		searchable := strings.Join(lo.Compact([]string{f.URL, f.Section}), " ")
		return strings.Contains(strings.ToLower(searchable), query)
	})
}

// SortMode orders the feeds of a group.
type SortMode string

const (
	SortTrustDesc SortMode = "trust_desc"
	SortTrustAsc  SortMode = "trust_asc"
	SortURLAsc    SortMode = "url_asc"
	SortURLDesc   SortMode = "url_desc"
)

// SortModes lists the accepted sort modes, default first.
var SortModes = []SortMode{SortTrustDesc, SortTrustAsc, SortURLAsc, SortURLDesc}

// ParseSortMode maps s to a SortMode. The empty string selects
// SortTrustDesc.
func ParseSortMode(s string) (SortMode, bool) {
	if s == "" {
		return SortTrustDesc, true
	}
	m := SortMode(s)
	return m, slices.Contains(SortModes, m)
}

// SortFeeds returns a sorted copy of feeds. The sort is stable, and unknown
// modes sort by URL ascending.
func SortFeeds(feeds []rss.Feed, mode SortMode) []rss.Feed {
	out := slices.Clone(feeds)
	col := newCollator()
	slices.SortStableFunc(out, func(a, b rss.Feed) int {
		switch mode {
		case SortTrustDesc:
			return cmp.Compare(b.TrustScore, a.TrustScore)
		case SortTrustAsc:
			return cmp.Compare(a.TrustScore, b.TrustScore)
		case SortURLDesc:
			return col.CompareString(b.URL, a.URL)
		default:
			return col.CompareString(a.URL, b.URL)
		}
	})
	return out
}
