package board

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/feedwatch/sourcegrid/pkg/rss"
)

// CompanyOption is an entry of the company filter.
type CompanyOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CompanyOptions lists the distinct companies owning feeds, sorted by name.
// When several feeds carry the same company ID the last name seen wins.
func CompanyOptions(feeds []rss.Feed) []CompanyOption {
	companies := lo.FilterMap(feeds, func(f rss.Feed, _ int) (rss.Company, bool) {
		if f.Company == nil {
			return rss.Company{}, false
		}
		return *f.Company, true
	})

	order := lo.Uniq(lo.Map(companies, func(c rss.Company, _ int) int64 { return c.ID }))
	byID := lo.SliceToMap(companies, func(c rss.Company) (int64, string) { return c.ID, c.Name })

	opts := lo.Map(order, func(id int64, _ int) CompanyOption {
		return CompanyOption{ID: id, Name: byID[id]}
	})

	col := newCollator()
	slices.SortStableFunc(opts, func(a, b CompanyOption) int {
		return col.CompareString(a.Name, b.Name)
	})
	return opts
}

// FeedOptions lists distinct feeds by ID in ascending ID order. When an ID
// repeats the last feed seen wins.
func FeedOptions(feeds []rss.Feed) []rss.Feed {
	byID := lo.KeyBy(feeds, func(f rss.Feed) int64 { return f.ID })
	opts := lo.Values(byID)
	slices.SortFunc(opts, func(a, b rss.Feed) int { return cmp.Compare(a.ID, b.ID) })
	return opts
}

// newCollator returns a locale-neutral collator for display ordering.
// Collators are not safe for concurrent use, so each sort builds its own.
func newCollator() *collate.Collator {
	return collate.New(language.Und)
}
