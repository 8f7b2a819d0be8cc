package board

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/feedwatch/sourcegrid/pkg/rss"
)

// UnknownCompany labels feeds without a company.
const UnknownCompany = "Unknown company"

// FeedLabel returns "#id - Company / section", omitting the section when
// the feed has none.
func FeedLabel(f rss.Feed) string {
	name := f.CompanyName()
	if f.Company == nil {
		name = UnknownCompany
	}
	label := fmt.Sprintf("#%d - %s", f.ID, name)
	if f.Section != "" {
		label += " / " + f.Section
	}
	return label
}

// errorPreviewLen is how many ingest errors IngestSummary spells out.
const errorPreviewLen = 2

// IngestSummary condenses an ingest run into one line:
//
//	processed=3 | skipped=0 | created=12 | updated=4 | errors=1 | duration=850ms | #7: timeout
func IngestSummary(r rss.IngestResult) string {
	summary := strings.Join([]string{
		fmt.Sprintf("processed=%d", r.FeedsProcessed),
		fmt.Sprintf("skipped=%d", r.FeedsSkipped),
		fmt.Sprintf("created=%d", r.SourcesCreated),
		fmt.Sprintf("updated=%d", r.SourcesUpdated),
		fmt.Sprintf("errors=%d", len(r.Errors)),
		fmt.Sprintf("duration=%dms", r.DurationMS),
	}, " | ")

	if len(r.Errors) == 0 {
		return summary
	}

	preview := lo.Map(lo.Slice(r.Errors, 0, errorPreviewLen), func(e rss.IngestError, _ int) string {
		return fmt.Sprintf("#%d: %s", e.FeedID, e.Error)
	})
	return summary + " | " + strings.Join(preview, " ; ")
}
