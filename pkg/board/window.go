package board

import (
	"fmt"

	"github.com/feedwatch/sourcegrid/pkg/rss"
)

// Window describes where a page sits in the full list of sources.
type Window struct {
	Start          int  `json:"start"` // 1-based index of the first item, 0 when empty
	End            int  `json:"end"`   // 1-based index of the last item
	Total          int  `json:"total"`
	HasPrevious    bool `json:"has_previous"`
	HasNext        bool `json:"has_next"`
	PreviousOffset int  `json:"previous_offset"`
	NextOffset     int  `json:"next_offset"`
}

// PageWindow computes the window of page for paging by pageSize.
func PageWindow(page rss.SourcePage, pageSize int) Window {
	n := len(page.Items)
	w := Window{
		End:            page.Offset + n,
		Total:          page.Total,
		HasPrevious:    page.Offset > 0,
		HasNext:        page.Offset+n < page.Total,
		PreviousOffset: max(0, page.Offset-pageSize),
		NextOffset:     page.Offset + pageSize,
	}
	if page.Total > 0 {
		w.Start = page.Offset + 1
	}
	return w
}

// String returns "Showing a-b of n".
func (w Window) String() string {
	return fmt.Sprintf("Showing %d-%d of %d", w.Start, w.End, w.Total)
}

// SourceCount returns "1 source" or "n sources".
func SourceCount(n int) string {
	if n == 1 {
		return "1 source"
	}
	return fmt.Sprintf("%d sources", n)
}
