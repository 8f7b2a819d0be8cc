package tiles

import (
	"math"
	"strings"
)

// HasBannerImage reports whether imageURL references a banner image.
// Blank and whitespace-only URLs do not count.
func HasBannerImage(imageURL string) bool {
	return strings.TrimSpace(imageURL) != ""
}

// pending is an item waiting in a buffer together with its input position.
type pending[T any] struct {
	item  T
	index int
}

// buffer is a FIFO of pending items.
type buffer[T any] []pending[T]

// head returns the input position of the oldest pending item, or
// math.MaxInt when the buffer is empty.
func (b buffer[T]) head() int {
	if len(b) == 0 {
		return math.MaxInt
	}
	return b[0].index
}

// Pack splits items into rows of columns items each.
//
// Items for which hasBanner returns true are never mixed with items for
// which it returns false. A columns value below 1 is treated as 1. The
// result is deterministic for a given input and column count; Pack never
// modifies items.
func Pack[T any](items []T, columns int, hasBanner func(T) bool) [][]T {
	columns = max(columns, 1)
	if len(items) == 0 {
		return nil
	}

	var banner, plain buffer[T]
	rows := make([][]T, 0, len(items)/columns+2)

	flush := func(b *buffer[T]) {
		n := min(columns, len(*b))
		row := make([]T, n)
		for i := 0; i < n; i++ {
			row[i] = (*b)[i].item
		}
		*b = (*b)[n:]
		rows = append(rows, row)
	}

	for i, item := range items {
		if hasBanner(item) {
			banner = append(banner, pending[T]{item: item, index: i})
		} else {
			plain = append(plain, pending[T]{item: item, index: i})
		}

		for len(banner) >= columns || len(plain) >= columns {
			switch {
			case len(banner) >= columns && len(plain) >= columns:
				if banner.head() <= plain.head() {
					flush(&banner)
				} else {
					flush(&plain)
				}
			case len(banner) >= columns:
				flush(&banner)
			default:
				flush(&plain)
			}
		}
	}

	first, second := &banner, &plain
	if banner.head() > plain.head() {
		first, second = second, first
	}
	for len(*first) > 0 {
		flush(first)
	}
	for len(*second) > 0 {
		flush(second)
	}
	return rows
}

// Flatten concatenates rows back into a single slice in display order.
func Flatten[T any](rows [][]T) []T {
	n := 0
	for _, row := range rows {
		n += len(row)
	}
	out := make([]T, 0, n)
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}
