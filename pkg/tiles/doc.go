// Package tiles lays source tiles out into fixed-width grid rows.
//
// Sources with a banner image render as taller tiles than sources without
// one. Mixing both kinds in a single grid row leaves ragged gaps, so the
// packer keeps two FIFO buffers, one per kind, and only ever emits a row made
// of a single kind. Whenever a buffer holds enough tiles to fill a row it is
// flushed; if both can fill a row, the buffer holding the oldest pending tile
// goes first. Tiles therefore reach the grid roughly in arrival order even
// though they are split by kind.
//
// # Packing
//
// [Pack] is a pure function over its input:
//
//	rows := tiles.Pack(page.Items, cols, rss.Source.HasBanner)
//
// Every row holds exactly cols tiles except the tail: once the input is
// exhausted each buffer drains its remainder (fewer than cols tiles) into one
// partial row, the buffer with the oldest head first. Banner tiles keep their
// relative order, and so do tiles without a banner.
//
// # Columns
//
// The column count comes from the measured container width:
//
//	cols := tiles.Columns(containerWidth, gap, tiles.DefaultMinTileWidth)
//
// The packer holds no state between runs. When the container is resized and
// the column count changes, call [Pack] again on the full, unmodified input.
package tiles
