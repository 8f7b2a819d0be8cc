// Package render turns a packed tile grid into output documents.
//
// # Overview
//
// A [Grid] is a page of sources already packed into rows (see package
// tiles). Renderers live in subpackages:
//
//   - [sink]: the JSON document served by the HTTP API and written by
//     `sourcegrid sources -o rows.json`
//   - [text]: a lipgloss grid for terminals, one bordered cell per tile
//
// Both renderers preserve row order and tile order exactly; they never
// re-pack. Re-packing for another column count goes through
// pipeline.Runner.Repack.
//
// [sink]: github.com/feedwatch/sourcegrid/pkg/render/sink
// [text]: github.com/feedwatch/sourcegrid/pkg/render/text
package render
