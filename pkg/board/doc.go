// Package board holds the view logic of the admin dashboard that sits
// around the tile grid: paging windows, filter options, labels, ingest
// summaries and the company grouping of the feeds page.
//
// Everything here is pure and works on the types of package rss, so the
// CLI, the interactive browser and the HTTP server render the same text.
package board
