// Package sink writes packed grids as JSON.
//
// The document mirrors what the dashboard renders:
//
//	{
//	  "columns": 4,
//	  "total": 120,
//	  "window": {"start": 1, "end": 50, ...},
//	  "rows": [
//	    [{"id": 1, "title": "...", "banner": true, ...}, ...],
//	    ...
//	  ]
//	}
//
// Each tile carries a "banner" flag so consumers do not need to re-derive
// it from image_url.
package sink
