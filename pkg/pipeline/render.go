package pipeline

import (
	"context"
	"time"

	"github.com/feedwatch/sourcegrid/pkg/observability"
	"github.com/feedwatch/sourcegrid/pkg/render"
	"github.com/feedwatch/sourcegrid/pkg/render/sink"
	"github.com/feedwatch/sourcegrid/pkg/render/text"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, g render.Grid, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := renderFormats(g, opts)

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(g render.Grid, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			data, err := sink.RenderJSON(g)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		case FormatText:
			var textOpts []text.Option
			if opts.CellWidth > 0 {
				textOpts = append(textOpts, text.WithCellWidth(opts.CellWidth))
			}
			artifacts[format] = []byte(text.Render(g, textOpts...))
		}
	}
	return artifacts, nil
}
