package pipeline

import (
	"context"

	"github.com/matzehuels/waterfall/pkg/render"
	"github.com/matzehuels/waterfall/pkg/snapshot"
)

// RenderFromSnapshot renders a snapshot in all requested formats.
func RenderFromSnapshot(ctx context.Context, snap *snapshot.Snapshot, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	svgOpts := opts.SVGOptions()
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := render.Render(ctx, snap, format, svgOpts...)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
