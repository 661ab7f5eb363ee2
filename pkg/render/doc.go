// Package render turns layout snapshots into files.
//
// [RenderSVG] draws every item of a snapshot as a rectangle at its placed
// position, coloured by column. [RenderJSON] emits the snapshot itself.
// [ToPDF] and [ToPNG] convert SVG output with the external rsvg-convert
// tool (from librsvg). [Render] dispatches on a format name:
//
//	data, err := render.Render(ctx, snap, render.FormatSVG, render.WithLabels())
package render
