package render

import (
	"bytes"
	"fmt"
	"html"
	"slices"

	"github.com/matzehuels/waterfall/pkg/snapshot"
)

const itemInteractionCSS = `
    .item { transition: opacity 0.2s ease; }
    .dim .item:not(.highlight) { opacity: 0.35; }
    .item-label { font: 12px sans-serif; fill: #1f2328; pointer-events: none; }`

const itemInteractionJS = `
    const root = document.getElementById('waterfall');
    root.querySelectorAll('.item').forEach(el => {
      el.addEventListener('mouseenter', () => {
        root.classList.add('dim');
        root.querySelectorAll('.' + el.dataset.column).forEach(c => c.classList.add('highlight'));
      });
      el.addEventListener('mouseleave', () => {
        root.classList.remove('dim');
        root.querySelectorAll('.item').forEach(c => c.classList.remove('highlight'));
      });
    });`

// Palette is the default column fill cycle.
var Palette = []string{
	"#8ecae6", "#ffb703", "#95d5b2", "#f4a261", "#cdb4db", "#e76f51", "#90be6d", "#a8dadc",
}

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	gap         float64
	labels      bool
	interactive bool
	palette     []string
}

// WithGap insets every item by gap/2 on each side.
func WithGap(gap float64) SVGOption { return func(r *svgRenderer) { r.gap = gap } }

// WithLabels writes each item's id inside its rectangle.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithInteraction adds hover highlighting of the hovered item's column.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithPalette replaces the column colours.
func WithPalette(colors ...string) SVGOption {
	return func(r *svgRenderer) {
		if len(colors) > 0 {
			r.palette = colors
		}
	}
}

// RenderSVG draws the snapshot as an SVG document.
func RenderSVG(s *snapshot.Snapshot, opts ...SVGOption) []byte {
	r := svgRenderer{palette: Palette}
	for _, opt := range opts {
		opt(&r)
	}

	width, height := s.Width, contentHeight(s)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" id="waterfall" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <rect width="%.1f" height="%.1f" fill="#ffffff"/>`+"\n", width, height)

	inset := r.gap / 2
	for _, it := range s.Items {
		w, h := max(it.Width-r.gap, 1), max(it.Height-r.gap, 1)
		fmt.Fprintf(&buf, `  <rect id="item-%s" class="item col-%d" data-column="col-%d" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="%s"/>`+"\n",
			html.EscapeString(it.ID), it.Column, it.Column, it.Left+inset, it.Top+inset, w, h, r.color(it.Column))
	}
	if r.labels {
		for _, it := range s.Items {
			fmt.Fprintf(&buf, `  <text class="item-label" x="%.1f" y="%.1f" text-anchor="middle">%s</text>`+"\n",
				it.Left+it.Width/2, it.Top+it.Height/2, html.EscapeString(shortID(it.ID)))
		}
	}
	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", itemInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", itemInteractionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) color(col int) string {
	if col < 0 {
		return "#d0d7de"
	}
	return r.palette[col%len(r.palette)]
}

// contentHeight is the tallest column, falling back to the lowest item.
func contentHeight(s *snapshot.Snapshot) float64 {
	h := 0.0
	if len(s.Heights) > 0 {
		h = slices.Max(s.Heights)
	}
	for _, it := range s.Items {
		h = max(h, it.Top+it.Height)
	}
	return h
}

// shortID trims generated ids to something that fits a card.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
