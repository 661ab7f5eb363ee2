// Package surface provides an in-memory layout surface for the masonry
// engine.
//
// A Board behaves like a block container on a page: static items flow left
// to right and wrap at the container width, absolute items sit wherever the
// engine put them and take no part in the flow. A Board also models the
// viewport the container is scrolled in.
package surface

import (
	"fmt"

	"github.com/matzehuels/waterfall/pkg/masonry"
)

// Board is a container of items plus the viewport showing it.
// It is not safe for concurrent use.
type Board struct {
	id       string
	width    float64
	items    []*masonry.Item
	scroll   float64
	viewport float64
}

// NewBoard creates an empty board with the given container id, container
// width and viewport height.
func NewBoard(id string, width, viewportHeight float64) *Board {
	return &Board{id: id, width: width, viewport: viewportHeight}
}

// ID returns the container id.
func (b *Board) ID() string { return b.id }

// AppendItems adds items to the end of the board in static mode.
func (b *Board) AppendItems(items ...*masonry.Item) {
	for _, it := range items {
		it.Mode = masonry.Static
		it.Placed = false
	}
	b.items = append(b.items, items...)
	b.reflow()
}

// Restore adds items that keep their current mode and position, as when
// reloading a layout that was placed earlier.
func (b *Board) Restore(items ...*masonry.Item) {
	b.items = append(b.items, items...)
	b.reflow()
}

// Len returns the number of items.
func (b *Board) Len() int { return len(b.items) }

// SetWidth changes the width available to the container, as a window
// resize would. The engine picks it up through ContainerWidth.
func (b *Board) SetWidth(w float64) {
	b.width = w
	b.reflow()
}

// SetViewportHeight changes the viewport height.
func (b *Board) SetViewportHeight(h float64) { b.viewport = h }

// ScrollTo moves the viewport to offset, clamped to the content.
func (b *Board) ScrollTo(offset float64) {
	b.scroll = min(max(offset, 0), b.maxScroll())
}

// ScrollBy moves the viewport by delta.
func (b *Board) ScrollBy(delta float64) { b.ScrollTo(b.scroll + delta) }

// ContentHeight returns the bottom edge of the lowest item.
func (b *Board) ContentHeight() float64 {
	var h float64
	for _, it := range b.items {
		h = max(h, it.Bottom())
	}
	return h
}

// Visible returns the items that intersect the viewport.
func (b *Board) Visible() []*masonry.Item {
	var out []*masonry.Item
	lo, hi := b.scroll, b.scroll+b.viewport
	for _, it := range b.items {
		if it.Bottom() > lo && it.Top < hi {
			out = append(out, it)
		}
	}
	return out
}

func (b *Board) maxScroll() float64 {
	return max(b.ContentHeight()-b.viewport, 0)
}

// reflow positions every static item in natural flow order.
func (b *Board) reflow() {
	var x, y, row float64
	for _, it := range b.items {
		if it.Mode != masonry.Static {
			continue
		}
		if x > 0 && x+it.Width > b.width {
			x, y, row = 0, y+row, 0
		}
		it.Left, it.Top = x, y
		x += it.Width
		row = max(row, it.Height)
	}
}

// =============================================================================
// masonry.Geometry
// =============================================================================

// ContainerWidth returns the width available to the container.
func (b *Board) ContainerWidth() float64 { return b.width }

// SetContainerWidth fixes the container width.
func (b *Board) SetContainerWidth(w float64) {
	if w != b.width {
		b.SetWidth(w)
	}
}

// Items returns the board's items in order. The slice is shared with the
// board; callers must not reorder it.
func (b *Board) Items(container string) ([]*masonry.Item, error) {
	if container != b.id {
		return nil, fmt.Errorf("unknown container %q", container)
	}
	return b.items, nil
}

// SetPosition applies a position. Static items around it reflow, since an
// absolute item leaves the flow and a static one rejoins it.
func (b *Board) SetPosition(it *masonry.Item, pos masonry.Position) {
	it.Mode = pos.Mode
	if pos.Mode == masonry.Absolute {
		it.Left, it.Top = pos.Left, pos.Top
	}
	b.reflow()
}

// ScrollOffset returns the viewport's scroll offset.
func (b *Board) ScrollOffset() float64 { return b.scroll }

// ViewportHeight returns the viewport height.
func (b *Board) ViewportHeight() float64 { return b.viewport }

var _ masonry.Geometry = (*Board)(nil)
