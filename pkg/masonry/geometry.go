package masonry

// Geometry is the presentation surface the engine lays out.
//
// Items must return the container's items in sequence order. Positions
// written through SetPosition must be visible on the returned items (and on
// their flow neighbours, for static items) by the next call to Items.
type Geometry interface {
	// ContainerWidth returns the width currently available to the container.
	ContainerWidth() float64
	// SetContainerWidth applies the engine's tracked width to the container.
	SetContainerWidth(w float64)
	// Items returns the ordered items of the given container.
	Items(container string) ([]*Item, error)
	// SetPosition writes a computed position back to the surface.
	SetPosition(it *Item, pos Position)
	// ScrollOffset returns the vertical scroll offset of the viewport.
	ScrollOffset() float64
	// ViewportHeight returns the visible height of the viewport.
	ViewportHeight() float64
}
