// Package masonry places fixed-width, variable-height items into a
// multi-column masonry (waterfall) layout.
//
// # Placement
//
// The column count is floor(containerWidth / itemWidth), where the item
// width is read from the first item only. The first row of items seeds the
// columns in sequence order and keeps its natural flow position; every
// later item goes to the bottom of the currently shortest column, with ties
// resolved toward the lowest column index.
//
// # Incremental growth
//
// [Engine.Append] places only the newest batch of items. The engine keeps
// an explicit frontier (the last item placed in each column) and explicit
// per-column anchors, so appending never searches layout history. When no
// usable frontier exists, for example after restoring a saved board, it is
// rebuilt by [ScanFrontier] from the items' recorded column indices.
//
// # Surfaces
//
// The engine never touches a presentation surface directly. Item sizes and
// viewport metrics are read through [Geometry], and computed positions are
// written back through it. See package surface for an in-memory
// implementation.
//
// # Loading
//
// [Engine.HandleScroll] emits [EventLoad] when the viewport reaches the last
// item and no load is in flight. The loader answers with
// [Engine.BatchReady] once the new items have been added to the surface,
// which emits [EventDone], clears the loading state and appends the batch.
package masonry
