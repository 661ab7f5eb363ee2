package masonry

import (
	"math"
	"slices"

	"github.com/matzehuels/waterfall/pkg/errors"
)

// MinPointer returns the index of the first column with the smallest
// height. Ties go to the lowest index; an empty slice yields 0.
func MinPointer(heights []float64) int {
	pointer := 0
	for i, h := range heights {
		if h < heights[pointer] {
			pointer = i
		}
	}
	return pointer
}

// ColumnCount returns floor(width / itemWidth), but never less than
// minColumns (itself clamped to at least 1).
func ColumnCount(width, itemWidth float64, minColumns int) int {
	minColumns = max(minColumns, 1)
	if itemWidth <= 0 {
		return minColumns
	}
	return max(int(math.Floor(width/itemWidth)), minColumns)
}

// Columns tracks, for a fixed number of columns, the occupied height, the
// horizontal anchor and the last placed item of each column.
//
// heights[i] always equals the bottom edge of the item recorded in last[i];
// a column with no item yet has height 0 and last -1.
type Columns struct {
	heights []float64
	anchors []float64
	last    []int
}

// NewColumns returns n empty columns.
func NewColumns(n int) *Columns {
	c := &Columns{
		heights: make([]float64, n),
		anchors: make([]float64, n),
		last:    make([]int, n),
	}
	for i := range c.last {
		c.last[i] = -1
	}
	return c
}

// Len returns the number of columns.
func (c *Columns) Len() int { return len(c.heights) }

// Seed makes the item at index the first item of column col.
func (c *Columns) Seed(col int, left, height float64, index int) {
	c.heights[col] = height
	c.anchors[col] = left
	c.last[col] = index
}

// Open sets the anchor of a column that has no seed item.
func (c *Columns) Open(col int, left float64) {
	c.heights[col] = 0
	c.anchors[col] = left
	c.last[col] = -1
}

// Shortest returns the column new items go to.
func (c *Columns) Shortest() int { return MinPointer(c.heights) }

// Place stacks an item of the given height onto column col and returns the
// position it occupies.
func (c *Columns) Place(col int, height float64, index int) (left, top float64) {
	left, top = c.anchors[col], c.heights[col]
	c.heights[col] += height
	c.last[col] = index
	return left, top
}

// Heights returns a copy of the column heights.
func (c *Columns) Heights() []float64 { return slices.Clone(c.heights) }

// Anchor returns the left offset of column col.
func (c *Columns) Anchor(col int) float64 { return c.anchors[col] }

// Last returns the index of the last item in column col, or -1.
func (c *Columns) Last(col int) int { return c.last[col] }

// MaxHeight returns the height of the tallest column.
func (c *Columns) MaxHeight() float64 {
	if len(c.heights) == 0 {
		return 0
	}
	return slices.Max(c.heights)
}

// ScanFrontier rebuilds the columns from the items before start by walking
// backward until every column has been seen. Only placed items are
// considered, and their recorded Column identifies the column.
//
// The walk is unbounded. When fewer than n items precede start and each of
// them was placed in a column of its own, the remaining columns are still
// empty and are opened at items[0].Left + col*itemWidth, as Init leaves
// them. Otherwise a column with no placed item fails with
// FRONTIER_INCOMPLETE.
func ScanFrontier(items []*Item, start, n int) (*Columns, error) {
	if start > len(items) || start < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scan start %d outside of %d items", start, len(items))
	}
	c := NewColumns(n)
	found := 0
	for i := start - 1; i >= 0 && found < n; i-- {
		it := items[i]
		if !it.Placed || it.Column < 0 || it.Column >= n || c.last[it.Column] >= 0 {
			continue
		}
		c.Seed(it.Column, it.Left, it.Bottom(), i)
		found++
	}
	if found < n && found == start && start > 0 {
		first := items[0]
		for col := range n {
			if c.last[col] < 0 {
				c.Open(col, first.Left+float64(col)*first.Width)
			}
		}
		return c, nil
	}
	if found < n {
		return nil, errors.New(errors.ErrCodeFrontierIncomplete,
			"found %d of %d columns before item %d", found, n, start)
	}
	return c, nil
}
