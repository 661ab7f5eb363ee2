package masonry

import (
	"strconv"
	"strings"

	"github.com/matzehuels/waterfall/pkg/errors"
)

// Mode is the positioning mode of an item on its surface.
type Mode int

const (
	// Static items sit in the surface's natural flow.
	Static Mode = iota
	// Absolute items are positioned at an explicit Left/Top.
	Absolute
)

func (m Mode) String() string {
	if m == Absolute {
		return "absolute"
	}
	return "static"
}

// Item is one entry of the layout sequence. Width and Height are the
// measured size; Left and Top are relative to the container's top-left
// corner. Column is only meaningful when Placed is set.
type Item struct {
	ID     string
	Width  float64
	Height float64
	Left   float64
	Top    float64
	Mode   Mode

	// Column is the column the engine assigned to the item.
	Column int
	// Placed reports whether the engine has assigned Column, either as a
	// column seed or by absolute placement.
	Placed bool
}

// Bottom returns Top + Height.
func (it *Item) Bottom() float64 { return it.Top + it.Height }

// Position is what the engine writes back for an item.
type Position struct {
	Mode Mode
	Left float64
	Top  float64
}

// ParseWidth parses a container width given as a plain number ("620") or a
// pixel length ("620px").
func ParseWidth(s string) (float64, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimSuffix(v, "px")
	w, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidWidth, err, "cannot parse width %q", s)
	}
	if w <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidWidth, "width must be positive, got %q", s)
	}
	return w, nil
}

// FormatWidth renders a width as a pixel length, the inverse of ParseWidth.
func FormatWidth(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64) + "px"
}
