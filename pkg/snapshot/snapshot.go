// Package snapshot saves and restores laid-out boards.
//
// A snapshot records the container width, the column state and every item
// with its final position and column. Restoring it yields a board whose
// items are already placed; an engine attached to that board picks up the
// column frontier with [masonry.Engine.Resume] and can keep appending.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/masonry"
	"github.com/matzehuels/waterfall/pkg/surface"
)

// Snapshot is the serialized form of a laid-out board.
type Snapshot struct {
	Container string    `json:"container"`
	Width     float64   `json:"width"`
	ItemWidth float64   `json:"item_width"`
	Columns   int       `json:"columns"`
	Heights   []float64 `json:"heights"`
	Items     []Item    `json:"items"`
}

// Item is one placed item.
type Item struct {
	ID       string  `json:"id"`
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Column   int     `json:"column"`
	Absolute bool    `json:"absolute,omitempty"`
}

// Capture records the state of a board laid out by an engine with the
// given stats. Every item must have been placed.
func Capture(b *surface.Board, stats masonry.Stats) (*Snapshot, error) {
	items, err := b.Items(b.ID())
	if err != nil {
		return nil, err
	}
	s := &Snapshot{
		Container: b.ID(),
		Width:     stats.Width,
		ItemWidth: stats.ItemWidth,
		Columns:   stats.Columns,
		Heights:   stats.Heights,
		Items:     make([]Item, len(items)),
	}
	for i, it := range items {
		if !it.Placed {
			return nil, errors.New(errors.ErrCodeInvalidInput, "item %d (%s) is not placed", i, it.ID)
		}
		s.Items[i] = Item{
			ID:       it.ID,
			Left:     it.Left,
			Top:      it.Top,
			Width:    it.Width,
			Height:   it.Height,
			Column:   it.Column,
			Absolute: it.Mode == masonry.Absolute,
		}
	}
	return s, nil
}

// Validate checks that the snapshot is internally consistent.
func (s *Snapshot) Validate() error {
	if s.Width <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "snapshot width must be positive")
	}
	if s.Columns < 1 || len(s.Heights) != s.Columns {
		return errors.New(errors.ErrCodeInvalidInput, "snapshot has %d columns but %d heights", s.Columns, len(s.Heights))
	}
	for i, it := range s.Items {
		if it.Column < 0 || it.Column >= s.Columns {
			return errors.New(errors.ErrCodeInvalidInput, "item %d (%s) has column %d outside [0, %d)", i, it.ID, it.Column, s.Columns)
		}
	}
	return nil
}

// Board rebuilds the board described by the snapshot with the given
// viewport height.
func (s *Snapshot) Board(viewportHeight float64) (*surface.Board, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	items := make([]*masonry.Item, len(s.Items))
	for i, si := range s.Items {
		mode := masonry.Static
		if si.Absolute {
			mode = masonry.Absolute
		}
		items[i] = &masonry.Item{
			ID:     si.ID,
			Width:  si.Width,
			Height: si.Height,
			Left:   si.Left,
			Top:    si.Top,
			Mode:   mode,
			Column: si.Column,
			Placed: true,
		}
	}
	b := surface.NewBoard(s.Container, s.Width, viewportHeight)
	b.Restore(items...)
	return b, nil
}

// WriteJSON encodes s as indented JSON to w.
func WriteJSON(s *Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes and validates a snapshot from r.
func ReadJSON(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Export writes s to a JSON file at path.
func Export(s *Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(s, f)
}

// Import reads a snapshot from a JSON file at path.
func Import(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "snapshot %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
