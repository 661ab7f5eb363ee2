// Package feed produces batches of items for the masonry engine.
//
// A Source hands out items in order, a batch at a time, the way a paginated
// backend would answer "give me the next n". Two sources are provided:
// [Synthetic] generates random heights from a seed and [Manifest] replays a
// fixed list of items read from a JSON or TOML file.
package feed

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/matzehuels/waterfall/pkg/masonry"
)

// DefaultItemWidth is the item width used when a source does not set one.
const DefaultItemWidth = 200

// Source hands out items in order. Next returns at most n items; an empty
// result with io.EOF means the source is exhausted.
type Source interface {
	Next(ctx context.Context, n int) ([]*masonry.Item, error)
}

// Drain reads every remaining item of src in batches of n.
func Drain(ctx context.Context, src Source, n int) ([]*masonry.Item, error) {
	var all []*masonry.Item
	for {
		batch, err := src.Next(ctx, n)
		all = append(all, batch...)
		if err == io.EOF {
			return all, nil
		}
		if err != nil {
			return all, err
		}
	}
}

// newID returns a fresh item identifier.
func newID() string {
	return uuid.NewString()
}

func newItem(id string, width, height float64) *masonry.Item {
	if id == "" {
		id = newID()
	}
	return &masonry.Item{ID: id, Width: width, Height: height, Column: -1}
}
