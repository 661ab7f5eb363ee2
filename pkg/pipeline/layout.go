package pipeline

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/waterfall/pkg/cache"
	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/masonry"
	"github.com/matzehuels/waterfall/pkg/notify"
	"github.com/matzehuels/waterfall/pkg/snapshot"
	"github.com/matzehuels/waterfall/pkg/surface"
)

// HashItems returns the content hash of an item sequence.
func HashItems(items []*masonry.Item) string {
	type key struct {
		ID            string
		Width, Height float64
	}
	keys := make([]key, len(items))
	for i, it := range items {
		keys[i] = key{it.ID, it.Width, it.Height}
	}
	data, _ := json.Marshal(keys)
	return cache.Hash(data)
}

// splitPages divides n items into an initial page and the number of full
// batches that follow it. The initial page holds between 1 and batch items.
func splitPages(n, batch int) (initial, batches int) {
	if n == 0 {
		return 0, 0
	}
	batches = (n - 1) / batch
	return n - batches*batch, batches
}

// GenerateLayout lays out items as an infinite-scroll session would: the
// initial page is placed by Init, then every scroll to the bottom raises a
// load request whose batch is appended incrementally.
func GenerateLayout(ctx context.Context, items []*masonry.Item, opts Options) (*snapshot.Snapshot, int, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, 0, err
	}
	if len(items) == 0 {
		return nil, 0, errors.New(errors.ErrCodeNoItems, "no items to lay out")
	}

	initial, batches := splitPages(len(items), opts.BatchSize)
	board := surface.NewBoard(opts.Container, opts.Width, opts.ViewportHeight)
	board.AppendItems(items[:initial]...)

	engine, err := masonry.New(board, opts.EngineConfig(), masonry.WithLogger(opts.Logger))
	if err != nil {
		return nil, 0, err
	}
	if err := engine.Init(ctx, masonry.Options{}); err != nil {
		return nil, 0, err
	}

	if err := scrollBatches(ctx, board, engine, items[initial:], batches); err != nil {
		return nil, 0, err
	}

	snap, err := snapshot.Capture(board, engine.Stats())
	if err != nil {
		return nil, 0, err
	}
	return snap, batches, nil
}

// ContinueLayout appends items to a previously captured layout without
// moving anything already placed. Items that do not fill a whole batch
// are appended first; the full batches then follow the scroll and load
// cycle of GenerateLayout.
func ContinueLayout(ctx context.Context, snap *snapshot.Snapshot, items []*masonry.Item, opts Options) (*snapshot.Snapshot, int, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, 0, err
	}
	board, err := snap.Board(opts.ViewportHeight)
	if err != nil {
		return nil, 0, err
	}

	cfg := opts.EngineConfig()
	cfg.Width, cfg.Container = snap.Width, snap.Container
	cfg.MinColumns = max(cfg.MinColumns, snap.Columns)

	batches, rest := len(items)/opts.BatchSize, len(items)%opts.BatchSize
	if rest > 0 {
		partial := cfg
		partial.BatchSize = rest
		engine, err := masonry.New(board, partial, masonry.WithLogger(opts.Logger))
		if err != nil {
			return nil, 0, err
		}
		if err := engine.Resume(ctx); err != nil {
			return nil, 0, err
		}
		board.AppendItems(items[:rest]...)
		if err := engine.Append(ctx); err != nil {
			return nil, 0, err
		}
	}

	engine, err := masonry.New(board, cfg, masonry.WithLogger(opts.Logger))
	if err != nil {
		return nil, 0, err
	}
	if err := engine.Resume(ctx); err != nil {
		return nil, 0, err
	}
	if err := scrollBatches(ctx, board, engine, items[rest:], batches); err != nil {
		return nil, 0, err
	}

	out, err := snapshot.Capture(board, engine.Stats())
	if err != nil {
		return nil, 0, err
	}
	return out, batches, nil
}

// scrollBatches feeds items to the engine one batch per load request,
// scrolling the board to its bottom to raise each request.
func scrollBatches(ctx context.Context, board *surface.Board, engine *masonry.Engine, items []*masonry.Item, batches int) error {
	next := 0
	var pending []*masonry.Item
	engine.On(masonry.EventLoad, func(_ *notify.Notifier, args ...any) {
		n := args[0].(int)
		pending = items[next : next+n]
		next += n
	})

	for range batches {
		if err := ctx.Err(); err != nil {
			return err
		}
		board.ScrollTo(board.ContentHeight())
		requested, err := engine.HandleScroll(ctx)
		if err != nil {
			return err
		}
		if !requested {
			return errors.New(errors.ErrCodeInternal, "scroll at %v did not request a batch", board.ScrollOffset())
		}
		board.AppendItems(pending...)
		if err := engine.BatchReady(ctx); err != nil {
			return err
		}
	}
	return nil
}
