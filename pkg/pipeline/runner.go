package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/waterfall/pkg/cache"
	"github.com/matzehuels/waterfall/pkg/feed"
	"github.com/matzehuels/waterfall/pkg/masonry"
	"github.com/matzehuels/waterfall/pkg/observability"
	"github.com/matzehuels/waterfall/pkg/snapshot"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer means DefaultKeyer; a nil cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete feed → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, src feed.Source, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Feed
	feedStart := time.Now()
	items, err := r.Collect(ctx, src, opts)
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	result.Stats.FeedTime = time.Since(feedStart)
	result.Stats.ItemCount = len(items)
	result.ItemsHash = HashItems(items)

	r.Logger.Info("collected items", "items", len(items), "duration", result.Stats.FeedTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	snap, layoutHit, err := r.LayoutWithCacheInfo(ctx, items, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Snapshot = snap
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Columns = snap.Columns
	_, result.Stats.Batches = splitPages(len(items), opts.BatchSize)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"columns", snap.Columns,
		"batches", result.Stats.Batches,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs", "formats", opts.Formats, "duration", result.Stats.RenderTime)
	return result, nil
}

// Continue collects items from src and appends them below a previously
// captured layout, then renders the result. The continued layout is not
// cached; its artifacts are.
func (r *Runner) Continue(ctx context.Context, snap *snapshot.Snapshot, src feed.Source, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	feedStart := time.Now()
	items, err := r.Collect(ctx, src, opts)
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	result.Stats.FeedTime = time.Since(feedStart)
	result.Stats.ItemCount = len(items)
	result.ItemsHash = HashItems(items)

	layoutStart := time.Now()
	out, batches, err := ContinueLayout(ctx, snap, items, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Snapshot = out
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Columns = out.Columns
	result.Stats.Batches = batches

	r.Logger.Info("continued layout",
		"restored", len(snap.Items),
		"appended", len(items),
		"batches", batches,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, out, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit
	return result, nil
}

// Collect reads up to opts.Limit items from src in batches of
// opts.BatchSize.
func (r *Runner) Collect(ctx context.Context, src feed.Source, opts Options) ([]*masonry.Item, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	var items []*masonry.Item
	for len(items) < opts.Limit {
		batch, err := src.Next(ctx, min(opts.BatchSize, opts.Limit-len(items)))
		items = append(items, batch...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

// LayoutWithCacheInfo lays out items with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, items []*masonry.Item, opts Options) (*snapshot.Snapshot, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.LayoutKey(HashItems(items), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit := r.get(ctx, cacheKey); hit {
			if snap, err := snapshot.ReadJSON(bytes.NewReader(data)); err == nil {
				return snap, true, nil
			}
		}
	}

	snap, _, err := GenerateLayout(ctx, items, opts)
	if err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := snapshot.WriteJSON(snap, &buf); err == nil {
		r.set(ctx, cacheKey, buf.Bytes(), cache.TTLLayout)
	}
	return snap, false, nil
}

// Layout is LayoutWithCacheInfo without the cache hit info.
func (r *Runner) Layout(ctx context.Context, items []*masonry.Item, opts Options) (*snapshot.Snapshot, error) {
	snap, _, err := r.LayoutWithCacheInfo(ctx, items, opts)
	return snap, err
}

// RenderWithCacheInfo renders artifacts with caching and returns whether
// every format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, snap *snapshot.Snapshot, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := snapshot.WriteJSON(snap, &buf); err != nil {
		return nil, false, fmt.Errorf("serialize snapshot for cache key: %w", err)
	}
	layoutHash := cache.Hash(buf.Bytes())

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, hit := r.get(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)))
		if !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := RenderFromSnapshot(ctx, snap, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		r.set(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the cache hit info.
func (r *Runner) Render(ctx context.Context, snap *snapshot.Snapshot, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, snap, opts)
	return artifacts, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) get(ctx context.Context, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, key)
	} else {
		observability.Cache().OnCacheMiss(ctx, key)
	}
	return data, hit
}

func (r *Runner) set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
