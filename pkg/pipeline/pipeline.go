// Package pipeline runs the feed → layout → render pipeline for waterfall.
//
// The pipeline drains an item source, lays the items out the way a browser
// would see them arrive under infinite scroll (an initial page, then one
// batch per load request), captures the result as a snapshot and renders
// it. Layouts and artifacts are cached by content hash.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	src, _ := feed.NewSynthetic(feed.SyntheticOptions{Seed: 7, Count: 40})
//	result, err := runner.Execute(ctx, src, pipeline.Options{
//	    Width:     820,
//	    BatchSize: 10,
//	    Formats:   []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// Stages can also run on their own:
//
//	items, err := runner.Collect(ctx, src, opts)
//	snap, err := runner.Layout(ctx, items, opts)
//	artifacts, err := runner.Render(ctx, snap, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/waterfall/pkg/cache"
	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/masonry"
	"github.com/matzehuels/waterfall/pkg/render"
	"github.com/matzehuels/waterfall/pkg/snapshot"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the container width in pixels.
	DefaultWidth = 820.0

	// DefaultBatchSize is the number of items per load.
	DefaultBatchSize = 10

	// DefaultViewportHeight is the simulated viewport height.
	DefaultViewportHeight = 900.0

	// DefaultLimit caps the number of items read from a source.
	DefaultLimit = 1000
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
type Options struct {
	// Layout options
	Width          float64 `json:"width,omitempty"`
	BatchSize      int     `json:"batch_size,omitempty"`
	MinColumns     int     `json:"min_columns,omitempty"`
	Container      string  `json:"container,omitempty"`
	ViewportHeight float64 `json:"viewport_height,omitempty"`
	Limit          int     `json:"limit,omitempty"`
	Refresh        bool    `json:"refresh,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Gap         float64  `json:"gap,omitempty"`
	Labels      bool     `json:"labels,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the finished layout.
	Snapshot *snapshot.Snapshot

	// ItemsHash is the content hash of the input items.
	ItemsHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount  int
	Columns    int
	Batches    int
	FeedTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.BatchSize == 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.MinColumns == 0 {
		o.MinColumns = 1
	}
	if o.Container == "" {
		o.Container = masonry.DefaultContainer
	}
	if o.ViewportHeight == 0 {
		o.ViewportHeight = DefaultViewportHeight
	}
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.Width < 0 {
		return errors.New(errors.ErrCodeInvalidWidth, "width must be positive, got %v", o.Width)
	}
	if o.ViewportHeight < 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "viewport height must be positive, got %v", o.ViewportHeight)
	}
	if o.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "limit must not be negative, got %d", o.Limit)
	}
	if err := errors.ValidateBatchSize(o.BatchSize); err != nil {
		return err
	}
	return errors.ValidateContainerID(o.Container)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Gap < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "gap must not be negative")
	}
	for _, f := range o.Formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults prepares options for the full pipeline.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// EngineConfig returns the engine configuration for these options.
func (o *Options) EngineConfig() masonry.Config {
	return masonry.Config{
		BatchSize:  o.BatchSize,
		Width:      o.Width,
		Container:  o.Container,
		MinColumns: o.MinColumns,
	}
}

// SVGOptions returns the render options for these options.
func (o *Options) SVGOptions() []render.SVGOption {
	var out []render.SVGOption
	if o.Gap > 0 {
		out = append(out, render.WithGap(o.Gap))
	}
	if o.Labels {
		out = append(out, render.WithLabels())
	}
	if o.Interactive {
		out = append(out, render.WithInteraction())
	}
	return out
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:      o.Width,
		BatchSize:  o.BatchSize,
		MinColumns: o.MinColumns,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		Gap:         o.Gap,
		Labels:      o.Labels,
		Interactive: o.Interactive,
	}
}
