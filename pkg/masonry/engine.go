package masonry

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/notify"
	"github.com/matzehuels/waterfall/pkg/observability"
)

// Events emitted through the engine's Notifier.
const (
	// EventLoad asks the loader for another batch. The handler receives the
	// configured batch size as its only argument.
	EventLoad = "load"
	// EventDone signals that a batch has been added to the surface. The
	// engine owns this event; see BatchReady.
	EventDone = "done"
)

// DefaultContainer is the container identifier used when none is configured.
const DefaultContainer = "waterfall"

// Config is fixed at construction.
type Config struct {
	// BatchSize is the number of items added per load.
	BatchSize int
	// Width pins the container width. Zero measures it from the surface and
	// keeps resize relayout enabled.
	Width float64
	// Container identifies the layout surface.
	Container string
	// MinColumns is the lower bound on the column count (default 1).
	MinColumns int
	// LoadTimeout lets a scroll start a new load once a previous one has
	// been in flight this long. Zero waits for BatchReady forever.
	LoadTimeout time.Duration
}

// Options are merged into the engine's current options by Init. Zero
// fields leave the current value untouched.
type Options struct {
	BatchSize int
	Width     float64
	Container string
	// Resize resets every item to static positioning before measuring. It
	// is consumed by the Init that sees it.
	Resize bool
}

// merge overlays the set fields of o onto base.
func (base Options) merge(o Options) Options {
	if o.BatchSize != 0 {
		base.BatchSize = o.BatchSize
	}
	if o.Width != 0 {
		base.Width = o.Width
	}
	if o.Container != "" {
		base.Container = o.Container
	}
	if o.Resize {
		base.Resize = true
	}
	return base
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock replaces the wall clock used for load timeouts.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// Stats is a point-in-time summary of the engine state.
type Stats struct {
	Width     float64
	ItemWidth float64
	Columns   int
	Heights   []float64
	Placed    int
	Loading   bool
}

// Engine lays out the items of one container. All methods run to
// completion synchronously; the engine is not safe for concurrent use.
type Engine struct {
	geo         Geometry
	opts        Options
	pinned      bool
	minColumns  int
	loadTimeout time.Duration

	notifier *notify.Notifier
	logger   *log.Logger
	clock    clockwork.Clock

	cols      *Columns
	itemWidth float64
	placed    int

	loading     bool
	loadStarted time.Time
	doneErr     error
}

// New creates an engine for geo. It does not lay anything out; call Init
// once the container holds its first items.
func New(geo Geometry, cfg Config, opts ...Option) (*Engine, error) {
	if geo == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "geometry is required")
	}
	if err := errors.ValidateBatchSize(cfg.BatchSize); err != nil {
		return nil, err
	}
	if cfg.Container == "" {
		cfg.Container = DefaultContainer
	}
	if err := errors.ValidateContainerID(cfg.Container); err != nil {
		return nil, err
	}
	if cfg.Width < 0 || cfg.LoadTimeout < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "width and load timeout must not be negative")
	}

	e := &Engine{
		geo:         geo,
		pinned:      cfg.Width > 0,
		minColumns:  max(cfg.MinColumns, 1),
		loadTimeout: cfg.LoadTimeout,
		notifier:    notify.New(),
		logger:      log.NewWithOptions(io.Discard, log.Options{}),
		clock:       clockwork.NewRealClock(),
		opts: Options{
			BatchSize: cfg.BatchSize,
			Width:     cfg.Width,
			Container: cfg.Container,
		},
	}
	if !e.pinned {
		e.opts.Width = geo.ContainerWidth()
	}
	for _, opt := range opts {
		opt(e)
	}

	e.notifier.On(EventDone, func(_ *notify.Notifier, args ...any) {
		ctx := context.Background()
		if len(args) > 0 {
			if c, ok := args[0].(context.Context); ok {
				ctx = c
			}
		}
		var wait time.Duration
		if e.loading {
			wait = e.clock.Since(e.loadStarted)
		}
		observability.Layout().OnBatchReady(ctx, wait)
		e.loading = false
		e.doneErr = e.Append(ctx)
	})
	return e, nil
}

// On registers the handler for an engine event. Only the first handler
// per event is kept; EventDone is always owned by the engine itself.
func (e *Engine) On(event string, h notify.Handler) bool {
	return e.notifier.On(event, h)
}

// ResizeEnabled reports whether HandleResize relays out the container.
// It is false for the engine's lifetime once a width was pinned.
func (e *Engine) ResizeEnabled() bool { return !e.pinned }

// Loading reports whether a load request is in flight.
func (e *Engine) Loading() bool { return e.loading }

// ColumnCount returns the column count of the last placement, or 0.
func (e *Engine) ColumnCount() int {
	if e.cols == nil {
		return 0
	}
	return e.cols.Len()
}

// Heights returns the current column heights.
func (e *Engine) Heights() []float64 {
	if e.cols == nil {
		return nil
	}
	return e.cols.Heights()
}

// Stats returns a snapshot of the engine state.
func (e *Engine) Stats() Stats {
	return Stats{
		Width:     e.opts.Width,
		ItemWidth: e.itemWidth,
		Columns:   e.ColumnCount(),
		Heights:   e.Heights(),
		Placed:    e.placed,
		Loading:   e.loading,
	}
}

// Init merges o into the current options and lays out every item of the
// container from scratch.
func (e *Engine) Init(ctx context.Context, o Options) (err error) {
	start := e.clock.Now()
	var items []*Item
	defer func() {
		observability.Layout().OnInit(ctx, e.ColumnCount(), len(items), e.clock.Since(start), err)
	}()

	e.opts = e.opts.merge(o)
	if e.opts.Width <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "container width must be positive, got %v", e.opts.Width)
	}
	e.geo.SetContainerWidth(e.opts.Width)

	items, err = e.items()
	if err != nil {
		return err
	}
	if e.opts.Resize {
		for _, it := range items {
			it.Placed = false
			e.geo.SetPosition(it, Position{Mode: Static})
		}
		if items, err = e.items(); err != nil {
			return err
		}
		e.opts.Resize = false
	}
	if len(items) == 0 {
		return errors.New(errors.ErrCodeNoItems, "container %q has no items", e.opts.Container)
	}

	n, err := e.columnCount(items)
	if err != nil {
		return err
	}
	cols := NewColumns(n)
	seeds := min(n, len(items))
	fit := ColumnCount(e.opts.Width, e.itemWidth, 1)
	for i := range seeds {
		it := items[i]
		if i >= fit {
			// MinColumns asked for more columns than fit in the first row;
			// this seed would wrap, so pin it to its column instead.
			e.geo.SetPosition(it, Position{Mode: Absolute, Left: items[0].Left + float64(i)*e.itemWidth, Top: items[0].Top})
		}
		cols.Seed(i, it.Left, it.Height, i)
		it.Column, it.Placed = i, true
	}
	for i := seeds; i < n; i++ {
		cols.Open(i, items[0].Left+float64(i)*e.itemWidth)
	}
	for i := n; i < len(items); i++ {
		e.place(cols, items, i)
	}

	e.cols = cols
	e.placed = len(items)
	e.logger.Debug("laid out container", "container", e.opts.Container,
		"width", e.opts.Width, "columns", n, "items", len(items))
	return nil
}

// Append places the newest BatchSize items of the container, continuing
// from the current column frontier. The result equals a full Init over
// the combined sequence.
func (e *Engine) Append(ctx context.Context) (err error) {
	started := e.clock.Now()
	batch := e.opts.BatchSize
	defer func() {
		observability.Layout().OnAppend(ctx, batch, e.clock.Since(started), err)
	}()

	items, err := e.items()
	if err != nil {
		return err
	}
	if batch > len(items) {
		return errors.New(errors.ErrCodeInvalidInput, "batch of %d exceeds %d items", batch, len(items))
	}
	start := len(items) - batch

	cols := e.cols
	if cols == nil || e.placed != start {
		n := 0
		if cols != nil {
			n = cols.Len()
		} else if n, err = e.columnCount(items); err != nil {
			return err
		}
		e.logger.Warn("rebuilding column frontier", "placed", e.placed, "start", start)
		if cols, err = ScanFrontier(items, start, n); err != nil {
			return err
		}
		observability.Layout().OnFrontierRebuilt(ctx, start, n)
	}

	for i := start; i < len(items); i++ {
		e.place(cols, items, i)
	}
	e.cols = cols
	e.placed = len(items)
	e.logger.Debug("appended batch", "batch", batch, "items", len(items))
	return nil
}

// Resume rebuilds the column frontier from items that were placed
// earlier, for instance by a restored snapshot, without moving them.
func (e *Engine) Resume(ctx context.Context) error {
	items, err := e.items()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return errors.New(errors.ErrCodeNoItems, "container %q has no items", e.opts.Container)
	}
	n, err := e.columnCount(items)
	if err != nil {
		return err
	}
	cols, err := ScanFrontier(items, len(items), n)
	if err != nil {
		return err
	}
	observability.Layout().OnFrontierRebuilt(ctx, len(items), n)
	e.cols = cols
	e.placed = len(items)
	return nil
}

// HandleResize relays out the container at the surface's current width.
// It does nothing when the width was pinned at construction.
func (e *Engine) HandleResize(ctx context.Context) error {
	if e.pinned {
		return nil
	}
	w := e.geo.ContainerWidth()
	e.logger.Debug("resize", "width", w)
	return e.Init(ctx, Options{Resize: true, Width: w})
}

// HandleScroll requests another batch when the viewport has reached the
// top of the last item. It reports whether EventLoad was emitted. While a
// load is in flight further scrolls are ignored.
func (e *Engine) HandleScroll(ctx context.Context) (bool, error) {
	if e.loading {
		if e.loadTimeout <= 0 || e.clock.Since(e.loadStarted) < e.loadTimeout {
			return false, nil
		}
		e.logger.Warn("load timed out, accepting new requests", "after", e.loadTimeout)
		e.loading = false
	}

	items, err := e.items()
	if err != nil {
		return false, err
	}
	if len(items) == 0 {
		return false, errors.New(errors.ErrCodeNoItems, "container %q has no items", e.opts.Container)
	}
	last := items[len(items)-1]
	if e.geo.ScrollOffset()+e.geo.ViewportHeight() <= last.Top {
		return false, nil
	}

	e.loading = true
	e.loadStarted = e.clock.Now()
	observability.Layout().OnLoadRequested(ctx, len(items))
	e.logger.Info("requesting more items", "have", len(items), "batch", e.opts.BatchSize)
	if err := e.notifier.Emit(EventLoad, e.opts.BatchSize); err != nil {
		e.loading = false
		return false, err
	}
	return true, nil
}

// BatchReady tells the engine that a requested batch has been added to
// the surface. It clears the loading state and appends the batch.
func (e *Engine) BatchReady(ctx context.Context) error {
	e.doneErr = nil
	if err := e.notifier.Emit(EventDone, ctx); err != nil {
		return err
	}
	return e.doneErr
}

func (e *Engine) items() ([]*Item, error) {
	items, err := e.geo.Items(e.opts.Container)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read items of %q", e.opts.Container)
	}
	return items, nil
}

// columnCount derives the column count from the first item's width.
func (e *Engine) columnCount(items []*Item) (int, error) {
	w := items[0].Width
	if w <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidGeometry, "item %q has non-positive width %v", items[0].ID, w)
	}
	e.itemWidth = w
	return ColumnCount(e.opts.Width, w, e.minColumns), nil
}

// place puts items[i] at the bottom of the shortest column.
func (e *Engine) place(cols *Columns, items []*Item, i int) {
	it := items[i]
	col := cols.Shortest()
	left, top := cols.Place(col, it.Height, i)
	e.geo.SetPosition(it, Position{Mode: Absolute, Left: left, Top: top})
	it.Column, it.Placed = col, true
}
