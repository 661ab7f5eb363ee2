// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module report what they do through small hook
// interfaces instead of depending on a metrics backend. Hooks default to
// no-ops; an application registers real implementations once at startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnInit(ctx, columns, items, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the masonry engine.
type LayoutHooks interface {
	// OnInit records a full placement pass.
	OnInit(ctx context.Context, columns, items int, duration time.Duration, err error)

	// OnAppend records an incremental placement of one batch.
	OnAppend(ctx context.Context, batch int, duration time.Duration, err error)

	// OnFrontierRebuilt records that the column frontier had to be
	// reconstructed from item history.
	OnFrontierRebuilt(ctx context.Context, start, columns int)

	// OnLoadRequested records a scroll-triggered load request.
	OnLoadRequested(ctx context.Context, items int)

	// OnBatchReady records that a requested batch arrived.
	OnBatchReady(ctx context.Context, wait time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnInit(context.Context, int, int, time.Duration, error) {}
func (NoopLayoutHooks) OnAppend(context.Context, int, time.Duration, error)    {}
func (NoopLayoutHooks) OnFrontierRebuilt(context.Context, int, int)            {}
func (NoopLayoutHooks) OnLoadRequested(context.Context, int)                   {}
func (NoopLayoutHooks) OnBatchReady(context.Context, time.Duration)            {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks. Nil is ignored.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	cacheHooks = NoopCacheHooks{}
}

// =============================================================================
// Logging Implementation
// =============================================================================

// Logger is the subset of a structured logger the logging hooks need.
// *log.Logger from charmbracelet/log satisfies it.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
}

// LogLayoutHooks writes layout events to a structured logger at debug level,
// and failures at warn level.
type LogLayoutHooks struct {
	Logger Logger
}

func (h LogLayoutHooks) OnInit(_ context.Context, columns, items int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("layout init failed", "err", err)
		return
	}
	h.Logger.Debug("layout init", "columns", columns, "items", items, "duration", d)
}

func (h LogLayoutHooks) OnAppend(_ context.Context, batch int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("layout append failed", "batch", batch, "err", err)
		return
	}
	h.Logger.Debug("layout append", "batch", batch, "duration", d)
}

func (h LogLayoutHooks) OnFrontierRebuilt(_ context.Context, start, columns int) {
	h.Logger.Debug("frontier rebuilt", "start", start, "columns", columns)
}

func (h LogLayoutHooks) OnLoadRequested(_ context.Context, items int) {
	h.Logger.Debug("load requested", "items", items)
}

func (h LogLayoutHooks) OnBatchReady(_ context.Context, wait time.Duration) {
	h.Logger.Debug("batch ready", "wait", wait)
}
