// Package pkg holds the libraries behind the waterfall command.
//
// # Overview
//
// Waterfall places fixed-width, variable-height items into masonry columns:
// every new item goes beneath the currently shortest column, and the grid
// grows batch by batch as an infinite-scroll page would, without laying out
// earlier items again.
//
//	feed.Source ──▶ surface.Board ──▶ masonry.Engine ──▶ snapshot ──▶ render
//	                     ▲                  │
//	                     └── positions ─────┘
//
// # Quick Start
//
//	board := surface.NewBoard("waterfall", 820, 900)
//	board.AppendItems(items...)
//
//	engine, _ := masonry.New(board, masonry.Config{BatchSize: 10})
//	_ = engine.Init(ctx, masonry.Options{})
//
//	engine.On(masonry.EventLoad, func(_ *notify.Notifier, args ...any) {
//	    next, _ := src.Next(ctx, args[0].(int))
//	    board.AppendItems(next...)
//	})
//	board.ScrollTo(board.ContentHeight())
//	if ok, _ := engine.HandleScroll(ctx); ok {
//	    _ = engine.BatchReady(ctx)
//	}
//
// # Main Packages
//
// [masonry] - The layout engine: column count, full placement, incremental
// append, and the resize and scroll entry points. [masonry.Geometry] is the
// surface the engine reads sizes from and writes positions to.
//
// [notify] - Single-handler-per-event publish/subscribe used for the "load"
// and "done" events.
//
// [surface] - An in-memory Geometry with natural flow for static items and a
// scrollable viewport.
//
// [feed] - Item sources: seeded synthetic heights, JSON/TOML manifests and
// paged HTTP endpoints.
//
// [snapshot] - JSON export and import of a finished layout.
//
// [render] - SVG and JSON output, with PNG and PDF via rsvg-convert.
//
// [pipeline] - Feed → layout → render orchestration with caching.
//
// [cache] - File, Redis and no-op caches for layouts and artifacts.
//
// [config] - The TOML config file.
//
// [errors] - Structured errors with codes.
package pkg
