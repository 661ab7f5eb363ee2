package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/waterfall/pkg/cache"
	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/feed"
	"github.com/matzehuels/waterfall/pkg/masonry"
	"github.com/matzehuels/waterfall/pkg/surface"
)

func synthetic(t *testing.T, count int) feed.Source {
	t.Helper()
	src, err := feed.NewSynthetic(feed.SyntheticOptions{Seed: 7, Count: count})
	if err != nil {
		t.Fatalf("NewSynthetic() error = %v", err)
	}
	return src
}

func TestSplitPages(t *testing.T) {
	tests := []struct {
		n, batch             int
		wantInitial, wantNum int
	}{
		{0, 10, 0, 0},
		{1, 10, 1, 0},
		{10, 10, 10, 0},
		{11, 10, 1, 1},
		{25, 10, 5, 2},
		{30, 10, 10, 2},
	}
	for _, tt := range tests {
		initial, num := splitPages(tt.n, tt.batch)
		if initial != tt.wantInitial || num != tt.wantNum {
			t.Errorf("splitPages(%d, %d) = %d, %d; want %d, %d", tt.n, tt.batch, initial, num, tt.wantInitial, tt.wantNum)
		}
	}
}

func TestValidateForLayout(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", Options{}, false},
		{"negative width", Options{Width: -1}, true},
		{"negative batch", Options{BatchSize: -2}, true},
		{"negative limit", Options{Limit: -1}, true},
		{"bad container", Options{Container: "has space"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLayout()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForLayout() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateForRender(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatalf("ValidateForRender() error = %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != "svg" {
		t.Errorf("default formats = %v, want [svg]", opts.Formats)
	}

	opts = Options{Formats: []string{"svg", "gif"}}
	if err := opts.ValidateForRender(); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ValidateForRender(gif) error = %v, want UNSUPPORTED", err)
	}
}

// The incremental session must place every item exactly where a single
// full layout of the whole sequence would.
func TestGenerateLayoutMatchesFullInit(t *testing.T) {
	ctx := context.Background()
	items, err := feed.Drain(ctx, synthetic(t, 47), 10)
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}

	snap, batches, err := GenerateLayout(ctx, items, Options{Width: 820, BatchSize: 10})
	if err != nil {
		t.Fatalf("GenerateLayout() error = %v", err)
	}
	if batches != 4 {
		t.Errorf("batches = %d, want 4", batches)
	}
	if snap.Columns != 4 || len(snap.Items) != 47 {
		t.Fatalf("snapshot has %d columns, %d items", snap.Columns, len(snap.Items))
	}

	clones := make([]*masonry.Item, len(items))
	for i, it := range items {
		clones[i] = &masonry.Item{ID: it.ID, Width: it.Width, Height: it.Height}
	}
	board := surface.NewBoard(masonry.DefaultContainer, 820, 900)
	board.AppendItems(clones...)
	e, _ := masonry.New(board, masonry.Config{BatchSize: 10, Width: 820})
	if err := e.Init(ctx, masonry.Options{}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	type pos struct{ Left, Top float64 }
	var got, want []pos
	for i := range clones {
		want = append(want, pos{clones[i].Left, clones[i].Top})
		got = append(got, pos{snap.Items[i].Left, snap.Items[i].Top})
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("incremental layout differs from full init (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(e.Heights(), snap.Heights); diff != "" {
		t.Errorf("heights differ (-want +got):\n%s", diff)
	}
}

func TestGenerateLayoutNoItems(t *testing.T) {
	_, _, err := GenerateLayout(context.Background(), nil, Options{})
	if !errors.Is(err, errors.ErrCodeNoItems) {
		t.Errorf("GenerateLayout(nil) error = %v, want NO_ITEMS", err)
	}
}

func TestContinueLayoutMatchesSingleRun(t *testing.T) {
	ctx := context.Background()
	items, err := feed.Drain(ctx, synthetic(t, 47), 10)
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	opts := Options{Width: 820, BatchSize: 10}

	full, _, err := GenerateLayout(ctx, clones(items), opts)
	if err != nil {
		t.Fatalf("GenerateLayout() error = %v", err)
	}

	tests := []struct {
		name        string
		prefix      int
		wantBatches int
	}{
		{"open columns", 2, 4},
		{"partial batch first", 15, 3},
		{"whole batches", 27, 2},
		{"nothing new", 47, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, _, err := GenerateLayout(ctx, clones(items[:tt.prefix]), opts)
			if err != nil {
				t.Fatalf("GenerateLayout() error = %v", err)
			}
			got, batches, err := ContinueLayout(ctx, prev, clones(items[tt.prefix:]), opts)
			if err != nil {
				t.Fatalf("ContinueLayout() error = %v", err)
			}
			if batches != tt.wantBatches {
				t.Errorf("batches = %d, want %d", batches, tt.wantBatches)
			}

			type pos struct {
				ID        string
				Left, Top float64
				Column    int
			}
			var wantPos, gotPos []pos
			for _, it := range full.Items {
				wantPos = append(wantPos, pos{it.ID, it.Left, it.Top, it.Column})
			}
			for _, it := range got.Items {
				gotPos = append(gotPos, pos{it.ID, it.Left, it.Top, it.Column})
			}
			if diff := cmp.Diff(wantPos, gotPos); diff != "" {
				t.Errorf("continued layout differs (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(full.Heights, got.Heights); diff != "" {
				t.Errorf("heights differ (-want +got):\n%s", diff)
			}
		})
	}
}

func clones(items []*masonry.Item) []*masonry.Item {
	out := make([]*masonry.Item, len(items))
	for i, it := range items {
		out[i] = &masonry.Item{ID: it.ID, Width: it.Width, Height: it.Height}
	}
	return out
}

func TestRunnerContinue(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	opts := Options{Width: 620, BatchSize: 5, Formats: []string{"svg"}}

	first, err := r.Execute(ctx, synthetic(t, 12), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	next, err := r.Continue(ctx, first.Snapshot, synthetic(t, 7), opts)
	if err != nil {
		t.Fatalf("Continue() error = %v", err)
	}

	if next.Stats.ItemCount != 7 || next.Stats.Batches != 1 || next.Stats.Columns != 3 {
		t.Errorf("Stats = %+v", next.Stats)
	}
	if len(next.Snapshot.Items) != 19 {
		t.Fatalf("continued snapshot has %d items, want 19", len(next.Snapshot.Items))
	}
	for i, it := range first.Snapshot.Items {
		moved := next.Snapshot.Items[i]
		if moved.Left != it.Left || moved.Top != it.Top {
			t.Errorf("item %d moved from (%v, %v) to (%v, %v)", i, it.Left, it.Top, moved.Left, moved.Top)
		}
	}
	if !strings.HasPrefix(string(next.Artifacts["svg"]), "<svg") {
		t.Error("svg artifact missing")
	}
}

func TestCollectLimit(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	items, err := r.Collect(context.Background(), synthetic(t, 0), Options{BatchSize: 7, Limit: 20})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(items) != 20 {
		t.Errorf("Collect() = %d items, want 20", len(items))
	}
}

func TestExecuteCaches(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	opts := Options{Width: 620, BatchSize: 5, Formats: []string{"svg", "json"}}
	first, err := r.Execute(ctx, synthetic(t, 23), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want misses", first.CacheInfo)
	}
	if first.Stats.ItemCount != 23 || first.Stats.Columns != 3 || first.Stats.Batches != 4 {
		t.Errorf("Stats = %+v", first.Stats)
	}
	if !strings.HasPrefix(string(first.Artifacts["svg"]), "<svg") {
		t.Error("svg artifact missing")
	}

	second, err := r.Execute(ctx, synthetic(t, 23), opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if second.ItemsHash == first.ItemsHash {
		t.Fatal("synthetic ids are random; hashes should differ")
	}

	// Same items hit both caches.
	snap, hit, err := r.LayoutWithCacheInfo(ctx, itemsOf(first), opts)
	if err != nil || !hit {
		t.Fatalf("LayoutWithCacheInfo() hit = %v, err = %v; want hit", hit, err)
	}
	if _, hit, err := r.RenderWithCacheInfo(ctx, snap, opts); err != nil || !hit {
		t.Errorf("RenderWithCacheInfo() hit = %v, err = %v; want hit", hit, err)
	}

	opts.Refresh = true
	if _, hit, _ := r.LayoutWithCacheInfo(ctx, itemsOf(first), opts); hit {
		t.Error("Refresh should bypass the layout cache")
	}
}

func itemsOf(res *Result) []*masonry.Item {
	out := make([]*masonry.Item, len(res.Snapshot.Items))
	for i, it := range res.Snapshot.Items {
		out[i] = &masonry.Item{ID: it.ID, Width: it.Width, Height: it.Height}
	}
	return out
}
