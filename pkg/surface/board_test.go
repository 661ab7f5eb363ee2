package surface

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/waterfall/pkg/masonry"
	"github.com/matzehuels/waterfall/pkg/notify"
)

func items(heights ...float64) []*masonry.Item {
	out := make([]*masonry.Item, len(heights))
	for i, h := range heights {
		out[i] = &masonry.Item{ID: string(rune('a' + i)), Width: 200, Height: h}
	}
	return out
}

type pos struct{ Left, Top float64 }

func positions(its []*masonry.Item) []pos {
	out := make([]pos, len(its))
	for i, it := range its {
		out[i] = pos{it.Left, it.Top}
	}
	return out
}

func TestBoardFlow(t *testing.T) {
	b := NewBoard("waterfall", 620, 300)
	b.AppendItems(items(100, 120, 110, 50, 60)...)

	got, err := b.Items("waterfall")
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}
	want := []pos{{0, 0}, {200, 0}, {400, 0}, {0, 120}, {200, 120}}
	if diff := cmp.Diff(want, positions(got)); diff != "" {
		t.Errorf("flow mismatch (-want +got):\n%s", diff)
	}

	b.SetWidth(420)
	want = []pos{{0, 0}, {200, 0}, {0, 120}, {200, 120}, {0, 230}}
	if diff := cmp.Diff(want, positions(got)); diff != "" {
		t.Errorf("flow after resize mismatch (-want +got):\n%s", diff)
	}
}

func TestBoardAbsoluteLeavesFlow(t *testing.T) {
	b := NewBoard("waterfall", 620, 300)
	its := items(100, 120, 110, 50)
	b.AppendItems(its...)

	b.SetPosition(its[0], masonry.Position{Mode: masonry.Absolute, Left: 400, Top: 500})
	want := []pos{{400, 500}, {0, 0}, {200, 0}, {400, 0}}
	if diff := cmp.Diff(want, positions(its)); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}

	b.SetPosition(its[0], masonry.Position{Mode: masonry.Static})
	want = []pos{{0, 0}, {200, 0}, {400, 0}, {0, 120}}
	if diff := cmp.Diff(want, positions(its)); diff != "" {
		t.Errorf("positions after reset mismatch (-want +got):\n%s", diff)
	}
}

func TestBoardUnknownContainer(t *testing.T) {
	b := NewBoard("waterfall", 620, 300)
	if _, err := b.Items("other"); err == nil {
		t.Error("Items() for unknown container should fail")
	}
}

func TestBoardScrolling(t *testing.T) {
	b := NewBoard("waterfall", 200, 100)
	b.AppendItems(items(80, 80, 80)...)

	if got := b.ContentHeight(); got != 240 {
		t.Fatalf("ContentHeight() = %v, want 240", got)
	}

	b.ScrollBy(50)
	if b.ScrollOffset() != 50 {
		t.Errorf("ScrollOffset() = %v, want 50", b.ScrollOffset())
	}
	b.ScrollBy(1000)
	if b.ScrollOffset() != 140 {
		t.Errorf("ScrollOffset() = %v, want clamped 140", b.ScrollOffset())
	}
	b.ScrollTo(-5)
	if b.ScrollOffset() != 0 {
		t.Errorf("ScrollOffset() = %v, want 0", b.ScrollOffset())
	}

	visible := b.Visible()
	if len(visible) != 2 || visible[0].ID != "a" || visible[1].ID != "b" {
		t.Errorf("Visible() = %d items, want a and b", len(visible))
	}
}

func TestBoardDrivesEngine(t *testing.T) {
	ctx := context.Background()
	b := NewBoard("waterfall", 620, 200)
	b.AppendItems(items(100, 120, 110, 50, 60)...)

	e, err := masonry.New(b, masonry.Config{BatchSize: 3, Container: "waterfall"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.Init(ctx, masonry.Options{}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if diff := cmp.Diff([]float64{150, 120, 170}, e.Heights()); diff != "" {
		t.Fatalf("heights mismatch (-want +got):\n%s", diff)
	}

	var requested int
	e.On(masonry.EventLoad, func(_ *notify.Notifier, args ...any) {
		requested = args[0].(int)
	})

	b.ScrollTo(1000)
	ok, err := e.HandleScroll(ctx)
	if err != nil || !ok {
		t.Fatalf("HandleScroll() = %v, %v; want true, nil", ok, err)
	}
	if requested != 3 {
		t.Errorf("requested = %d, want 3", requested)
	}

	b.AppendItems(items(30, 40, 50)...)
	if err := e.BatchReady(ctx); err != nil {
		t.Fatalf("BatchReady() error = %v", err)
	}
	if diff := cmp.Diff([]float64{190, 210, 170}, e.Heights()); diff != "" {
		t.Errorf("heights after batch mismatch (-want +got):\n%s", diff)
	}

	b.SetWidth(420)
	if err := e.HandleResize(ctx); err != nil {
		t.Fatalf("HandleResize() error = %v", err)
	}
	if e.ColumnCount() != 2 {
		t.Errorf("ColumnCount() after resize = %d, want 2", e.ColumnCount())
	}
	if b.ContentHeight() != max(e.Heights()[0], e.Heights()[1]) {
		t.Errorf("ContentHeight() = %v, want tallest column %v", b.ContentHeight(), e.Heights())
	}
}
