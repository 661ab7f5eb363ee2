package snapshot

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/masonry"
	"github.com/matzehuels/waterfall/pkg/surface"
)

func newItems(heights ...float64) []*masonry.Item {
	out := make([]*masonry.Item, len(heights))
	for i, h := range heights {
		out[i] = &masonry.Item{ID: strings.Repeat("x", i+1), Width: 200, Height: h}
	}
	return out
}

func laidOut(t *testing.T, heights ...float64) (*surface.Board, *masonry.Engine) {
	t.Helper()
	b := surface.NewBoard("waterfall", 620, 400)
	b.AppendItems(newItems(heights...)...)
	e, err := masonry.New(b, masonry.Config{BatchSize: 3})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.Init(context.Background(), masonry.Options{}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return b, e
}

type placement struct {
	Left, Top float64
	Column    int
}

func placements(b *surface.Board) []placement {
	items, _ := b.Items(b.ID())
	out := make([]placement, len(items))
	for i, it := range items {
		out[i] = placement{it.Left, it.Top, it.Column}
	}
	return out
}

func TestCaptureRestoreResume(t *testing.T) {
	ctx := context.Background()
	b, e := laidOut(t, 100, 120, 110, 50, 60)

	snap, err := Capture(b, e.Stats())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if snap.Columns != 3 || snap.ItemWidth != 200 {
		t.Errorf("snapshot columns = %d, item width = %v", snap.Columns, snap.ItemWidth)
	}

	var buf bytes.Buffer
	if err := WriteJSON(snap, &buf); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	loaded, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}

	restored, err := loaded.Board(400)
	if err != nil {
		t.Fatalf("Board() error = %v", err)
	}
	if diff := cmp.Diff(placements(b), placements(restored)); diff != "" {
		t.Fatalf("restored placements mismatch (-want +got):\n%s", diff)
	}

	re, err := masonry.New(restored, masonry.Config{BatchSize: 3})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := re.Resume(ctx); err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if diff := cmp.Diff(e.Heights(), re.Heights()); diff != "" {
		t.Errorf("resumed heights mismatch (-want +got):\n%s", diff)
	}

	// Both engines must continue identically.
	b.AppendItems(newItems(30, 40, 50)...)
	restored.AppendItems(newItems(30, 40, 50)...)
	if err := e.BatchReady(ctx); err != nil {
		t.Fatalf("BatchReady() error = %v", err)
	}
	if err := re.BatchReady(ctx); err != nil {
		t.Fatalf("BatchReady() on restored error = %v", err)
	}
	if diff := cmp.Diff(placements(b), placements(restored)); diff != "" {
		t.Errorf("placements after append mismatch (-want +got):\n%s", diff)
	}
}

func TestRestoreResumeWithOpenColumns(t *testing.T) {
	ctx := context.Background()
	b, e := laidOut(t, 100, 120)

	snap, err := Capture(b, e.Stats())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	restored, err := snap.Board(400)
	if err != nil {
		t.Fatalf("Board() error = %v", err)
	}
	re, err := masonry.New(restored, masonry.Config{BatchSize: 3})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := re.Resume(ctx); err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if diff := cmp.Diff([]float64{100, 120, 0}, re.Heights()); diff != "" {
		t.Errorf("resumed heights mismatch (-want +got):\n%s", diff)
	}

	b.AppendItems(newItems(30, 40, 50)...)
	restored.AppendItems(newItems(30, 40, 50)...)
	if err := e.BatchReady(ctx); err != nil {
		t.Fatalf("BatchReady() error = %v", err)
	}
	if err := re.BatchReady(ctx); err != nil {
		t.Fatalf("BatchReady() on restored error = %v", err)
	}
	if diff := cmp.Diff(placements(b), placements(restored)); diff != "" {
		t.Errorf("placements after append mismatch (-want +got):\n%s", diff)
	}
}

func TestCaptureUnplaced(t *testing.T) {
	b, e := laidOut(t, 100, 120, 110)
	b.AppendItems(newItems(10)...)

	_, err := Capture(b, e.Stats())
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Capture() error = %v, want INVALID_INPUT", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		code errors.Code
	}{
		{"zero width", Snapshot{Columns: 1, Heights: []float64{0}}, errors.ErrCodeInvalidGeometry},
		{"height count", Snapshot{Width: 400, Columns: 2, Heights: []float64{0}}, errors.ErrCodeInvalidInput},
		{"column range", Snapshot{Width: 400, Columns: 1, Heights: []float64{10}, Items: []Item{{ID: "a", Column: 3}}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.snap.Validate(); !errors.Is(err, tt.code) {
				t.Errorf("Validate() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExportImport(t *testing.T) {
	b, e := laidOut(t, 100, 120, 110, 50)
	snap, err := Capture(b, e.Stats())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "layout.json")
	if err := Export(snap, path); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	got, err := Import(path)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("imported snapshot mismatch (-want +got):\n%s", diff)
	}

	if _, err := Import(filepath.Join(t.TempDir(), "nope.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Import() missing file error = %v, want FILE_NOT_FOUND", err)
	}
}
