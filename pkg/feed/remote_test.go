package feed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/waterfall/pkg/errors"
)

// pagedServer serves total items of height 10, 20, 30, ... in pages.
func pagedServer(t *testing.T, total int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		page := ManifestFile{Width: 100}
		for i := offset; i < min(offset+limit, total); i++ {
			page.Items = append(page.Items, ManifestEntry{ID: "r" + strconv.Itoa(i), Height: float64(10 * (i + 1))})
		}
		json.NewEncoder(w).Encode(page)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRemotePages(t *testing.T) {
	ctx := context.Background()
	server := pagedServer(t, 5)
	src, err := NewRemote(server.URL+"/items", nil)
	if err != nil {
		t.Fatal(err)
	}

	first, err := src.Next(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{10, 20, 30}, heights(first)); diff != "" {
		t.Errorf("first page mismatch (-want +got):\n%s", diff)
	}
	second, err := src.Next(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{40, 50}, heights(second)); diff != "" {
		t.Errorf("second page mismatch (-want +got):\n%s", diff)
	}
	if second[0].ID != "r3" || second[0].Width != 100 || second[0].Column != -1 {
		t.Errorf("item = %+v, want id r3, width 100, column -1", second[0])
	}
	if _, err := src.Next(ctx, 3); err != io.EOF {
		t.Errorf("Next() after last page = %v, want io.EOF", err)
	}
}

func TestRemoteDrain(t *testing.T) {
	server := pagedServer(t, 12)
	src, err := NewRemote(server.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	items, err := Drain(context.Background(), src, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 12 {
		t.Errorf("drained %d items, want 12", len(items))
	}
}

func TestNewRemoteRejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "items", "ftp://example.com/items", "http://"} {
		if _, err := NewRemote(u, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("NewRemote(%q) = %v, want INVALID_INPUT", u, err)
		}
	}
}

func TestRemoteInvalidItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [{"id": "x", "height": -1}]}`))
	}))
	defer server.Close()

	src, err := NewRemote(server.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.Next(context.Background(), 4); !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Errorf("Next() = %v, want INVALID_GEOMETRY", err)
	}
}
