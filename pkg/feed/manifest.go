package feed

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/masonry"
)

// ManifestFile is the on-disk item list.
//
//	width = 200
//
//	[[items]]
//	id = "a"
//	height = 120
type ManifestFile struct {
	// Width applies to items without their own width.
	Width float64         `json:"width,omitempty" toml:"width"`
	Items []ManifestEntry `json:"items" toml:"items"`
}

// ManifestEntry is one item of a manifest.
type ManifestEntry struct {
	ID     string  `json:"id,omitempty" toml:"id"`
	Width  float64 `json:"width,omitempty" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// Manifest replays the items of a manifest file in order.
type Manifest struct {
	items []*masonry.Item
	pos   int
}

// LoadManifest reads a manifest from path. Files ending in .toml are
// parsed as TOML, everything else as JSON.
func LoadManifest(path string) (*Manifest, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
	}
	if err != nil {
		return nil, err
	}
	format := "json"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}
	return ParseManifest(data, format)
}

// ParseManifest decodes manifest data in the given format ("json" or "toml").
func ParseManifest(data []byte, format string) (*Manifest, error) {
	var mf ManifestFile
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &mf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse toml manifest")
		}
	case "json":
		if err := json.Unmarshal(data, &mf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse json manifest")
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown manifest format %q", format)
	}
	return NewManifest(mf)
}

// NewManifest builds a source from decoded manifest data.
func NewManifest(mf ManifestFile) (*Manifest, error) {
	if mf.Width == 0 {
		mf.Width = DefaultItemWidth
	}
	items := make([]*masonry.Item, len(mf.Items))
	for i, e := range mf.Items {
		w := e.Width
		if w == 0 {
			w = mf.Width
		}
		if w <= 0 || e.Height <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidGeometry, "manifest item %d: width and height must be positive", i)
		}
		items[i] = newItem(e.ID, w, e.Height)
	}
	return &Manifest{items: items}, nil
}

// Len returns the total number of items in the manifest.
func (m *Manifest) Len() int { return len(m.items) }

// Next returns the next n items, or io.EOF once all were handed out.
func (m *Manifest) Next(ctx context.Context, n int) ([]*masonry.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "batch size must be positive, got %d", n)
	}
	if m.pos >= len(m.items) {
		return nil, io.EOF
	}
	end := min(m.pos+n, len(m.items))
	out := m.items[m.pos:end:end]
	m.pos = end
	return out, nil
}

var _ Source = (*Manifest)(nil)
