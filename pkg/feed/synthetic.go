package feed

import (
	"context"
	"io"
	"math/rand/v2"

	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/masonry"
)

// SyntheticOptions configures a Synthetic source.
type SyntheticOptions struct {
	Seed      uint64
	Count     int // total items; 0 means unlimited
	Width     float64
	MinHeight float64
	MaxHeight float64
}

// Validate checks the options for consistency.
func (o SyntheticOptions) Validate() error {
	if o.Count < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "count must not be negative, got %d", o.Count)
	}
	if o.Width < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "item width must not be negative, got %v", o.Width)
	}
	if o.MinHeight < 0 || o.MaxHeight < 0 || (o.MaxHeight != 0 && o.MaxHeight < o.MinHeight) {
		return errors.New(errors.ErrCodeInvalidConfig, "height range [%v, %v] is invalid", o.MinHeight, o.MaxHeight)
	}
	return nil
}

// SetDefaults fills zero fields.
func (o *SyntheticOptions) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultItemWidth
	}
	switch {
	case o.MinHeight == 0 && o.MaxHeight == 0:
		o.MinHeight, o.MaxHeight = 80, 320
	case o.MaxHeight == 0:
		o.MaxHeight = o.MinHeight
	case o.MinHeight == 0:
		o.MinHeight = 1
	}
}

// Synthetic generates items with pseudo-random heights. Equal seeds give
// equal height sequences. IDs are random.
type Synthetic struct {
	opts    SyntheticOptions
	rng     *rand.Rand
	emitted int
}

// NewSynthetic creates a synthetic source.
func NewSynthetic(opts SyntheticOptions) (*Synthetic, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.SetDefaults()
	return &Synthetic{
		opts: opts,
		rng:  rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
	}, nil
}

// Next returns the next n items.
func (s *Synthetic) Next(ctx context.Context, n int) ([]*masonry.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "batch size must be positive, got %d", n)
	}
	if s.opts.Count > 0 {
		n = min(n, s.opts.Count-s.emitted)
	}
	if n <= 0 {
		return nil, io.EOF
	}

	span := s.opts.MaxHeight - s.opts.MinHeight
	out := make([]*masonry.Item, n)
	for i := range out {
		h := s.opts.MinHeight
		if span > 0 {
			h += float64(s.rng.IntN(int(span) + 1))
		}
		out[i] = newItem("", s.opts.Width, h)
	}
	s.emitted += n
	return out, nil
}

var _ Source = (*Synthetic)(nil)
