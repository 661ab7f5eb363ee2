package feed

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/httputil"
	"github.com/matzehuels/waterfall/pkg/masonry"
)

// Remote pages items from an HTTP endpoint. Each Next issues
// GET <url>?offset=<o>&limit=<n> and expects a JSON manifest document in
// reply; a page without items ends the feed.
type Remote struct {
	base   *url.URL
	client *httputil.Client
	offset int
	done   bool
}

// NewRemote creates a source for endpoint. A nil client uses
// httputil.NewClient(nil).
func NewRemote(endpoint string, client *httputil.Client) (*Remote, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "feed url must be an absolute http(s) URL, got %q", endpoint)
	}
	if client == nil {
		client = httputil.NewClient(nil)
	}
	return &Remote{base: u, client: client}, nil
}

// Next fetches the next page of at most n items.
func (r *Remote) Next(ctx context.Context, n int) ([]*masonry.Item, error) {
	if n <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "batch size must be positive, got %d", n)
	}
	if r.done {
		return nil, io.EOF
	}

	var page ManifestFile
	if err := r.client.GetJSON(ctx, r.pageURL(n), &page); err != nil {
		return nil, err
	}
	if len(page.Items) > n {
		page.Items = page.Items[:n]
	}
	m, err := NewManifest(page)
	if err != nil {
		return nil, err
	}
	if m.Len() == 0 {
		r.done = true
		return nil, io.EOF
	}
	r.offset += m.Len()
	return m.items, nil
}

func (r *Remote) pageURL(n int) string {
	u := *r.base
	q := u.Query()
	q.Set("offset", strconv.Itoa(r.offset))
	q.Set("limit", strconv.Itoa(n))
	u.RawQuery = q.Encode()
	return u.String()
}

var _ Source = (*Remote)(nil)
