package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client performs JSON GET requests with retries.
type Client struct {
	http    *http.Client
	retry   Retrier
	headers map[string]string
}

// NewClient creates a client that sends headers with every request.
func NewClient(headers map[string]string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		retry:   DefaultRetrier(),
		headers: headers,
	}
}

// WithRetrier returns a copy of c using r.
func (c *Client) WithRetrier(r Retrier) *Client {
	cp := *c
	cp.retry = r
	return &cp
}

// GetJSON fetches url and decodes the response body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	return c.retry.Do(ctx, func() error {
		body, err := c.get(ctx, url)
		if err != nil {
			return err
		}
		defer body.Close()
		if err := json.NewDecoder(body).Decode(v); err != nil {
			return fmt.Errorf("decode %s: %w", url, err)
		}
		return nil
	})
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: err}
	}
	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// StatusError is a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	err := &StatusError{URL: resp.Request.URL.String(), Code: code}
	if code == http.StatusTooManyRequests || code >= 500 {
		return &RetryableError{Err: err}
	}
	return err
}
