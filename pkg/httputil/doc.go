// Package httputil provides the HTTP plumbing used by remote item feeds:
// a JSON client that classifies failures and a retry loop with
// exponential backoff.
//
// Transient failures (network errors, 429 and 5xx responses) are wrapped in
// [RetryableError]; [Retrier.Do] retries only those.
//
//	c := httputil.NewClient(nil)
//	var page Page
//	err := c.GetJSON(ctx, "https://example.com/items?offset=0&limit=10", &page)
package httputil
