// Package httputil fetches scene documents over HTTP.
//
// [Client] downloads a document, retrying network failures and 5xx
// responses with backoff, and keeps the body in a [cache.Cache] so a
// scene rendered repeatedly from the same URL is downloaded once:
//
//	c := httputil.NewClient(httputil.WithCache(fc, time.Hour))
//	data, err := c.Fetch(ctx, "https://example.org/puc19.json", false)
//
// Bodies larger than the client's limit are rejected rather than
// truncated.
package httputil
