package httputil

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cgmap/pkg/buildinfo"
	"github.com/matzehuels/cgmap/pkg/cache"
	"github.com/matzehuels/cgmap/pkg/errors"
)

const (
	// DefaultMaxBytes bounds downloaded documents.
	DefaultMaxBytes = 16 << 20

	// DefaultTTL is how long fetched documents stay cached.
	DefaultTTL = time.Hour

	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = 500 * time.Millisecond
)

// ErrNetwork marks a server that could not be reached or failed.
var ErrNetwork = stderrors.New("network error")

// Client downloads scene documents.
type Client struct {
	http       *http.Client
	cache      cache.Cache
	ttl        time.Duration
	maxBytes   int64
	retryDelay time.Duration
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCache keeps fetched bodies in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		if c != nil {
			cl.cache = c
		}
		if ttl > 0 {
			cl.ttl = ttl
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithMaxBytes bounds downloaded documents.
func WithMaxBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// WithRetryDelay sets the first backoff step.
func WithRetryDelay(d time.Duration) Option { return func(c *Client) { c.retryDelay = d } }

// WithLogger sets the client's logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient returns a client with no cache unless WithCache is given.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:       &http.Client{Timeout: defaultTimeout},
		cache:      cache.NewNullCache(),
		ttl:        DefaultTTL,
		maxBytes:   DefaultMaxBytes,
		retryDelay: defaultRetryDelay,
		logger:     log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsURL reports whether s names an http or https resource.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch returns the body at url. With refresh set the cache is bypassed;
// the fresh body is still stored.
func (c *Client) Fetch(ctx context.Context, url string, refresh bool) ([]byte, error) {
	key := "remote:" + cache.Hash([]byte(url))
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			c.logger.Debug("remote scene cached", "url", url)
			return data, nil
		}
	}

	var body []byte
	err := cache.RetryWithBackoff(ctx, c.retryDelay, func() error {
		var err error
		body, err = c.get(ctx, url)
		if err != nil && cache.IsRetryable(err) {
			c.logger.Debug("fetch failed, retrying", "url", url, "err", err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, body, c.ttl); err != nil {
		c.logger.Warn("cache write failed", "url", url, "err", err)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "request %s", url)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(url, resp.StatusCode); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: read %s: %v", ErrNetwork, url, err))
	}
	if int64(len(data)) > c.maxBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is larger than %d bytes", url, c.maxBytes)
	}
	return data, nil
}

func checkStatus(url string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s: not found", url)
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: %s: status %d", ErrNetwork, url, code))
	default:
		return errors.New(errors.ErrCodeInvalidInput, "%s: status %d", url, code)
	}
}
