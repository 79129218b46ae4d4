package httputil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/stammbaum/pkg/cache"
	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/observability"
)

// DefaultTimeout bounds a single request attempt including the body read.
const DefaultTimeout = 30 * time.Second

// maxResponseSize caps remote documents so a misbehaving server cannot
// exhaust memory.
const maxResponseSize = 16 << 20

// Client fetches JSON documents from remote Stammbaum instances with
// response caching and retry. The zero configuration (nil cache and keyer)
// works without caching.
type Client struct {
	http  *http.Client
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTTL overrides the cache TTL for fetched responses.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

// NewClient creates a Client backed by the given cache and keyer. Either
// may be nil; requests then go uncached with default key derivation.
func NewClient(store cache.Cache, keyer cache.Keyer, opts ...Option) *Client {
	c := &Client{
		http:  &http.Client{Timeout: DefaultTimeout},
		cache: store,
		keyer: keyer,
		ttl:   cache.TTLHTTP,
	}
	if c.cache == nil {
		c.cache = cache.NewNullCache()
	}
	if c.keyer == nil {
		c.keyer = cache.NewDefaultKeyer()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON fetches the URL and decodes the response body into v. Responses
// are cached; a fresh fetch retries transient failures with backoff.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	if err := errors.ValidateURL(rawURL); err != nil {
		return err
	}

	key := c.keyer.HTTPKey("get", rawURL)
	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		if err := json.Unmarshal(data, v); err == nil {
			observability.Cache().OnCacheHit(ctx, "http")
			return nil
		}
		// Corrupt entry; fetch fresh.
	}
	observability.Cache().OnCacheMiss(ctx, "http")

	data, err := c.fetch(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "http", len(data))
	}

	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "decode response from %s", rawURL)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidation, err, "parse url %q", rawURL)
	}
	hooks := observability.HTTP()

	var body []byte
	err = cache.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return errors.Wrap(errors.ErrCodeNetwork, err, "build request for %s", rawURL)
		}
		req.Header.Set("Accept", "application/json")

		hooks.OnRequest(ctx, http.MethodGet, u.Host, u.Path)
		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			hooks.OnError(ctx, http.MethodGet, u.Host, u.Path, err)
			return cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "get %s", rawURL))
		}
		defer resp.Body.Close()
		hooks.OnResponse(ctx, http.MethodGet, u.Host, u.Path, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return cache.Retryable(errors.New(errors.ErrCodeNetwork,
				"get %s: status %d", rawURL, resp.StatusCode))
		case resp.StatusCode == http.StatusNotFound:
			return errors.New(errors.ErrCodeNotFound, "get %s: not found", rawURL)
		default:
			return errors.New(errors.ErrCodeNetwork, "get %s: status %d", rawURL, resp.StatusCode)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read response from %s", rawURL))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
