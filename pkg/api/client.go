package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/feedwatch/sourcegrid/pkg/cache"
	apperr "github.com/feedwatch/sourcegrid/pkg/errors"
	"github.com/feedwatch/sourcegrid/pkg/httputil"
	"github.com/feedwatch/sourcegrid/pkg/observability"
)

const (
	// DefaultTimeout bounds a single backend request.
	DefaultTimeout = 10 * time.Second

	// DefaultCacheTTL is used by [WithCache] when ttl is zero.
	DefaultCacheTTL = 5 * time.Minute

	defaultRetries    = 3
	defaultRetryDelay = time.Second
)

// Client talks to the RSS aggregation backend.
type Client struct {
	baseURL    string
	host       string
	http       *http.Client
	cache      cache.Cache
	keyer      cache.Keyer
	ttl        time.Duration
	headers    map[string]string
	logger     *log.Logger
	retries    int
	retryDelay time.Duration
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithCache caches GET responses in ch for ttl.
func WithCache(ch cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		if ch == nil {
			return
		}
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		c.cache = ch
		c.ttl = ttl
	}
}

// WithKeyer sets the keyer used for cached responses.
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) {
		if k != nil {
			c.keyer = k
		}
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithLogger sets the logger for request tracing at debug level.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRetry overrides how often failed GET requests are attempted and the
// initial delay between attempts.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.retries = max(attempts, 1)
		c.retryDelay = delay
	}
}

// New creates a client for the backend at baseURL. Trailing slashes are
// removed from baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if err := apperr.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	base := strings.TrimRight(baseURL, "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidURL, err, "invalid API URL %q", baseURL)
	}

	c := &Client{
		baseURL:    base,
		host:       u.Host,
		http:       &http.Client{Timeout: DefaultTimeout},
		cache:      cache.NewNullCache(),
		keyer:      cache.NewDefaultKeyer(),
		headers:    map[string]string{},
		logger:     log.New(io.Discard),
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string { return c.baseURL }

// IconURL builds the URL of a company icon served by the backend. Each path
// segment is escaped and empty segments are dropped. It returns "" when
// iconPath has no segments.
func (c *Client) IconURL(iconPath string) string {
	var segments []string
	for _, s := range strings.Split(iconPath, "/") {
		if s != "" {
			segments = append(segments, url.PathEscape(s))
		}
	}
	if len(segments) == 0 {
		return ""
	}
	return c.baseURL + "/rss/img/" + strings.Join(segments, "/")
}

// get fetches path into v, reading through the cache unless refresh is set.
func (c *Client) get(ctx context.Context, path string, refresh bool, v any) error {
	key := c.keyer.HTTPKey(c.host, path)
	hooks := observability.Cache()

	if !refresh {
		data, hit, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("cache read failed", "key", key, "err", err)
		}
		if hit && json.Unmarshal(data, v) == nil {
			hooks.OnCacheHit(ctx, "http")
			return nil
		}
		hooks.OnCacheMiss(ctx, "http")
	}

	body, err := c.fetch(ctx, path)
	if err != nil {
		return err
	}
	if err := decode(body, v); err != nil {
		return apperr.Wrap(apperr.ErrCodeUpstream, err, "decode response of GET %s", path)
	}

	if err := c.cache.Set(ctx, key, body, c.ttl); err != nil {
		c.logger.Warn("cache write failed", "key", key, "err", err)
	} else {
		hooks.OnCacheSet(ctx, "http", len(body))
	}
	return nil
}

// fetch performs a GET with retries and returns the raw body.
func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	err := httputil.Retry(ctx, c.retries, c.retryDelay, func() error {
		var err error
		body, err = c.do(ctx, http.MethodGet, path, nil)
		return err
	})
	if err != nil {
		return nil, unwrapRetryable(err)
	}
	return body, nil
}

// send performs a mutating request once and decodes the response into v.
func (c *Client) send(ctx context.Context, method, path string, in, v any) error {
	body, err := c.do(ctx, method, path, in)
	if err != nil {
		return unwrapRetryable(err)
	}
	if err := decode(body, v); err != nil {
		return apperr.Wrap(apperr.ErrCodeUpstream, err, "decode response of %s %s", method, path)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in any) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "encode request body")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidURL, err, "build request %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, req.URL.Host, req.URL.Path, err)
		return nil, transportError(ctx, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	hooks.OnResponse(ctx, method, req.URL.Host, req.URL.Path, resp.StatusCode, elapsed)
	if err != nil {
		return nil, &httputil.RetryableError{
			Err: apperr.Wrap(apperr.ErrCodeNetwork, err, "read response of %s %s", method, path),
		}
	}

	c.logger.Debug("backend request", "method", method, "path", path, "status", resp.StatusCode, "duration", elapsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(method, path, resp.StatusCode, resp.Header.Get("Content-Type"), data)
	}
	return data, nil
}

func decode(body []byte, v any) error {
	if v == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}
