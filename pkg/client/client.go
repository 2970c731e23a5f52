// Package client provides the resilient HTTP GET primitive shared by every
// substack lookup: fixed User-Agent, per-attempt timeout, exponential
// backoff on transport failures and an optional response cache.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/substack-client/pkg/cache"
	"github.com/Sternrassler/substack-client/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "substack_requests_total",
		Help: "Total GET requests by outcome (HTTP status, network_error or cache_hit)",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "substack_request_duration_seconds",
		Help:    "Duration of a Get call including retries",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 120},
	})
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.77 Safari/537.36"

// Doer executes a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResponseCache is the subset of *cache.Manager the client needs. Store
// decides which responses are kept.
type ResponseCache interface {
	Lookup(ctx context.Context, u *url.URL) (*cache.CacheEntry, error)
	Store(ctx context.Context, u *url.URL, statusCode int, header http.Header, body []byte, ttl time.Duration) (bool, error)
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent on every request
	UserAgent string

	// Timeout bounds each attempt (connect, headers and body)
	Timeout time.Duration

	// Retry
	Retry RetryConfig

	// Optional response cache; nil disables caching
	Cache    ResponseCache
	CacheTTL time.Duration

	// HTTPClient overrides the transport (default: *http.Client with Timeout)
	HTTPClient Doer
}

// DefaultConfig returns the default configuration: browser User-Agent,
// 30s timeout, five attempts with base-3 backoff, no cache.
func DefaultConfig() Config {
	return Config{
		UserAgent: DefaultUserAgent,
		Timeout:   30 * time.Second,
		Retry:     DefaultRetryConfig(),
		CacheTTL:  10 * time.Minute,
	}
}

// Client performs GET requests with retry. It holds no per-request state and
// may be shared by independent operations.
type Client struct {
	httpClient Doer
	cache      ResponseCache
	config     Config
	logger     zerolog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive (got %v)", cfg.Timeout)
	}

	if err := cfg.Retry.validate(); err != nil {
		return nil, err
	}

	if cfg.Cache != nil && cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("cache_ttl must be positive when a cache is set (got %v)", cfg.CacheTTL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		cache:      cfg.Cache,
		config:     cfg,
		logger:     logging.NewLogger(logging.ComponentClient),
		sleep:      sleepContext,
	}, nil
}

// Get fetches rawURL. Transport failures are retried with backoff; any HTTP
// status, including 4xx and 5xx, is returned as a Response for the caller to
// inspect.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}

	startTime := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(startTime).Seconds())
	}()

	if resp := c.fromCache(ctx, u); resp != nil {
		return resp, nil
	}

	c.logger.Debug().Str("url", rawURL).Msg("Executing request")

	var resp *Response
	err = c.retryWithBackoff(ctx, rawURL, func() error {
		var attemptErr error
		resp, attemptErr = c.do(ctx, u)
		if attemptErr != nil {
			c.logger.Debug().Err(attemptErr).Str("url", rawURL).Msg("HTTP request failed")
			requestsTotal.WithLabelValues("network_error").Inc()
		}
		return attemptErr
	})
	if err != nil {
		return nil, err
	}

	requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	if resp.StatusCode >= 400 {
		c.logger.Warn().
			Str("url", rawURL).
			Int("status", resp.StatusCode).
			Msg("Request returned error status")
	}

	c.toCache(ctx, u, resp)
	return resp, nil
}

// GetJSON fetches rawURL and decodes its body into v. Numbers are decoded as
// json.Number when v holds interface values. The response is returned even
// for non-2xx statuses as long as the body decodes.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) (*Response, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if err := DecodeJSON(resp.Body, v); err != nil {
		return resp, fmt.Errorf("%w: decode %s (status %d): %v", ErrUnexpectedShape, rawURL, resp.StatusCode, err)
	}
	return resp, nil
}

// DecodeJSON decodes body into v using json.Number for numbers.
func DecodeJSON(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}

// do runs a single attempt and reads the whole body under the attempt timeout.
func (c *Client) do(ctx context.Context, u *url.URL) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}

func (c *Client) fromCache(ctx context.Context, u *url.URL) *Response {
	if c.cache == nil {
		return nil
	}

	entry, err := c.cache.Lookup(ctx, u)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("url", u.String()).Msg("Cache lookup error")
		}
		return nil
	}

	c.logger.Debug().Str("url", u.String()).Msg("Cache hit")
	requestsTotal.WithLabelValues("cache_hit").Inc()
	return &Response{
		StatusCode: entry.StatusCode,
		Header:     entry.Headers,
		Body:       entry.Data,
	}
}

func (c *Client) toCache(ctx context.Context, u *url.URL, resp *Response) {
	if c.cache == nil {
		return
	}

	stored, err := c.cache.Store(ctx, u, resp.StatusCode, resp.Header, resp.Body, c.config.CacheTTL)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", u.String()).Msg("Failed to cache response")
		return
	}
	if stored {
		c.logger.Debug().
			Str("url", u.String()).
			Dur("ttl", c.config.CacheTTL).
			Msg("Cached response")
	}
}

// SetHTTPClient sets a custom transport (for testing).
func (c *Client) SetHTTPClient(d Doer) {
	c.httpClient = d
}
