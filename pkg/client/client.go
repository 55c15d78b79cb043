// Package client provides the HTTP client for the PayNow payment gateway with
// retry, optional Redis response caching and error decoding.
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
	"strings"
	"time"

	"github.com/Sternrassler/paynow-client/pkg/breaker"
	"github.com/Sternrassler/paynow-client/pkg/cache"
	"github.com/Sternrassler/paynow-client/pkg/logging"
	"github.com/Sternrassler/paynow-client/pkg/payment"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for gateway client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paynow_requests_total",
		Help: "Total gateway requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paynow_request_duration_seconds",
		Help:    "Gateway request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paynow_errors_total",
		Help: "Total gateway errors by class",
	}, []string{"class"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paynow_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paynow_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// RequestIDHeader carries a per-call correlation id to the gateway.
const RequestIDHeader = "X-Request-ID"

// Client talks to the PayNow gateway.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	cache      *cache.Manager
	breaker    *breaker.Breaker
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the gateway API root, e.g. "http://localhost:8080/api".
	BaseURL string

	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds each HTTP attempt.
	Timeout time.Duration

	// Retry controls retries of 5xx and network failures.
	Retry RetryConfig

	// Redis enables the listing response cache when non-nil.
	Redis *redis.Client

	// CacheTTL applies when the gateway sends no freshness headers.
	CacheTTL time.Duration

	// Breaker enables the failure budget shared through Redis. It is
	// ignored when Redis is nil.
	Breaker *breaker.Config
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: "paynow-client/0.1.0",
		Timeout:   15 * time.Second,
		Retry:     DefaultRetryConfig(),
		CacheTTL:  cache.DefaultTTL,
	}
}

// New creates a new gateway client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    base,
		config:     cfg,
		logger:     logging.NewLogger("payment-client"),
	}

	if cfg.Redis != nil {
		c.cache = cache.NewManager(cfg.Redis, cache.WithDefaultTTL(cfg.CacheTTL))
		if cfg.Breaker != nil {
			c.breaker = breaker.New(cfg.Redis, *cfg.Breaker, logging.NewLogger("breaker"))
		}
	}

	return c, nil
}

// request describes one logical gateway call.
type request struct {
	method string
	path   string
	// route is the low-cardinality endpoint label used in metrics and logs.
	route     string
	query     url.Values
	body      any
	cacheable bool
	// validate vets a 200 body before it is cached. A body it rejects is
	// returned to the caller but never stored.
	validate func(body []byte) error
}

// response is a fully read gateway response.
type response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	FromCache  bool
}

// do executes a request with caching, retry and error decoding.
func (c *Client) do(ctx context.Context, r request) (*response, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(r.route).Observe(time.Since(startTime).Seconds())
	}()

	var payload []byte
	if r.body != nil {
		var err error
		payload, err = json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	// Step 1: Check cache
	var cacheKey cache.Key
	var cached *cache.Entry
	useCache := r.cacheable && c.cache != nil && r.method == http.MethodGet
	if useCache {
		cacheKey = cache.Key{Endpoint: r.path, QueryParams: r.query}
		entry, err := c.cache.Get(ctx, cacheKey)
		switch {
		case err == nil && !entry.IsExpired():
			c.logger.Debug().Str("endpoint", r.route).Str("key", cacheKey.String()).Msg("Serving from cache")
			requestsTotal.WithLabelValues(r.route, "cache").Inc()
			return &response{StatusCode: entry.StatusCode, Header: entry.Headers, Body: entry.Data, FromCache: true}, nil
		case err == nil:
			cached = entry
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("endpoint", r.route).Msg("Cache get error")
		}
	}

	if err := c.allow(ctx, r); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	target := c.resolve(r.path, r.query)

	c.logger.Debug().
		Str("endpoint", r.route).
		Str("method", r.method).
		Str("request_id", requestID).
		Msg("Executing gateway request")

	// Step 2: Execute with retry
	var resp *response
	retryErr := retryWithBackoff(ctx, c.config.Retry, func() (ErrorClass, error) {
		resp = nil

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, r.method, target, body)
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set(RequestIDHeader, requestID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if cached != nil && cache.ShouldMakeConditionalRequest(cached) {
			cache.AddConditionalHeaders(req, cached)
			cache.ConditionalRequestsSent.Inc()
		}

		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error().Err(err).Str("endpoint", r.route).Str("request_id", requestID).Msg("HTTP request failed")
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(r.route, "network_error").Inc()
			c.recordOutcome(ctx, ErrorClassNetwork)
			return ErrorClassNetwork, &APIError{ErrorClass: ErrorClassNetwork, Path: r.path, Err: err}
		}
		defer httpResp.Body.Close()

		data, err := io.ReadAll(httpResp.Body)
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(r.route, "network_error").Inc()
			c.recordOutcome(ctx, ErrorClassNetwork)
			return ErrorClassNetwork, &APIError{
				StatusCode: httpResp.StatusCode,
				ErrorClass: ErrorClassNetwork,
				Path:       r.path,
				Err:        fmt.Errorf("read response body: %w", err),
			}
		}

		requestsTotal.WithLabelValues(r.route, strconv.Itoa(httpResp.StatusCode)).Inc()
		resp = &response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}

		errClass := classifyStatus(httpResp.StatusCode)
		c.recordOutcome(ctx, errClass)
		if errClass != "" {
			errorsTotal.WithLabelValues(string(errClass)).Inc()
			apiErr := decodeErrorBody(httpResp.StatusCode, errClass, r.path, data)

			c.logger.Warn().
				Str("endpoint", r.route).
				Int("status_code", httpResp.StatusCode).
				Str("error_class", string(errClass)).
				Str("request_id", requestID).
				Msg("Gateway request error")

			return errClass, apiErr
		}

		return "", nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	// Step 3: 304 Not Modified refreshes the stale entry
	if resp.StatusCode == http.StatusNotModified && cached != nil {
		cache.NotModifiedResponses.Inc()
		if err := c.cache.Refresh(ctx, cacheKey, cached, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to refresh cache entry")
		}
		c.logger.Debug().Str("endpoint", r.route).Msg("304 Not Modified - using cache")
		return &response{StatusCode: cached.StatusCode, Header: cached.Headers, Body: cached.Data, FromCache: true}, nil
	}

	// Step 4: Update cache on success
	if useCache && resp.StatusCode == http.StatusOK {
		if r.validate != nil {
			if err := r.validate(resp.Body); err != nil {
				c.logger.Warn().Err(err).Str("endpoint", r.route).Str("request_id", requestID).Msg("Response not cached")
				return resp, nil
			}
		}
		entry := cache.NewEntry(resp.StatusCode, resp.Header, resp.Body, c.cache.DefaultTTL())
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		} else {
			c.logger.Debug().
				Str("endpoint", r.route).
				Dur("ttl", entry.TTL()).
				Msg("Cached response")
		}
	}

	return resp, nil
}

// allow consults the breaker before a request goes out. A Redis failure
// lets the request through.
func (c *Client) allow(ctx context.Context, r request) error {
	if c.breaker == nil {
		return nil
	}

	ok, err := c.breaker.Allow(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		}
		c.logger.Warn().Err(err).Str("endpoint", r.route).Msg("Breaker state unavailable")
		return nil
	}
	if !ok {
		errorsTotal.WithLabelValues(string(ErrorClassServer)).Inc()
		requestsTotal.WithLabelValues(r.route, "breaker_open").Inc()
		return &APIError{ErrorClass: ErrorClassServer, Path: r.path, Err: breaker.ErrOpen}
	}
	return nil
}

// recordOutcome feeds one attempt into the breaker. Client errors neither
// count as failures nor reset the window.
func (c *Client) recordOutcome(ctx context.Context, class ErrorClass) {
	if c.breaker == nil {
		return
	}

	var err error
	switch class {
	case "":
		err = c.breaker.RecordSuccess(ctx)
	case ErrorClassServer, ErrorClassNetwork:
		err = c.breaker.RecordFailure(ctx)
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to update breaker")
	}
}

// resolve joins the base URL with path and query.
func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// decodeErrorBody builds an APIError, picking up the gateway's message if the body has one.
func decodeErrorBody(statusCode int, errClass ErrorClass, path string, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		ErrorClass: errClass,
		Path:       path,
	}

	var errResp payment.ErrorResponse
	if len(body) > 0 && json.Unmarshal(body, &errResp) == nil {
		apiErr.Message = errResp.Message
		if errResp.Path != "" {
			apiErr.Path = errResp.Path
		}
	}

	return apiErr
}

// decodeJSON unmarshals a successful response body into out.
func decodeJSON(resp *response, path string, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Path:       path,
			Err:        fmt.Errorf("decode response body: %w", err),
		}
	}
	return nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Cache returns the response cache, or nil when caching is disabled.
func (c *Client) Cache() *cache.Manager {
	return c.cache
}
