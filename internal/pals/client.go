// Package pals provides a client for the Paldeck REST API, the upstream
// source of creature records served by the /pal command.
//
// Both endpoints return the same paginated [Envelope]:
//
//	GET {base}?limit=200  — listing, used once at startup to load all names
//	GET {base}?name=Foo   — detail lookup, content[0] is the result
//
// The client performs exactly one HTTP request per call. No retries, no
// caching — failures surface immediately to the caller.
package pals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MrWong99/paldex/internal/observe"
)

// DefaultPageSize is the page size requested from the listing endpoint.
// A single page at this size covers the full Paldeck; deeper pagination is
// deliberately not implemented.
const DefaultPageSize = 200

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all requests. Useful in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets a per-request timeout on the client. A zero or negative
// value means no timeout (the default). The timeout applies regardless of
// option order, including when combined with [WithHTTPClient].
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithPageSize sets the page size requested by [Client.Names].
// Values outside [1, DefaultPageSize] fall back to DefaultPageSize.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n >= 1 && n <= DefaultPageSize {
			c.pageSize = n
		}
	}
}

// WithMetrics sets the metrics instance used to record request telemetry.
// Defaults to [observe.DefaultMetrics]. Useful in tests.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client is a Paldeck API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	pageSize   int
	timeout    time.Duration
	httpClient *http.Client
	metrics    *observe.Metrics
}

// New creates a Client for the Paldeck API at baseURL. baseURL must be
// non-empty and parse as an absolute URL; a trailing slash is stripped.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("pals: baseURL must not be empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("pals: parse baseURL %q: %w", baseURL, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("pals: baseURL %q is not absolute", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		pageSize:   DefaultPageSize,
		httpClient: &http.Client{},
		metrics:    observe.DefaultMetrics(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 {
		c.httpClient.Timeout = c.timeout
	}
	return c, nil
}

// Names fetches the display names of all Pals from the listing endpoint.
// A single page of up to the configured page size is requested; the result
// order is whatever the upstream returns.
func (c *Client) Names(ctx context.Context) ([]string, error) {
	env, err := c.fetch(ctx, "names", c.baseURL+"?limit="+strconv.Itoa(c.pageSize))
	if err != nil {
		return nil, fmt.Errorf("pals: list names: %w", err)
	}

	names := make([]string, 0, len(env.Content))
	for _, p := range env.Content {
		names = append(names, p.Name)
	}
	return names, nil
}

// Get fetches the full record for the Pal with the given name.
//
// Error kinds:
//   - [ErrPalNotFound] — 200 response with an empty content list.
//   - [ErrAuthExpired] — HTTP 401, regardless of body.
//   - [*UnexpectedStatusError] — any other non-200 status.
//   - anything else — transport or decode failure, wrapped.
func (c *Client) Get(ctx context.Context, name string) (*Pal, error) {
	q := url.Values{"name": {name}}
	env, err := c.fetch(ctx, "get", c.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("pals: get %q: %w", name, err)
	}

	if len(env.Content) == 0 {
		return nil, fmt.Errorf("pals: get %q: %w", name, ErrPalNotFound)
	}
	pal := env.Content[0]
	return &pal, nil
}

// fetch issues a single GET and decodes the envelope. Status handling,
// tracing, and request metrics are shared by both endpoints.
func (c *Client) fetch(ctx context.Context, op, rawURL string) (*Envelope, error) {
	ctx, span := observe.StartSpan(ctx, "paldeck."+op)
	defer span.End()

	start := time.Now()
	status := "error"
	defer func() {
		c.metrics.RecordAPIRequest(ctx, op, status, time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		status = "auth_expired"
		return nil, ErrAuthExpired
	default:
		status = "unexpected_status"
		return nil, &UnexpectedStatusError{Status: resp.StatusCode}
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	status = "ok"
	return &env, nil
}
