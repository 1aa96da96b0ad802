// Package socrata fetches inspection rows from an NYC Open Data (Socrata)
// resource endpoint.
package socrata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/nyc-coffee-inspections/internal/domain"
)

// Client implements domain.RecordSource against a Socrata resource URL.
type Client struct {
	baseURL    string
	category   string
	appToken   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAppToken sends token in the X-App-Token header.
func WithAppToken(token string) Option {
	return func(c *Client) { c.appToken = token }
}

// WithRateLimit caps outgoing requests at perSecond, with a burst of one.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1) }
}

// NewClient creates a client for the resource at baseURL, restricted to the
// given cuisine category.
func NewClient(baseURL, category string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		category: category,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch runs one query. A zero Limit leaves the limit to the server.
func (c *Client) Fetch(ctx context.Context, q domain.Query) ([]domain.RawRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL(q), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.appToken != "" {
		req.Header.Set("X-App-Token", c.appToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("socrata request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("socrata API error: status %d: %s", resp.StatusCode, body)
	}

	raws, err := domain.DecodeRawRecords(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "socrata query complete",
		"name", q.Name,
		"limit", q.Limit,
		"rows", len(raws),
		"elapsed", time.Since(start),
	)
	return raws, nil
}

func (c *Client) queryURL(q domain.Query) string {
	params := url.Values{
		"cuisine_description": {c.category},
	}
	if q.Limit > 0 {
		params.Set("$limit", strconv.Itoa(q.Limit))
	}
	if q.Name != "" {
		params.Set("dba", q.Name)
	}
	return c.baseURL + "?" + params.Encode()
}
