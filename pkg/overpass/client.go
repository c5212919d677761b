// Package overpass queries OpenStreetMap features through the Overpass API.
package overpass

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pickleballplayers/court-harvester/internal/resilience"
)

// DefaultURL is the main public Overpass interpreter.
const DefaultURL = "https://overpass-api.de/api/interpreter"

// Client runs Overpass QL queries.
type Client interface {
	Query(ctx context.Context, query string) (*Response, error)
}

// Option configures the client.
type Option func(*client)

// WithURL sets the interpreter endpoint.
func WithURL(u string) Option {
	return func(c *client) {
		c.url = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *client) {
		c.userAgent = ua
	}
}

// WithRetry sets the retry policy for overloaded-server responses.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *client) {
		c.retry = cfg
	}
}

type client struct {
	httpClient *http.Client
	url        string
	userAgent  string
	retry      resilience.RetryConfig
}

// NewClient creates an Overpass Client.
func NewClient(opts ...Option) Client {
	c := &client{
		// Slightly above the default query timeout so the server reports its
		// own timeout before the client gives up.
		httpClient: &http.Client{Timeout: 60 * time.Second},
		url:        DefaultURL,
		retry:      resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.RetryLogger("overpass", "query")
	}
	return c
}

// Query POSTs query as the form field "data" and decodes the JSON result.
// Overload responses (429, 5xx) are retried per the client's retry policy.
func (c *client) Query(ctx context.Context, query string) (*Response, error) {
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*Response, error) {
		return c.do(ctx, query)
	})
}

func (c *client) do(ctx context.Context, query string) (*Response, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, resilience.StatusError("overpass", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: read body")
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "overpass: parse response")
	}
	// A server-side timeout still returns 200, with partial elements and a remark.
	if out.Remark != "" {
		zap.L().Warn("overpass: query remark",
			zap.String("component", "overpass"),
			zap.String("remark", out.Remark),
			zap.Int("elements", len(out.Elements)),
		)
	}
	return &out, nil
}
