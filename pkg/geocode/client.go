// Package geocode provides forward and reverse geocoding against Nominatim.
package geocode

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const (
	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultUserAgent identifies the harvester to Nominatim, which rejects
	// anonymous clients.
	DefaultUserAgent = "PickleballPlayersBot/1.0"

	// DefaultMinInterval keeps requests under Nominatim's 1 req/s policy.
	DefaultMinInterval = 1100 * time.Millisecond
)

// ErrNotFound is returned by Search when the query matches no place.
var ErrNotFound = eris.New("geocode: no match")

// Client resolves place names and coordinates.
type Client interface {
	// Search resolves a free-form place name to its bounding box. It returns
	// ErrNotFound when nothing matches.
	Search(ctx context.Context, query string) (*Place, error)

	// Reverse describes the place at a coordinate. It returns nil on any
	// failure and never reports an error.
	Reverse(ctx context.Context, lat, lng float64) *PlaceInfo
}

// BoundingBox is a geographic rectangle in degrees.
type BoundingBox struct {
	South float64 `json:"south"`
	North float64 `json:"north"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// Place is the top forward-geocoding match.
type Place struct {
	BBox        BoundingBox `json:"bbox"`
	DisplayName string      `json:"display_name"`
	Lat         float64     `json:"lat"`
	Lng         float64     `json:"lng"`
}

// PlaceInfo is what reverse geocoding knows about a coordinate. Any field may
// be empty.
type PlaceInfo struct {
	PlaceName   string `json:"place_name,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	FullAddress string `json:"full_address,omitempty"`
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithBaseURL points the client at another Nominatim instance.
func WithBaseURL(u string) Option {
	return func(g *geocoder) {
		g.baseURL = strings.TrimRight(u, "/")
	}
}

// WithUserAgent sets the User-Agent sent on every request.
func WithUserAgent(ua string) Option {
	return func(g *geocoder) {
		g.userAgent = ua
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithLimiter replaces the request limiter. Search and Reverse share it.
func WithLimiter(l Limiter) Option {
	return func(g *geocoder) {
		g.limiter = l
	}
}

// WithMinInterval sets the minimum spacing between requests.
func WithMinInterval(d time.Duration) Option {
	return func(g *geocoder) {
		g.limiter = NewIntervalLimiter(d, nil)
	}
}

type geocoder struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    Limiter
}

// NewClient creates a new Nominatim Client with the given options.
func NewClient(opts ...Option) Client {
	g := &geocoder{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		limiter:    NewIntervalLimiter(DefaultMinInterval, nil),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *geocoder) newRequest(ctx context.Context, path, rawQuery string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+rawQuery, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}
