package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverse_ParkAndCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "30.25", r.URL.Query().Get("lat"))
		assert.Equal(t, "-97.75", r.URL.Query().Get("lon"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Write([]byte(`{"display_name":"Zilker Park, Austin, Texas","address":{"park":"Zilker Park","road":"Barton Springs Rd","city":"Austin","state":"Texas"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithLimiter(newTestLimiter()))
	info := c.Reverse(context.Background(), 30.25, -97.75)
	require.NotNil(t, info)
	assert.Equal(t, "Zilker Park", info.PlaceName)
	assert.Equal(t, "Austin", info.City)
	assert.Equal(t, "Texas", info.State)
	assert.Equal(t, "Zilker Park, Austin, Texas", info.FullAddress)
}

func TestReverse_FallbackKeys(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantPlace string
		wantCity  string
	}{
		{
			name:      "leisure and town",
			body:      `{"display_name":"d","address":{"leisure":"Rec Center","road":"Main St","town":"Smallville"}}`,
			wantPlace: "Rec Center",
			wantCity:  "Smallville",
		},
		{
			name:      "road and village",
			body:      `{"display_name":"d","address":{"road":"Elm St","village":"Hamlet"}}`,
			wantPlace: "Elm St",
			wantCity:  "Hamlet",
		},
		{
			name:      "stadium beats building",
			body:      `{"display_name":"d","address":{"building":"Gym","stadium":"Arena","city":"Metro"}}`,
			wantPlace: "Arena",
			wantCity:  "Metro",
		},
		{
			name:      "nothing useful",
			body:      `{"display_name":"d","address":{"country":"US"}}`,
			wantPlace: "",
			wantCity:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(tt.body)) //nolint:errcheck
			}))
			defer srv.Close()

			c := NewClient(WithBaseURL(srv.URL), WithLimiter(newTestLimiter()))
			info := c.Reverse(context.Background(), 1, 2)
			require.NotNil(t, info)
			assert.Equal(t, tt.wantPlace, info.PlaceName)
			assert.Equal(t, tt.wantCity, info.City)
			assert.Equal(t, "d", info.FullAddress)
		})
	}
}

func TestReverse_FailuresReturnNil(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"rate limited", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }},
		{"bad json", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte(`<html>`)) }}, //nolint:errcheck
		{"error field", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte(`{"error":"Unable to geocode"}`)) }}, //nolint:errcheck
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(WithBaseURL(srv.URL), WithLimiter(newTestLimiter()))
			assert.Nil(t, c.Reverse(context.Background(), 1, 2))
		})
	}
}

func TestReverse_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(WithBaseURL(url), WithLimiter(newTestLimiter()))
	assert.Nil(t, c.Reverse(context.Background(), 1, 2))
}

func TestReverse_LimiterErrorSkipsRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"display_name":"d","address":{}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	lim := &countingLimiter{err: errors.New("cancelled")}
	c := NewClient(WithBaseURL(srv.URL), WithLimiter(lim))
	assert.Nil(t, c.Reverse(context.Background(), 1, 2))
	assert.Equal(t, 1, lim.calls)
	assert.Equal(t, int32(0), hits.Load())
}

func TestReverse_SharesLimiterWithSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			w.Write([]byte(`[{"display_name":"X","boundingbox":["1","2","3","4"]}]`)) //nolint:errcheck
			return
		}
		w.Write([]byte(`{"display_name":"d","address":{"park":"P"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	clock := newFakeClock()
	c := NewClient(WithBaseURL(srv.URL), WithLimiter(NewIntervalLimiter(1100*time.Millisecond, clock)))
	ctx := context.Background()

	_, err := c.Search(ctx, "X")
	require.NoError(t, err)
	require.NotNil(t, c.Reverse(ctx, 1, 2))
	require.NotNil(t, c.Reverse(ctx, 1, 2))

	// Every reverse call waited a full interval after the previous request.
	require.Len(t, clock.sleeps, 2)
	for _, d := range clock.sleeps {
		assert.GreaterOrEqual(t, d, 1100*time.Millisecond)
	}
}
