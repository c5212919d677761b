package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// searchResult is one element of the Nominatim /search JSON array. Nominatim
// encodes every number as a string.
type searchResult struct {
	DisplayName string   `json:"display_name"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	BoundingBox []string `json:"boundingbox"` // [south, north, west, east]
}

// Search resolves query to the top matching place.
func (g *geocoder) Search(ctx context.Context, query string) (*Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, eris.New("geocode: empty query")
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: search rate limit")
	}

	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}
	req, err := g.newRequest(ctx, "/search", params.Encode())
	if err != nil {
		return nil, eris.Wrap(err, "geocode: search build request")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: search request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: search read body")
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, eris.Wrap(err, "geocode: search parse response")
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	top := results[0]
	bbox, err := parseBoundingBox(top.BoundingBox)
	if err != nil {
		return nil, err
	}

	place := &Place{BBox: bbox, DisplayName: top.DisplayName}
	// The centre point is informational; a bad value leaves it zero.
	place.Lat, _ = strconv.ParseFloat(top.Lat, 64)
	place.Lng, _ = strconv.ParseFloat(top.Lon, 64)
	return place, nil
}

func parseBoundingBox(raw []string) (BoundingBox, error) {
	if len(raw) != 4 {
		return BoundingBox{}, eris.Errorf("geocode: bounding box has %d values, want 4", len(raw))
	}
	var v [4]float64
	for i, s := range raw {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return BoundingBox{}, eris.Wrapf(err, "geocode: bounding box value %q", s)
		}
		v[i] = f
	}
	bbox := BoundingBox{South: v[0], North: v[1], West: v[2], East: v[3]}
	if bbox.South > bbox.North {
		return BoundingBox{}, eris.Errorf("geocode: inverted bounding box %v", raw)
	}
	return bbox, nil
}
