package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// placeKeys are the address components that name a venue, most specific
// first. Road is the last resort so a court at least gets a street name.
var placeKeys = []string{"park", "leisure", "recreation_ground", "stadium", "building", "road"}

// cityKeys are checked in order; small places have a town or village but no city.
var cityKeys = []string{"city", "town", "village"}

type reverseResponse struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}

// Reverse describes the place at lat/lng. Failures are logged and yield nil.
func (g *geocoder) Reverse(ctx context.Context, lat, lng float64) *PlaceInfo {
	log := zap.L().With(
		zap.String("component", "geocode.reverse"),
		zap.Float64("lat", lat),
		zap.Float64("lng", lng),
	)

	if err := g.limiter.Wait(ctx); err != nil {
		log.Warn("reverse geocode: rate limit wait", zap.Error(err))
		return nil
	}

	params := url.Values{
		"lat":    {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":    {strconv.FormatFloat(lng, 'f', -1, 64)},
		"format": {"json"},
	}
	req, err := g.newRequest(ctx, "/reverse", params.Encode())
	if err != nil {
		log.Warn("reverse geocode: build request", zap.Error(err))
		return nil
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Warn("reverse geocode: request", zap.Error(err))
		return nil
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		log.Warn("reverse geocode: unexpected status", zap.Int("status", resp.StatusCode))
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("reverse geocode: read body", zap.Error(err))
		return nil
	}

	var rr reverseResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		log.Warn("reverse geocode: parse response", zap.Error(err))
		return nil
	}
	// Nominatim answers 200 with an error field for points it cannot place,
	// such as open water.
	if rr.Error != "" {
		log.Debug("reverse geocode: no result", zap.String("error", rr.Error))
		return nil
	}

	return &PlaceInfo{
		PlaceName:   firstNonEmpty(rr.Address, placeKeys),
		City:        firstNonEmpty(rr.Address, cityKeys),
		State:       rr.Address["state"],
		FullAddress: rr.DisplayName,
	}
}

func firstNonEmpty(m map[string]string, keys []string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}
