package harvest

import (
	"context"

	"github.com/golang/geo/s2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pickleballplayers/court-harvester/internal/model"
	"github.com/pickleballplayers/court-harvester/internal/store"
)

// DefaultToleranceDeg is the half-width of the duplicate search box,
// roughly 55 m of latitude.
const DefaultToleranceDeg = 0.0005

const earthRadiusMeters = 6371008.8

// Matcher finds the stored court a harvested coordinate refers to.
type Matcher struct {
	store     store.Store
	tolerance float64
}

// NewMatcher returns a Matcher with the given tolerance in degrees.
// Non-positive values use DefaultToleranceDeg.
func NewMatcher(st store.Store, toleranceDeg float64) *Matcher {
	if toleranceDeg <= 0 {
		toleranceDeg = DefaultToleranceDeg
	}
	return &Matcher{store: st, tolerance: toleranceDeg}
}

// FindExisting returns the court within tolerance of lat/lng on both axes,
// or nil if there is none. Stores that implement store.ProximityFinder are
// asked first; if that lookup fails the bounding-box query is used instead.
func (m *Matcher) FindExisting(ctx context.Context, lat, lng float64) (*model.Court, error) {
	if pf, ok := m.store.(store.ProximityFinder); ok {
		courts, err := pf.FindCourtsNear(ctx, lat, lng, m.tolerance)
		if err == nil {
			if len(courts) == 0 {
				return nil, nil
			}
			return &courts[0], nil
		}
		zap.L().Warn("proximity lookup failed, falling back to bounding box",
			zap.String("component", "harvest.dedup"),
			zap.Float64("lat", lat),
			zap.Float64("lng", lng),
			zap.Error(err),
		)
	}

	b := model.Around(lat, lng, m.tolerance)
	courts, err := m.store.QueryCourts(ctx, store.CourtFilter{Bounds: &b, Limit: 1})
	if err != nil {
		return nil, eris.Wrap(err, "harvest: bounding box lookup")
	}
	if len(courts) == 0 {
		return nil, nil
	}
	return &courts[0], nil
}

// distanceMeters is the great-circle distance between two points.
func distanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lng1)
	b := s2.LatLngFromDegrees(lat2, lng2)
	return a.Distance(b).Radians() * earthRadiusMeters
}
