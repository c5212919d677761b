package store

import (
	"context"

	"github.com/pickleballplayers/court-harvester/internal/model"
)

// Sort orders accepted by CourtFilter.OrderBy.
const (
	OrderByName      = "name"
	OrderByCreatedAt = "created_at"
)

// CourtFilter specifies criteria for listing courts. Zero values mean "any".
type CourtFilter struct {
	// Bounds restricts results to an inclusive lat/lng rectangle.
	Bounds *model.Bounds `json:"bounds,omitempty"`
	// NamePatterns are case-insensitive SQL LIKE patterns; a court matches
	// if its name matches any of them.
	NamePatterns []string `json:"name_patterns,omitempty"`
	ActiveOnly   bool     `json:"active_only,omitempty"`
	OrderBy      string   `json:"order_by,omitempty"`
	Limit        int      `json:"limit,omitempty"`
}

// Store defines the persistence interface for court records.
type Store interface {
	// InsertCourt creates a court and returns it with ID and timestamps set.
	InsertCourt(ctx context.Context, c *model.Court) (*model.Court, error)
	// UpdateCourt writes the non-nil fields of u. It fails if id is unknown.
	UpdateCourt(ctx context.Context, id string, u model.CourtUpdate) error
	QueryCourts(ctx context.Context, filter CourtFilter) ([]model.Court, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// ProximityFinder is implemented by stores with a native nearest-court lookup.
type ProximityFinder interface {
	// FindCourtsNear returns courts within toleranceDeg of lat/lng on both
	// axes, nearest first.
	FindCourtsNear(ctx context.Context, lat, lng, toleranceDeg float64) ([]model.Court, error)
}

func orderColumn(orderBy string) string {
	switch orderBy {
	case OrderByName:
		return "name"
	default:
		return "created_at"
	}
}

const courtColumns = `id, name, COALESCE(city, ''), latitude, longitude, indoor_outdoor, confidence_score, is_active, COALESCE(description, ''), verified_badge, is_claimed, created_at, updated_at`

type scannable interface {
	Scan(dest ...any) error
}

func scanCourt(row scannable) (*model.Court, error) {
	var c model.Court
	var indoorOutdoor string
	if err := row.Scan(
		&c.ID, &c.Name, &c.City, &c.Latitude, &c.Longitude, &indoorOutdoor,
		&c.ConfidenceScore, &c.IsActive, &c.Description, &c.VerifiedBadge, &c.IsClaimed,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.IndoorOutdoor = model.ParseIndoorOutdoor(indoorOutdoor)
	return &c, nil
}
