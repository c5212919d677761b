package model

import "time"

// IndoorOutdoor classifies where a court is played.
type IndoorOutdoor string

// IndoorOutdoor values.
const (
	Indoor  IndoorOutdoor = "indoor"
	Outdoor IndoorOutdoor = "outdoor"
)

// ParseIndoorOutdoor maps a stored value back to an IndoorOutdoor. Unknown
// values are treated as outdoor.
func ParseIndoorOutdoor(s string) IndoorOutdoor {
	if IndoorOutdoor(s) == Indoor {
		return Indoor
	}
	return Outdoor
}

// PlaceholderCourtName is used when no better name can be inferred.
const PlaceholderCourtName = "Unnamed Pickleball Court"

// Court is a single directory record.
type Court struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	City            string        `json:"city,omitempty"`
	Latitude        float64       `json:"latitude"`
	Longitude       float64       `json:"longitude"`
	IndoorOutdoor   IndoorOutdoor `json:"indoor_outdoor"`
	ConfidenceScore int           `json:"confidence_score"`
	IsActive        bool          `json:"is_active"`
	Description     string        `json:"description,omitempty"`
	VerifiedBadge   bool          `json:"verified_badge"`
	IsClaimed       bool          `json:"is_claimed"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// CourtUpdate holds the mutable fields of a Court. Nil fields are left as is.
type CourtUpdate struct {
	Name        *string `json:"name,omitempty"`
	City        *string `json:"city,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u CourtUpdate) Empty() bool {
	return u.Name == nil && u.City == nil && u.Description == nil
}

// Bounds is an inclusive latitude/longitude rectangle in degrees.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// Around returns the square of half-width tol degrees centred on lat/lng.
func Around(lat, lng, tol float64) Bounds {
	return Bounds{
		MinLat: lat - tol,
		MaxLat: lat + tol,
		MinLng: lng - tol,
		MaxLng: lng + tol,
	}
}

// Contains reports whether lat/lng lies inside b, edges included.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string { return &s }
