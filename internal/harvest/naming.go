package harvest

import (
	"strings"

	"github.com/pickleballplayers/court-harvester/internal/model"
	"github.com/pickleballplayers/court-harvester/pkg/geocode"
)

// NameSuffix is appended to place and operator names.
const NameSuffix = " Pickleball Courts"

// NameSource records where a court name came from.
type NameSource int

// NameSource values, in resolution order.
const (
	NameFromTag NameSource = iota
	NameFromReverse
	NameFromOperator
	NamePlaceholder
)

func (s NameSource) String() string {
	switch s {
	case NameFromTag:
		return "tag"
	case NameFromReverse:
		return "reverse_geocode"
	case NameFromOperator:
		return "operator"
	default:
		return "placeholder"
	}
}

// Explicit reports whether the name was given by the mapper rather than inferred.
func (s NameSource) Explicit() bool {
	return s == NameFromTag
}

// ResolveName picks a court name: the name tag, then the reverse-geocoded
// place, then the operator, then a placeholder. info may be nil.
func ResolveName(tags map[string]string, info *geocode.PlaceInfo) (string, NameSource) {
	if name := strings.TrimSpace(tags["name"]); name != "" {
		return name, NameFromTag
	}
	if info != nil && strings.TrimSpace(info.PlaceName) != "" {
		return strings.TrimSpace(info.PlaceName) + NameSuffix, NameFromReverse
	}
	if op := strings.TrimSpace(tags["operator"]); op != "" {
		return op + NameSuffix, NameFromOperator
	}
	return model.PlaceholderCourtName, NamePlaceholder
}

// ResolveCity picks a city: addr:city, then the reverse-geocoded city, then
// the first comma-separated part of the harvest query.
func ResolveCity(tags map[string]string, info *geocode.PlaceInfo, query string) string {
	if city := strings.TrimSpace(tags["addr:city"]); city != "" {
		return city
	}
	if info != nil && info.City != "" {
		return info.City
	}
	return CityFromQuery(query)
}

// CityFromQuery returns the part of a query like "Austin, TX" before the first comma.
func CityFromQuery(query string) string {
	city, _, _ := strings.Cut(query, ",")
	return strings.TrimSpace(city)
}

// ResolveAddress builds a street address from addr:* tags, falling back to
// the reverse-geocoded display address. It returns "" when neither exists.
func ResolveAddress(tags map[string]string, info *geocode.PlaceInfo) string {
	if full := strings.TrimSpace(tags["addr:full"]); full != "" {
		return full
	}
	street := strings.TrimSpace(strings.Join([]string{
		strings.TrimSpace(tags["addr:housenumber"]),
		strings.TrimSpace(tags["addr:street"]),
	}, " "))
	if street != "" {
		if city := strings.TrimSpace(tags["addr:city"]); city != "" {
			return street + ", " + city
		}
		return street
	}
	if info != nil {
		return info.FullAddress
	}
	return ""
}
