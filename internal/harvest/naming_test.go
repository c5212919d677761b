package harvest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pickleballplayers/court-harvester/internal/model"
	"github.com/pickleballplayers/court-harvester/pkg/geocode"
)

func TestResolveName(t *testing.T) {
	t.Parallel()

	park := &geocode.PlaceInfo{PlaceName: "Riverside Park", City: "Testville"}

	tests := []struct {
		name     string
		tags     map[string]string
		info     *geocode.PlaceInfo
		want     string
		wantFrom NameSource
	}{
		{"tag wins", map[string]string{"name": "Alpha Courts", "operator": "City"}, park, "Alpha Courts", NameFromTag},
		{"tag trimmed", map[string]string{"name": "  Alpha Courts "}, nil, "Alpha Courts", NameFromTag},
		{"reverse place", map[string]string{"operator": "Parks Dept"}, park, "Riverside Park Pickleball Courts", NameFromReverse},
		{"operator when reverse empty", map[string]string{"operator": "Parks Dept"}, &geocode.PlaceInfo{City: "X"}, "Parks Dept Pickleball Courts", NameFromOperator},
		{"operator when reverse failed", map[string]string{"operator": "YMCA"}, nil, "YMCA Pickleball Courts", NameFromOperator},
		{"placeholder", map[string]string{"sport": "pickleball"}, nil, model.PlaceholderCourtName, NamePlaceholder},
		{"blank name falls through", map[string]string{"name": "  "}, park, "Riverside Park Pickleball Courts", NameFromReverse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, src := ResolveName(tt.tags, tt.info)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantFrom, src)
		})
	}
}

func TestNameSource_Explicit(t *testing.T) {
	assert.True(t, NameFromTag.Explicit())
	assert.False(t, NameFromReverse.Explicit())
	assert.False(t, NameFromOperator.Explicit())
	assert.False(t, NamePlaceholder.Explicit())
	assert.Equal(t, "reverse_geocode", NameFromReverse.String())
}

func TestResolveCity(t *testing.T) {
	t.Parallel()

	info := &geocode.PlaceInfo{City: "Reverse City"}
	assert.Equal(t, "Tag City", ResolveCity(map[string]string{"addr:city": "Tag City"}, info, "Query, ST"))
	assert.Equal(t, "Reverse City", ResolveCity(nil, info, "Query, ST"))
	assert.Equal(t, "Query", ResolveCity(nil, nil, " Query , ST"))
	assert.Equal(t, "Query", ResolveCity(nil, &geocode.PlaceInfo{}, "Query"))
}

func TestCityFromQuery(t *testing.T) {
	assert.Equal(t, "Chicago", CityFromQuery("Chicago, IL"))
	assert.Equal(t, "St. Louis", CityFromQuery("St. Louis, Missouri, USA"))
	assert.Equal(t, "Boise", CityFromQuery("Boise"))
	assert.Equal(t, "", CityFromQuery(""))
}

func TestResolveAddress(t *testing.T) {
	t.Parallel()

	info := &geocode.PlaceInfo{FullAddress: "Riverside Park, Testville, USA"}

	assert.Equal(t, "1 Main St, Springfield", ResolveAddress(map[string]string{"addr:full": "1 Main St, Springfield"}, info))
	assert.Equal(t, "12 Elm St, Testville", ResolveAddress(map[string]string{
		"addr:housenumber": "12", "addr:street": "Elm St", "addr:city": "Testville",
	}, info))
	assert.Equal(t, "Elm St", ResolveAddress(map[string]string{"addr:street": "Elm St"}, nil))
	assert.Equal(t, "Riverside Park, Testville, USA", ResolveAddress(map[string]string{}, info))
	assert.Equal(t, "", ResolveAddress(nil, nil))
}
