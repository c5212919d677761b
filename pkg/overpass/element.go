package overpass

import "strconv"

// LatLon is a coordinate pair as Overpass encodes it.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Element is one OSM object in an Overpass JSON response. Nodes carry Lat and
// Lon; ways and relations carry Center when queried with "out center".
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *LatLon           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// Coordinate returns the element's own position, or its center for ways and
// relations. ok is false when neither is present.
func (e Element) Coordinate() (LatLon, bool) {
	if e.Lat != nil && e.Lon != nil {
		return LatLon{Lat: *e.Lat, Lon: *e.Lon}, true
	}
	if e.Center != nil {
		return *e.Center, true
	}
	return LatLon{}, false
}

// Ref returns the OSM reference, e.g. "way/123".
func (e Element) Ref() string {
	return e.Type + "/" + strconv.FormatInt(e.ID, 10)
}

// Tag returns the value of key, or "" when absent.
func (e Element) Tag(key string) string {
	return e.Tags[key]
}

// Response is the top-level Overpass JSON document.
type Response struct {
	Version   float64   `json:"version"`
	Generator string    `json:"generator"`
	Remark    string    `json:"remark,omitempty"`
	Elements  []Element `json:"elements"`
}
