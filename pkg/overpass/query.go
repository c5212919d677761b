package overpass

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultQueryTimeout is the server-side budget requested in the query header.
const DefaultQueryTimeout = 25 * time.Second

// BBox is a query rectangle in degrees.
type BBox struct {
	South float64
	West  float64
	North float64
	East  float64
}

// String renders the box in Overpass order: south,west,north,east.
func (b BBox) String() string {
	return strings.Join([]string{
		formatCoord(b.South), formatCoord(b.West), formatCoord(b.North), formatCoord(b.East),
	}, ",")
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// BuildSportQuery returns a query for every node, way and relation inside
// bbox whose sport tag matches any of sports. Ways and relations come back
// with a computed center.
func BuildSportQuery(bbox BBox, sports []string, timeout time.Duration) string {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	pattern := strings.Join(sports, "|")
	box := bbox.String()

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", int(timeout.Seconds()))
	for _, kind := range []string{"node", "way", "relation"} {
		fmt.Fprintf(&b, "  %s[\"sport\"~\"%s\"](%s);\n", kind, pattern, box)
	}
	b.WriteString(");\nout center;\n")
	return b.String()
}
