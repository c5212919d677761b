package harvest

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Verdict is the classification of one OSM feature.
type Verdict int

// Verdict values.
const (
	Rejected Verdict = iota
	// SportPickleball means the sport tag names pickleball.
	SportPickleball
	// TennisWithPickleball means a tennis facility whose tags mention
	// pickleball, typically shared courts with painted lines.
	TennisWithPickleball
)

// Accepted reports whether the feature should be imported.
func (v Verdict) Accepted() bool {
	return v != Rejected
}

func (v Verdict) String() string {
	switch v {
	case SportPickleball:
		return "pickleball"
	case TennisWithPickleball:
		return "tennis+pickleball"
	default:
		return "rejected"
	}
}

// Classify decides whether a feature with the given tags is a pickleball
// court. OSM allows several sports separated by semicolons, e.g.
// "tennis;pickleball"; each value is considered on its own.
func Classify(tags map[string]string) Verdict {
	sports := sportValues(tags["sport"])
	if slices.Contains(sports, "pickleball") {
		return SportPickleball
	}
	if slices.Contains(sports, "tennis") && mentionsPickleball(tags) {
		return TennisWithPickleball
	}
	return Rejected
}

func sportValues(sport string) []string {
	if sport == "" {
		return nil
	}
	fold := cases.Fold()
	parts := strings.Split(sport, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, fold.String(p))
		}
	}
	return out
}

// mentionsPickleball reports whether any tag key or value contains
// "pickleball", ignoring case. Keys count: mappers often tag shared courts
// with pickleball=yes or sport:pickleball=yes next to sport=tennis.
func mentionsPickleball(tags map[string]string) bool {
	fold := cases.Fold()
	for k, v := range tags {
		if strings.Contains(fold.String(k), "pickleball") || strings.Contains(fold.String(v), "pickleball") {
			return true
		}
	}
	return false
}
