package harvest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pickleballplayers/court-harvester/internal/model"
	"github.com/pickleballplayers/court-harvester/internal/store"
	"github.com/pickleballplayers/court-harvester/pkg/geocode"
	"github.com/pickleballplayers/court-harvester/pkg/overpass"
)

// Options tunes a Harvester.
type Options struct {
	// ToleranceDeg is the half-width of the duplicate search box in degrees.
	ToleranceDeg float64
	// ExplicitConfidence is stored for courts named by their OSM name tag.
	ExplicitConfidence int
	// InferredConfidence is stored for courts whose name was inferred.
	InferredConfidence int
	// TagSnapshotLimit caps the raw tag JSON kept in descriptions, in runes.
	TagSnapshotLimit int
	// QueryTimeout is the server-side Overpass budget.
	QueryTimeout time.Duration
	// Sports are matched against the OSM sport tag in the Overpass query.
	Sports []string
}

// DefaultOptions returns the standard harvest settings.
func DefaultOptions() Options {
	return Options{
		ToleranceDeg:       DefaultToleranceDeg,
		ExplicitConfidence: 90,
		InferredConfidence: 60,
		TagSnapshotLimit:   100,
		QueryTimeout:       overpass.DefaultQueryTimeout,
		Sports:             []string{"pickleball", "tennis"},
	}
}

// Candidate is an accepted OSM feature on its way to the store.
type Candidate struct {
	Ref        string
	Tags       map[string]string
	Lat        float64
	Lng        float64
	Verdict    Verdict
	Name       string
	NameSource NameSource
	City       string
	Address    string
}

// Harvester imports courts for one city at a time.
type Harvester struct {
	geocoder geocode.Client
	features overpass.Client
	store    store.Store
	matcher  *Matcher
	opts     Options
}

// NewHarvester creates a Harvester. Zero-valued options fall back to DefaultOptions.
func NewHarvester(g geocode.Client, o overpass.Client, st store.Store, opts Options) *Harvester {
	def := DefaultOptions()
	if opts.ToleranceDeg <= 0 {
		opts.ToleranceDeg = def.ToleranceDeg
	}
	if opts.ExplicitConfidence == 0 {
		opts.ExplicitConfidence = def.ExplicitConfidence
	}
	if opts.InferredConfidence == 0 {
		opts.InferredConfidence = def.InferredConfidence
	}
	if opts.TagSnapshotLimit == 0 {
		opts.TagSnapshotLimit = def.TagSnapshotLimit
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = def.QueryTimeout
	}
	if len(opts.Sports) == 0 {
		opts.Sports = def.Sports
	}
	return &Harvester{
		geocoder: g,
		features: o,
		store:    st,
		matcher:  NewMatcher(st, opts.ToleranceDeg),
		opts:     opts,
	}
}

type harvestStats struct {
	created, updated, notPickleball, noCoords, failed int
}

// HarvestCity geocodes cityName, fetches candidate sport features inside its
// bounding box and inserts or updates one court per accepted feature.
// Writes are not batched: a run that fails midway keeps what it wrote.
func (h *Harvester) HarvestCity(ctx context.Context, cityName string) Result {
	run := newLog("harvest", zap.String("city", cityName))
	run.Addf("Starting harvest for: %s", cityName)

	if strings.TrimSpace(cityName) == "" {
		run.Addf("No city given.")
		return run.result(false)
	}

	run.Addf("Geocoding %q...", cityName)
	place, err := h.geocoder.Search(ctx, cityName)
	if errors.Is(err, geocode.ErrNotFound) {
		run.Addf("City not found: %s", cityName)
		return run.result(false)
	}
	if err != nil {
		run.Addf("Geocoding failed: %v", err)
		return run.result(false)
	}

	bb := place.BBox
	run.Addf("Found: %s", place.DisplayName)
	run.Addf("BBox: S %.5f, W %.5f, N %.5f, E %.5f", bb.South, bb.West, bb.North, bb.East)

	query := overpass.BuildSportQuery(
		overpass.BBox{South: bb.South, West: bb.West, North: bb.North, East: bb.East},
		h.opts.Sports,
		h.opts.QueryTimeout,
	)
	run.Addf("Querying OpenStreetMap (Overpass)...")
	resp, err := h.features.Query(ctx, query)
	if err != nil {
		run.Addf("Overpass query failed: %v", err)
		return run.result(false)
	}
	run.Addf("Found %d potential locations. Processing...", len(resp.Elements))

	var st harvestStats
	for i, el := range resp.Elements {
		if err := ctx.Err(); err != nil {
			run.Addf("Harvest interrupted after %d of %d locations: %v", i, len(resp.Elements), err)
			return run.result(false)
		}
		h.processElement(ctx, run, el, cityName, &st)
	}

	run.Addf("Import complete. Processed %d courts (%d new, %d updated). Skipped %d non-pickleball, %d without coordinates. %d failed.",
		st.created+st.updated, st.created, st.updated, st.notPickleball, st.noCoords, st.failed)
	return run.result(true)
}

func (h *Harvester) processElement(ctx context.Context, run *Log, el overpass.Element, cityName string, st *harvestStats) {
	verdict := Classify(el.Tags)
	if !verdict.Accepted() {
		st.notPickleball++
		run.Addf("Skipped %s: not a pickleball court (sport=%s)", el.Ref(), el.Tag("sport"))
		return
	}

	coord, ok := el.Coordinate()
	if !ok {
		st.noCoords++
		run.Addf("Skipped %s: no coordinates", el.Ref())
		return
	}

	cand := h.buildCandidate(ctx, el, verdict, coord, cityName)

	existing, err := h.matcher.FindExisting(ctx, cand.Lat, cand.Lng)
	if err != nil {
		st.failed++
		run.Addf("DB error for %s: %v", cand.Name, err)
		return
	}

	if existing != nil {
		upd := model.CourtUpdate{
			Description: model.StrPtr(h.describe(cand, true)),
		}
		// An inferred placeholder never overwrites a real name.
		if cand.NameSource != NamePlaceholder || existing.Name == model.PlaceholderCourtName {
			upd.Name = model.StrPtr(cand.Name)
		}
		if cand.City != "" {
			upd.City = model.StrPtr(cand.City)
		}
		if err := h.store.UpdateCourt(ctx, existing.ID, upd); err != nil {
			st.failed++
			run.Addf("DB error updating %s: %v", cand.Name, err)
			return
		}
		st.updated++
		run.Addf("Updating info for: %s (matched %s, %.0fm away)",
			cand.Name, shortID(existing.ID),
			distanceMeters(cand.Lat, cand.Lng, existing.Latitude, existing.Longitude))
		return
	}

	court := &model.Court{
		Name:            cand.Name,
		City:            cand.City,
		Latitude:        cand.Lat,
		Longitude:       cand.Lng,
		IndoorOutdoor:   indoorOutdoor(cand.Tags),
		ConfidenceScore: h.confidence(cand.NameSource),
		IsActive:        true,
		Description:     h.describe(cand, false),
	}
	if _, err := h.store.InsertCourt(ctx, court); err != nil {
		st.failed++
		run.Addf("DB error inserting %s: %v", cand.Name, err)
		return
	}
	st.created++
	run.Addf("New court: %s (%s)", cand.Name, cand.Ref)
}

// buildCandidate resolves name, city and address. The reverse geocoder is
// only consulted when the feature has no name tag.
func (h *Harvester) buildCandidate(ctx context.Context, el overpass.Element, v Verdict, coord overpass.LatLon, cityName string) Candidate {
	var info *geocode.PlaceInfo
	if strings.TrimSpace(el.Tag("name")) == "" {
		info = h.geocoder.Reverse(ctx, coord.Lat, coord.Lon)
	}
	name, src := ResolveName(el.Tags, info)
	return Candidate{
		Ref:        el.Ref(),
		Tags:       el.Tags,
		Lat:        coord.Lat,
		Lng:        coord.Lon,
		Verdict:    v,
		Name:       name,
		NameSource: src,
		City:       ResolveCity(el.Tags, info, cityName),
		Address:    ResolveAddress(el.Tags, info),
	}
}

func (h *Harvester) confidence(src NameSource) int {
	if src.Explicit() {
		return h.opts.ExplicitConfidence
	}
	return h.opts.InferredConfidence
}

func (h *Harvester) describe(c Candidate, updated bool) string {
	addr := c.Address
	if addr == "" {
		addr = "unknown"
	}
	source := "Imported from OSM"
	if updated {
		source = "Imported from OSM (Updated)"
	}
	desc := fmt.Sprintf("%s. Source: %s. Addr: %s.", source, c.Ref, addr)
	if snap := tagSnapshot(c.Tags, h.opts.TagSnapshotLimit); snap != "" {
		desc += " Tags: " + snap
	}
	return desc
}

// tagSnapshot renders tags as JSON with sorted keys, cut to limit runes.
// A negative limit disables the snapshot.
func tagSnapshot(tags map[string]string, limit int) string {
	if limit < 0 || len(tags) == 0 {
		return ""
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return ""
	}
	r := []rune(string(data))
	if limit > 0 && len(r) > limit {
		r = r[:limit]
	}
	return string(r)
}

func indoorOutdoor(tags map[string]string) model.IndoorOutdoor {
	if strings.EqualFold(strings.TrimSpace(tags["indoor"]), "yes") {
		return model.Indoor
	}
	return model.Outdoor
}
