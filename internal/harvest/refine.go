package harvest

import (
	"context"
	"strings"

	"github.com/pickleballplayers/court-harvester/internal/model"
	"github.com/pickleballplayers/court-harvester/internal/store"
	"github.com/pickleballplayers/court-harvester/pkg/geocode"
)

// GenericNamePatterns select courts whose names carry no real place
// information. Matching is case-insensitive.
var GenericNamePatterns = []string{
	model.PlaceholderCourtName + "%",
	"Court on%",
	"Public Park Courts%",
	"%Tennis Court%",
}

// Refiner renames generically named courts after the place they sit in.
type Refiner struct {
	geocoder geocode.Client
	store    store.Store
}

// NewRefiner creates a Refiner.
func NewRefiner(g geocode.Client, st store.Store) *Refiner {
	return &Refiner{geocoder: g, store: st}
}

// RefineAllCourts reverse-geocodes every court matching GenericNamePatterns
// and renames it to "<place> Pickleball Courts" when that differs from the
// current name. A second run over unchanged data renames nothing.
func (r *Refiner) RefineAllCourts(ctx context.Context) Result {
	run := newLog("harvest.refine")
	run.Addf("Starting refinement of generic court names...")

	courts, err := r.store.QueryCourts(ctx, store.CourtFilter{
		NamePatterns: GenericNamePatterns,
		OrderBy:      store.OrderByCreatedAt,
	})
	if err != nil {
		run.Addf("Failed to load courts: %v", err)
		return run.result(false)
	}
	if len(courts) == 0 {
		run.Addf("No generic-named courts found to refine.")
		return run.result(true)
	}
	run.Addf("Found %d courts with generic names. Resolving...", len(courts))

	renamed := 0
	for i, c := range courts {
		if err := ctx.Err(); err != nil {
			run.Addf("Refinement interrupted after %d of %d courts: %v", i, len(courts), err)
			return run.result(false)
		}
		if r.refineOne(ctx, run, c) {
			renamed++
		}
	}

	run.Addf("Refinement complete. Renamed %d of %d courts.", renamed, len(courts))
	return run.result(true)
}

func (r *Refiner) refineOne(ctx context.Context, run *Log, c model.Court) bool {
	id := shortID(c.ID)

	info := r.geocoder.Reverse(ctx, c.Latitude, c.Longitude)
	if info == nil {
		run.Addf("No improvement for [%s] %s: reverse geocode failed", id, c.Name)
		return false
	}
	place := strings.TrimSpace(info.PlaceName)
	if place == "" {
		run.Addf("No improvement for [%s] %s: no place name found", id, c.Name)
		return false
	}
	newName := place + NameSuffix
	if newName == c.Name {
		run.Addf("No improvement for [%s] %s: name unchanged", id, c.Name)
		return false
	}

	upd := model.CourtUpdate{Name: model.StrPtr(newName)}
	if strings.TrimSpace(c.City) == "" && info.City != "" {
		upd.City = model.StrPtr(info.City)
	}
	if info.FullAddress != "" {
		upd.Description = model.StrPtr(c.Description + " | Refined Addr: " + info.FullAddress)
	}
	if err := r.store.UpdateCourt(ctx, c.ID, upd); err != nil {
		run.Addf("DB error renaming [%s] %s: %v", id, c.Name, err)
		return false
	}
	run.Addf("Renamed [%s]: %s -> %s", id, c.Name, newName)
	return true
}
