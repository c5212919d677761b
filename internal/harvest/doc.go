// Package harvest imports pickleball courts from OpenStreetMap into the court
// store and renames generically named courts using reverse geocoding.
//
// Both entry points, Harvester.HarvestCity and Refiner.RefineAllCourts, run
// sequentially and never return an error: every outcome is reported as a
// Result carrying a success flag and the ordered progress log.
package harvest
