package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/pickleballplayers/court-harvester/internal/harvest"
	"github.com/pickleballplayers/court-harvester/internal/resilience"
	"github.com/pickleballplayers/court-harvester/internal/store"
	"github.com/pickleballplayers/court-harvester/pkg/geocode"
	"github.com/pickleballplayers/court-harvester/pkg/overpass"
)

// harvestEnv holds the clients shared by the harvest, refine and serve commands.
type harvestEnv struct {
	Store     store.Store
	Harvester *harvest.Harvester
	Refiner   *harvest.Refiner
}

// Close releases the store.
func (he *harvestEnv) Close() {
	if he.Store != nil {
		_ = he.Store.Close()
	}
}

// initStore opens the configured store. Callers migrate it as needed.
// nominatimSpacingNote is appended to the help of every command that geocodes.
const nominatimSpacingNote = `Nominatim requests are spaced nominatim.min_interval_ms apart within one
process only. The first request is sent immediately, so do not run another
process against Nominatim at the same time or start one right after another
finishes.`

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "courts.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore validates config for mode, opens the store and applies migrations.
func openStore(ctx context.Context, mode string) (store.Store, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initHarvest wires the geocoder, the Overpass client and the store into a
// Harvester and Refiner. Both share one geocoder so the Nominatim rate limit
// holds across them. Callers should defer env.Close().
func initHarvest(ctx context.Context, mode string) (*harvestEnv, error) {
	st, err := openStore(ctx, mode)
	if err != nil {
		return nil, err
	}

	geo := geocode.NewClient(
		geocode.WithBaseURL(cfg.Nominatim.BaseURL),
		geocode.WithUserAgent(cfg.Nominatim.UserAgent),
		geocode.WithMinInterval(cfg.Nominatim.MinInterval()),
		geocode.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Nominatim.TimeoutSecs) * time.Second}),
	)

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Overpass.MaxAttempts
	features := overpass.NewClient(
		overpass.WithURL(cfg.Overpass.URL),
		overpass.WithUserAgent(cfg.Nominatim.UserAgent),
		overpass.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Overpass.HTTPTimeoutSecs) * time.Second}),
		overpass.WithRetry(retry),
	)

	opts := harvest.DefaultOptions()
	opts.ToleranceDeg = cfg.Harvest.ToleranceDeg
	opts.ExplicitConfidence = cfg.Harvest.ExplicitConfidence
	opts.InferredConfidence = cfg.Harvest.InferredConfidence
	opts.TagSnapshotLimit = cfg.Harvest.TagSnapshotLimit
	if cfg.Overpass.QueryTimeoutSecs > 0 {
		opts.QueryTimeout = time.Duration(cfg.Overpass.QueryTimeoutSecs) * time.Second
	}

	return &harvestEnv{
		Store:     st,
		Harvester: harvest.NewHarvester(geo, features, st, opts),
		Refiner:   harvest.NewRefiner(geo, st),
	}, nil
}

// printResult writes the run log to out and reports a failed run as an error.
func printResult(out io.Writer, what string, res harvest.Result) error {
	for _, line := range res.Log {
		_, _ = fmt.Fprintln(out, line)
	}
	if !res.Success {
		return eris.Errorf("%s failed", what)
	}
	return nil
}
