package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/pickleballplayers/court-harvester/internal/db"
	"github.com/pickleballplayers/court-harvester/internal/model"
)

// PostgresStore implements Store and ProximityFinder on PostGIS.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

var _ ProximityFinder = (*PostgresStore)(nil)

// NewPostgres connects to connString and returns a PostgresStore.
func NewPostgres(ctx context.Context, connString string, poolCfg *db.PoolConfig) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, connString, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Close does not close it.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS courts (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name             TEXT NOT NULL,
	city             TEXT,
	latitude         DOUBLE PRECISION NOT NULL,
	longitude        DOUBLE PRECISION NOT NULL,
	geom             geometry(Point, 4326),
	indoor_outdoor   TEXT NOT NULL DEFAULT 'outdoor',
	confidence_score INTEGER NOT NULL DEFAULT 0,
	is_active        BOOLEAN NOT NULL DEFAULT true,
	description      TEXT,
	verified_badge   BOOLEAN NOT NULL DEFAULT false,
	is_claimed       BOOLEAN NOT NULL DEFAULT false,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_courts_geom ON courts USING GIST (geom);
CREATE INDEX IF NOT EXISTS idx_courts_lat_lng ON courts (latitude, longitude);
CREATE INDEX IF NOT EXISTS idx_courts_name ON courts (name);

CREATE OR REPLACE FUNCTION find_court_by_location(
	lat double precision,
	lng double precision,
	tolerance double precision DEFAULT 0.0005
) RETURNS SETOF courts
LANGUAGE sql STABLE AS $$
	SELECT *
	FROM courts c
	WHERE c.geom && ST_MakeEnvelope(lng - tolerance, lat - tolerance, lng + tolerance, lat + tolerance, 4326)
	ORDER BY c.geom <-> ST_SetSRID(ST_MakePoint(lng, lat), 4326)
$$;
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// encodePoint returns the EWKB for a WGS84 point.
func encodePoint(lat, lng float64) ([]byte, error) {
	p := geom.NewPointFlat(geom.XY, []float64{lng, lat}).SetSRID(4326)
	data, err := ewkb.Marshal(p, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: encode point")
	}
	return data, nil
}

func (s *PostgresStore) InsertCourt(ctx context.Context, c *model.Court) (*model.Court, error) {
	if c == nil {
		return nil, eris.New("postgres: insert nil court")
	}
	pt, err := encodePoint(c.Latitude, c.Longitude)
	if err != nil {
		return nil, err
	}

	out := *c
	out.ID = uuid.New().String()
	out.CreatedAt = time.Now().UTC()
	out.UpdatedAt = out.CreatedAt
	if out.IndoorOutdoor == "" {
		out.IndoorOutdoor = model.Outdoor
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO courts (id, name, city, latitude, longitude, geom, indoor_outdoor, confidence_score, is_active, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, ST_GeomFromEWKB($6), $7, $8, $9, $10, $11, $12)`,
		out.ID, out.Name, out.City, out.Latitude, out.Longitude, pt,
		string(out.IndoorOutdoor), out.ConfidenceScore, out.IsActive, out.Description,
		out.CreatedAt, out.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert court %q", c.Name)
	}
	return &out, nil
}

func (s *PostgresStore) UpdateCourt(ctx context.Context, id string, u model.CourtUpdate) error {
	if u.Empty() {
		return nil
	}

	var sets []string
	var args []any
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("name", u.Name)
	add("city", u.City)
	add("description", u.Description)

	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE courts SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: update court %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("court not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) QueryCourts(ctx context.Context, filter CourtFilter) ([]model.Court, error) {
	query := `SELECT ` + courtColumns + ` FROM courts WHERE true`
	var args []any

	if b := filter.Bounds; b != nil {
		args = append(args, b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
		n := len(args)
		query += fmt.Sprintf(` AND latitude BETWEEN $%d AND $%d AND longitude BETWEEN $%d AND $%d`, n-3, n-2, n-1, n)
	}
	if len(filter.NamePatterns) > 0 {
		args = append(args, filter.NamePatterns)
		query += fmt.Sprintf(` AND name ILIKE ANY($%d)`, len(args))
	}
	if filter.ActiveOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY ` + orderColumn(filter.OrderBy)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	return s.queryCourts(ctx, "query courts", query, args...)
}

// FindCourtsNear calls the find_court_by_location function created by Migrate.
func (s *PostgresStore) FindCourtsNear(ctx context.Context, lat, lng, toleranceDeg float64) ([]model.Court, error) {
	return s.queryCourts(ctx, "find courts near",
		`SELECT `+courtColumns+` FROM find_court_by_location($1, $2, $3)`,
		lat, lng, toleranceDeg,
	)
}

func (s *PostgresStore) queryCourts(ctx context.Context, op, query string, args ...any) ([]model.Court, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: %s", op)
	}
	defer rows.Close()

	var courts []model.Court
	for rows.Next() {
		c, err := scanCourt(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan court")
		}
		courts = append(courts, *c)
	}
	return courts, eris.Wrapf(rows.Err(), "postgres: %s rows", op)
}
