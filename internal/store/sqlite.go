package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/pickleballplayers/court-harvester/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It has no spatial
// index, so it does not implement ProximityFinder.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS courts (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	city             TEXT,
	latitude         REAL NOT NULL,
	longitude        REAL NOT NULL,
	indoor_outdoor   TEXT NOT NULL DEFAULT 'outdoor',
	confidence_score INTEGER NOT NULL DEFAULT 0,
	is_active        INTEGER NOT NULL DEFAULT 1,
	description      TEXT,
	verified_badge   INTEGER NOT NULL DEFAULT 0,
	is_claimed       INTEGER NOT NULL DEFAULT 0,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_courts_lat_lng ON courts(latitude, longitude);
CREATE INDEX IF NOT EXISTS idx_courts_name ON courts(name);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InsertCourt(ctx context.Context, c *model.Court) (*model.Court, error) {
	if c == nil {
		return nil, eris.New("sqlite: insert nil court")
	}
	out := *c
	out.ID = uuid.New().String()
	out.CreatedAt = time.Now().UTC()
	out.UpdatedAt = out.CreatedAt
	if out.IndoorOutdoor == "" {
		out.IndoorOutdoor = model.Outdoor
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courts (id, name, city, latitude, longitude, indoor_outdoor, confidence_score, is_active, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		out.ID, out.Name, out.City, out.Latitude, out.Longitude, string(out.IndoorOutdoor),
		out.ConfidenceScore, out.IsActive, out.Description, out.CreatedAt, out.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert court %q", c.Name)
	}
	return &out, nil
}

func (s *SQLiteStore) UpdateCourt(ctx context.Context, id string, u model.CourtUpdate) error {
	if u.Empty() {
		return nil
	}

	var sets []string
	var args []any
	for _, f := range []struct {
		col string
		v   *string
	}{
		{"name", u.Name},
		{"city", u.City},
		{"description", u.Description},
	} {
		if f.v != nil {
			sets = append(sets, f.col+" = ?")
			args = append(args, *f.v)
		}
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE courts SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update court %s", id)
	}
	return checkRowsAffected(res, "court", id)
}

func (s *SQLiteStore) QueryCourts(ctx context.Context, filter CourtFilter) ([]model.Court, error) {
	query := `SELECT ` + courtColumns + ` FROM courts WHERE 1=1`
	var args []any

	if b := filter.Bounds; b != nil {
		query += ` AND latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?`
		args = append(args, b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
	}
	if len(filter.NamePatterns) > 0 {
		// SQLite LIKE is case-insensitive for ASCII.
		likes := make([]string, len(filter.NamePatterns))
		for i, p := range filter.NamePatterns {
			likes[i] = "name LIKE ?"
			args = append(args, p)
		}
		query += ` AND (` + strings.Join(likes, " OR ") + `)`
	}
	if filter.ActiveOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY ` + orderColumn(filter.OrderBy)
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query courts")
	}
	defer rows.Close() //nolint:errcheck

	var courts []model.Court
	for rows.Next() {
		c, err := scanCourt(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan court")
		}
		courts = append(courts, *c)
	}
	return courts, eris.Wrap(rows.Err(), "sqlite: query courts rows")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}
