package harvest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pickleballplayers/court-harvester/internal/model"
	"github.com/pickleballplayers/court-harvester/internal/store"
	"github.com/pickleballplayers/court-harvester/pkg/geocode"
	"github.com/pickleballplayers/court-harvester/pkg/overpass"
)

// --- Geocoder Mock ---

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Search(ctx context.Context, query string) (*geocode.Place, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geocode.Place), args.Error(1)
}

func (m *mockGeocoder) Reverse(ctx context.Context, lat, lng float64) *geocode.PlaceInfo {
	args := m.Called(ctx, lat, lng)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*geocode.PlaceInfo)
}

// --- Overpass Fake ---

type fakeOverpass struct {
	resp    *overpass.Response
	err     error
	queries []string
}

func (f *fakeOverpass) Query(_ context.Context, q string) (*overpass.Response, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

// --- Store Fake ---

type updateCall struct {
	ID     string
	Update model.CourtUpdate
}

// memStore is an in-memory store.Store without proximity support.
type memStore struct {
	mu        sync.Mutex
	courts    []model.Court
	inserted  []model.Court
	updates   []updateCall
	queries   []store.CourtFilter
	nextID    int
	insertErr error
	updateErr error
	queryErr  error
}

func (s *memStore) InsertCourt(_ context.Context, c *model.Court) (*model.Court, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	s.nextID++
	out := *c
	out.ID = fmt.Sprintf("court-%04d", s.nextID)
	s.courts = append(s.courts, out)
	s.inserted = append(s.inserted, out)
	return &out, nil
}

func (s *memStore) UpdateCourt(_ context.Context, id string, u model.CourtUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	for i := range s.courts {
		if s.courts[i].ID != id {
			continue
		}
		if u.Name != nil {
			s.courts[i].Name = *u.Name
		}
		if u.City != nil {
			s.courts[i].City = *u.City
		}
		if u.Description != nil {
			s.courts[i].Description = *u.Description
		}
		s.updates = append(s.updates, updateCall{ID: id, Update: u})
		return nil
	}
	return errors.New("court not found: " + id)
}

func (s *memStore) QueryCourts(_ context.Context, f store.CourtFilter) ([]model.Court, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, f)
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	var out []model.Court
	for _, c := range s.courts {
		if f.Bounds != nil && !f.Bounds.Contains(c.Latitude, c.Longitude) {
			continue
		}
		if len(f.NamePatterns) > 0 && !matchesAny(c.Name, f.NamePatterns) {
			continue
		}
		out = append(out, c)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) Migrate(context.Context) error { return nil }
func (s *memStore) Close() error                  { return nil }

func (s *memStore) seed(c model.Court) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courts = append(s.courts, c)
}

// proximityStore adds a FindCourtsNear with a scripted result.
type proximityStore struct {
	*memStore
	near      []model.Court
	nearErr   error
	nearCalls int
	lastTol   float64
}

func (s *proximityStore) FindCourtsNear(_ context.Context, _, _, tol float64) ([]model.Court, error) {
	s.nearCalls++
	s.lastTol = tol
	return s.near, s.nearErr
}

// matchesAny emulates case-insensitive LIKE for patterns using only %.
func matchesAny(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		p = strings.ToLower(p)
		switch {
		case strings.HasPrefix(p, "%") && strings.HasSuffix(p, "%"):
			if strings.Contains(lower, strings.Trim(p, "%")) {
				return true
			}
		case strings.HasSuffix(p, "%"):
			if strings.HasPrefix(lower, strings.TrimSuffix(p, "%")) {
				return true
			}
		default:
			if lower == p {
				return true
			}
		}
	}
	return false
}

func newSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "courts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func fptr(f float64) *float64 { return &f }

func node(id int64, lat, lon float64, tags map[string]string) overpass.Element {
	return overpass.Element{Type: "node", ID: id, Lat: fptr(lat), Lon: fptr(lon), Tags: tags}
}

func way(id int64, lat, lon float64, tags map[string]string) overpass.Element {
	return overpass.Element{Type: "way", ID: id, Center: &overpass.LatLon{Lat: lat, Lon: lon}, Tags: tags}
}
