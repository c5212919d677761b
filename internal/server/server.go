// Package server exposes the harvest and refinement runs over HTTP for the
// admin dashboard.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pickleballplayers/court-harvester/internal/harvest"
	"github.com/pickleballplayers/court-harvester/internal/model"
	"github.com/pickleballplayers/court-harvester/internal/store"
)

// Harvester runs one city harvest.
type Harvester interface {
	HarvestCity(ctx context.Context, city string) harvest.Result
}

// Refiner runs the generic-name sweep.
type Refiner interface {
	RefineAllCourts(ctx context.Context) harvest.Result
}

// CourtLister lists stored courts.
type CourtLister interface {
	QueryCourts(ctx context.Context, filter store.CourtFilter) ([]model.Court, error)
}

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	// AdminToken, when set, must be sent as "Authorization: Bearer <token>"
	// on every /api/admin request.
	AdminToken string
}

const (
	defaultListLimit = 100
	maxListLimit     = 1000
	shutdownTimeout  = 15 * time.Second
)

type handlers struct {
	harvester Harvester
	refiner   Refiner
	courts    CourtLister
}

// NewRouter builds the HTTP handler. Runs are synchronous: the response is
// written when the run finishes, and a dropped client cancels the run.
func NewRouter(h Harvester, rf Refiner, courts CourtLister, opts Options) http.Handler {
	hs := &handlers{harvester: h, refiner: rf, courts: courts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", hs.health)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(bearerAuth(opts.AdminToken))
		r.Post("/harvest", hs.harvest)
		r.Post("/refine", hs.refine)
		r.Get("/courts", hs.listCourts)
	})

	return r
}

func (hs *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (hs *handlers) harvest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		City string `json:"city"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	city := strings.TrimSpace(req.City)
	if city == "" {
		writeError(w, http.StatusBadRequest, "city is required")
		return
	}
	writeJSON(w, http.StatusOK, hs.harvester.HarvestCity(r.Context(), city))
}

func (hs *handlers) refine(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, hs.refiner.RefineAllCourts(r.Context()))
}

func (hs *handlers) listCourts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.CourtFilter{Limit: defaultListLimit, OrderBy: store.OrderByName}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxListLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxListLimit))
			return
		}
		filter.Limit = n
	}
	if generic, _ := strconv.ParseBool(q.Get("generic")); generic {
		filter.NamePatterns = harvest.GenericNamePatterns
	}
	if active, _ := strconv.ParseBool(q.Get("active")); active {
		filter.ActiveOnly = true
	}

	courts, err := hs.courts.QueryCourts(r.Context(), filter)
	if err != nil {
		zap.L().Error("list courts failed", zap.String("component", "server"), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list courts")
		return
	}
	if courts == nil {
		courts = []model.Court{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"courts": courts, "count": len(courts)})
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		want := []byte("Bearer " + token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get("Authorization"))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("component", "server"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.String("component", "server"), zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Serve runs handler on ln until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server: serve")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down server", zap.String("component", "server"))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return eris.Wrap(srv.Shutdown(shutdownCtx), "server: shutdown")
	})
	return g.Wait()
}

// ListenAndServe listens on addr and calls Serve.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return eris.Wrapf(err, "server: listen %s", addr)
	}
	zap.L().Info("starting server", zap.String("component", "server"), zap.String("addr", ln.Addr().String()))
	return Serve(ctx, ln, handler)
}
