package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/crowdmap-service/internal/adapter/besttime"
	"github.com/couchcryptid/crowdmap-service/internal/domain"
	"github.com/couchcryptid/crowdmap-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PlaceFetcher loads places around a coordinate.
type PlaceFetcher interface {
	FetchPlaces(ctx context.Context, lat, lng float64, filter string) ([]domain.Place, error)
}

// CrowdTracker is the recompute pipeline as seen by the API.
type CrowdTracker interface {
	sharedobs.ReadinessChecker
	Latest() (pipeline.Snapshot, bool)
	Select(sel pipeline.Selection) (pipeline.Selection, error)
}

// BestTime proxies live foot-traffic lookups and venue searches.
type BestTime interface {
	Live(ctx context.Context, venueName, venueAddress string) (besttime.LiveResult, error)
	SearchVenues(ctx context.Context, s besttime.VenueSearch) (json.RawMessage, error)
}

// Deps are the collaborators behind the API routes. A nil Geocoder or
// BestTime makes its routes report missing configuration.
type Deps struct {
	Places    PlaceFetcher
	Estimator *domain.Estimator
	Tracker   CrowdTracker
	Geocoder  domain.Geocoder
	BestTime  BestTime
}

// Server exposes the crowd API alongside health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the health routes and the /api routes.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Tracker))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/places", s.handlePlaces)
	mux.HandleFunc("GET /api/crowd", s.handleCrowd)
	mux.HandleFunc("GET /api/crowd/current", s.handleCrowdCurrent)
	mux.HandleFunc("POST /api/crowd/selection", s.handleSelection)
	mux.HandleFunc("GET /api/describe", s.handleDescribe)
	mux.HandleFunc("GET /api/legend", s.handleLegend)
	mux.HandleFunc("GET /api/geocode", s.handleGeocode)
	mux.HandleFunc("GET /api/geocode/reverse", s.handleReverseGeocode)
	mux.HandleFunc("GET /api/besttime", s.handleBestTimeLive)
	mux.HandleFunc("POST /api/besttime", s.handleBestTimeSearch)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
