// Package places resolves the list of venues shown around a location. It
// tries a live POI provider once, falls back to synthetic demo venues, and
// optionally overlays live foot traffic.
package places

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/crowdmap-service/internal/domain"
	"github.com/couchcryptid/crowdmap-service/internal/observability"
)

// MaxPlaces caps the number of live venues returned by one fetch.
const MaxPlaces = 20

// Cache stores place lists between fetches. A miss reports ok=false.
type Cache interface {
	Get(ctx context.Context, key string) ([]domain.Place, bool, error)
	Set(ctx context.Context, key string, places []domain.Place) error
}

// Service fetches places for a location and filter.
type Service struct {
	searcher    domain.PlaceSearcher
	cache       Cache
	occupancy   domain.OccupancyProvider
	enrichLimit int
	rng         domain.RandSource
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithSearcher sets the live POI provider. Without one every fetch is synthetic.
func WithSearcher(s domain.PlaceSearcher) Option {
	return func(svc *Service) { svc.searcher = s }
}

// WithCache sets the place-list cache.
func WithCache(c Cache) Option {
	return func(svc *Service) { svc.cache = c }
}

// WithOccupancy enables live foot-traffic enrichment for up to limit places per fetch.
func WithOccupancy(p domain.OccupancyProvider, limit int) Option {
	return func(svc *Service) {
		svc.occupancy = p
		svc.enrichLimit = limit
	}
}

// WithRandSource overrides the randomness used for synthetic attributes.
func WithRandSource(r domain.RandSource) Option {
	return func(svc *Service) { svc.rng = r }
}

// NewService creates a place Service.
func NewService(logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Service {
	s := &Service{
		rng:     domain.NewRandSource(),
		metrics: metrics,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CacheKey identifies a fetch by rounded location and filter.
func CacheKey(lat, lng float64, filter string) string {
	return fmt.Sprintf("places:%.3f,%.3f:%s", lat, lng, filter)
}

// FetchPlaces returns the venues around lat/lng matching filter ("all" or a
// place type). Upstream failures never surface; the result degrades to
// synthetic places instead. Only an invalid request or a canceled context
// returns an error.
func (s *Service) FetchPlaces(ctx context.Context, lat, lng float64, filter string) ([]domain.Place, error) {
	filter, err := domain.ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckCoordinates(lat, lng); err != nil {
		return nil, err
	}

	key := CacheKey(lat, lng, filter)
	if cached, ok := s.fromCache(ctx, key); ok {
		s.metrics.PlaceFetches.WithLabelValues("cache").Inc()
		return cached, nil
	}

	outcome := "live"
	result := s.fetchLive(ctx, lat, lng, filter)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		outcome = "synthetic"
		s.logger.Info("using demo places", "lat", lat, "lng", lng, "filter", filter)
		result, err = domain.GenerateDemoPlaces(lat, lng, filter, s.rng)
		if err != nil {
			return nil, err
		}
	}

	result = s.enrich(ctx, result)
	s.toCache(ctx, key, result)

	s.metrics.PlaceFetches.WithLabelValues(outcome).Inc()
	s.metrics.PlacesServed.Observe(float64(len(result)))
	return result, nil
}

// fetchLive makes a single pass over the search terms for filter. Per-query
// failures are logged and skipped.
func (s *Service) fetchLive(ctx context.Context, lat, lng float64, filter string) []domain.Place {
	if s.searcher == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var found []domain.Place
	for _, query := range domain.SearchTerms(filter) {
		pois, err := s.searcher.SearchPOI(ctx, query, lat, lng)
		if err != nil {
			s.logger.Warn("place search failed", "query", query, "error", err)
			continue
		}
		for _, poi := range pois {
			if _, dup := seen[poi.ID]; dup {
				continue
			}
			seen[poi.ID] = struct{}{}
			t := domain.ClassifyPlaceType(poi.Categories, query)
			found = append(found, domain.PlaceFromPOI(poi, t, s.rng))
		}
	}

	if filter != domain.FilterAll {
		kept := found[:0]
		for _, p := range found {
			if string(p.Type) == filter {
				kept = append(kept, p)
			}
		}
		found = kept
	}
	if len(found) > MaxPlaces {
		found = found[:MaxPlaces]
	}
	return found
}

// enrich overlays live occupancy on the first enrichLimit places concurrently.
func (s *Service) enrich(ctx context.Context, in []domain.Place) []domain.Place {
	if s.occupancy == nil || s.enrichLimit <= 0 || len(in) == 0 {
		return in
	}

	out := make([]domain.Place, len(in))
	copy(out, in)

	n := min(s.enrichLimit, len(out))
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i] = domain.EnrichWithOccupancy(ctx, out[i], s.occupancy, s.logger)
		}()
	}
	wg.Wait()
	return out
}

func (s *Service) fromCache(ctx context.Context, key string) ([]domain.Place, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("place cache read failed", "key", key, "error", err)
		return nil, false
	}
	return cached, ok
}

func (s *Service) toCache(ctx context.Context, key string, places []domain.Place) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, places); err != nil {
		s.logger.Warn("place cache write failed", "key", key, "error", err)
	}
}
