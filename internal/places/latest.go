package places

import (
	"context"
	"sync"

	"github.com/couchcryptid/crowdmap-service/internal/domain"
)

// Fetcher fetches the places for a location and filter.
type Fetcher interface {
	FetchPlaces(ctx context.Context, lat, lng float64, filter string) ([]domain.Place, error)
}

// Latest coordinates overlapping fetches so only the most recently started
// one delivers a result. Starting a fetch cancels the one in flight, and a
// fetch that completes after being replaced returns domain.ErrSuperseded.
type Latest struct {
	fetcher Fetcher

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewLatest wraps f with last-wins semantics.
func NewLatest(f Fetcher) *Latest {
	return &Latest{fetcher: f}
}

// Fetch starts a new fetch, superseding any fetch still in flight.
func (l *Latest) Fetch(ctx context.Context, lat, lng float64, filter string) ([]domain.Place, error) {
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	l.cancel = cancel
	l.mu.Unlock()

	result, err := l.fetcher.FetchPlaces(fetchCtx, lat, lng, filter)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return nil, domain.ErrSuperseded
	}
	l.cancel = nil
	return result, err
}
