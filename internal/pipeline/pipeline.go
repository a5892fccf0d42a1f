package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/crowdmap-service/internal/domain"
	"github.com/couchcryptid/crowdmap-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// PlaceFetcher loads the places for a selection. Implementations may return
// domain.ErrSuperseded when a newer fetch replaced this one.
type PlaceFetcher interface {
	Fetch(ctx context.Context, lat, lng float64, filter string) ([]domain.Place, error)
}

// SnapshotSink receives every computed snapshot.
type SnapshotSink interface {
	Publish(ctx context.Context, snap Snapshot) error
}

// NopSink discards snapshots.
type NopSink struct{}

func (NopSink) Publish(context.Context, Snapshot) error { return nil }

// Selection is the location, type filter, and search text being tracked.
type Selection struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Filter    string  `json:"filter"`
	Query     string  `json:"query,omitempty"`
}

// Normalize validates the selection and fills in the default filter.
func (s Selection) Normalize() (Selection, error) {
	if err := domain.CheckCoordinates(s.Latitude, s.Longitude); err != nil {
		return s, err
	}
	filter, err := domain.ParseFilter(s.Filter)
	if err != nil {
		return s, err
	}
	s.Filter = filter
	return s, nil
}

// Snapshot is one recompute result for a selection.
type Snapshot struct {
	ID        string    `json:"id"`
	Selection Selection `json:"selection"`
	domain.CrowdSnapshot
}

type fetched struct {
	selection Selection
	places    []domain.Place
}

// Pipeline keeps a crowd snapshot for the tracked selection up to date. The
// place list is refetched when the selection changes and the snapshot is
// recomputed on every tick.
type Pipeline struct {
	fetcher   PlaceFetcher
	estimator *domain.Estimator
	sink      SnapshotSink
	clock     clockwork.Clock
	interval  time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics

	selectMu  sync.Mutex
	selectCh  chan Selection
	fetchedCh chan fetched

	mu        sync.RWMutex
	selection Selection
	latest    *Snapshot
	ready     atomic.Bool
}

// New creates a Pipeline tracking initial. A nil sink discards snapshots.
func New(fetcher PlaceFetcher, estimator *domain.Estimator, sink SnapshotSink, clock clockwork.Clock, interval time.Duration, initial Selection, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if sink == nil {
		sink = NopSink{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		fetcher:   fetcher,
		estimator: estimator,
		sink:      sink,
		clock:     clock,
		interval:  interval,
		logger:    logger,
		metrics:   metrics,
		selectCh:  make(chan Selection, 1),
		fetchedCh: make(chan fetched),
		selection: initial,
	}
}

// CheckReadiness returns nil once the first snapshot has been computed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no crowd snapshot computed yet")
	}
	return nil
}

// Latest returns the most recent snapshot.
func (p *Pipeline) Latest() (Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.latest == nil {
		return Snapshot{}, false
	}
	return *p.latest, true
}

// Selection returns the selection most recently requested.
func (p *Pipeline) Selection() Selection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selection
}

// Select retargets the pipeline. Only the newest pending selection is kept.
func (p *Pipeline) Select(sel Selection) (Selection, error) {
	sel, err := sel.Normalize()
	if err != nil {
		return sel, err
	}

	p.mu.Lock()
	p.selection = sel
	p.mu.Unlock()

	p.selectMu.Lock()
	defer p.selectMu.Unlock()
	select {
	case <-p.selectCh:
	default:
	}
	p.selectCh <- sel
	return sel, nil
}

// Run drives fetches and recomputes until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	initial, err := p.Selection().Normalize()
	if err != nil {
		return err
	}

	p.logger.Info("pipeline started", "interval", p.interval,
		"lat", initial.Latitude, "lng", initial.Longitude, "filter", initial.Filter)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	startFetch := func(sel Selection) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.fetch(ctx, sel)
		}()
	}
	startFetch(initial)

	var (
		current Selection
		places  []domain.Place
		loaded  bool
	)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case sel := <-p.selectCh:
			p.logger.Info("selection changed", "lat", sel.Latitude, "lng", sel.Longitude, "filter", sel.Filter)
			startFetch(sel)
		case f := <-p.fetchedCh:
			current, places, loaded = f.selection, f.places, true
			p.recompute(ctx, current, places)
		case <-ticker.Chan():
			if loaded {
				p.recompute(ctx, current, places)
			}
		}
	}
}

func (p *Pipeline) fetch(ctx context.Context, sel Selection) {
	result, err := p.fetcher.Fetch(ctx, sel.Latitude, sel.Longitude, sel.Filter)
	if errors.Is(err, domain.ErrSuperseded) {
		p.logger.Debug("place fetch superseded", "lat", sel.Latitude, "lng", sel.Longitude)
		return
	}
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("place fetch failed", "error", err)
		}
		return
	}

	select {
	case p.fetchedCh <- fetched{selection: sel, places: result}:
	case <-ctx.Done():
	}
}

// recompute builds a snapshot for the current hour and hands it to the sink.
// Sink failures are logged and counted but never stop the loop.
func (p *Pipeline) recompute(ctx context.Context, sel Selection, all []domain.Place) {
	start := p.clock.Now()

	visible := domain.FilterPlaces(all, sel.Query)
	crowd, err := p.estimator.Snapshot(visible, p.estimator.CurrentHour())
	if err != nil {
		p.logger.Error("snapshot failed", "error", err)
		return
	}

	snap := Snapshot{ID: uuid.NewString(), Selection: sel, CrowdSnapshot: crowd}

	p.mu.Lock()
	p.latest = &snap
	p.mu.Unlock()
	p.ready.Store(true)

	p.metrics.SnapshotsComputed.Inc()
	p.metrics.SnapshotPoints.Observe(float64(len(snap.Points)))

	if err := p.sink.Publish(ctx, snap); err != nil {
		p.logger.Warn("publish snapshot failed", "error", err, "snapshot_id", snap.ID)
		p.metrics.SinkErrors.Inc()
	} else {
		p.metrics.SnapshotsPublished.Inc()
	}

	p.metrics.SnapshotDuration.Observe(p.clock.Since(start).Seconds())
	p.logger.Debug("snapshot computed",
		"snapshot_id", snap.ID,
		"hour", snap.Hour,
		"places", len(snap.Places),
		"points", len(snap.Points),
	)
}
