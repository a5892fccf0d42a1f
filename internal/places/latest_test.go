package places

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/crowdmap-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedFetcher blocks each fetch until released and reports the context it saw.
type gatedFetcher struct {
	started chan context.Context
	release chan []domain.Place
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{started: make(chan context.Context, 4), release: make(chan []domain.Place, 4)}
}

func (g *gatedFetcher) FetchPlaces(ctx context.Context, _, _ float64, _ string) ([]domain.Place, error) {
	g.started <- ctx
	return <-g.release, nil
}

type fetchResult struct {
	places []domain.Place
	err    error
}

func TestLatest_NewerFetchSupersedesOlder(t *testing.T) {
	f := newGatedFetcher()
	l := NewLatest(f)

	first := make(chan fetchResult, 1)
	go func() {
		p, err := l.Fetch(context.Background(), 1, 1, "all")
		first <- fetchResult{p, err}
	}()
	firstCtx := <-f.started

	second := make(chan fetchResult, 1)
	go func() {
		p, err := l.Fetch(context.Background(), 2, 2, "bar")
		second <- fetchResult{p, err}
	}()
	<-f.started

	select {
	case <-firstCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("first fetch was not canceled")
	}

	catalog := domain.SampleCatalog()
	f.release <- catalog[:1]
	f.release <- catalog[1:3]

	r1 := <-first
	r2 := <-second

	require.ErrorIs(t, r1.err, domain.ErrSuperseded)
	assert.Nil(t, r1.places)
	require.NoError(t, r2.err)
	assert.NotEmpty(t, r2.places)
}

func TestLatest_SequentialFetchesBothSucceed(t *testing.T) {
	f := newGatedFetcher()
	l := NewLatest(f)
	catalog := domain.SampleCatalog()

	f.release <- catalog
	got, err := l.Fetch(context.Background(), 1, 1, "all")
	require.NoError(t, err)
	assert.Len(t, got, len(catalog))
	<-f.started

	f.release <- catalog[:1]
	got, err = l.Fetch(context.Background(), 1, 1, "all")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLatest_PropagatesFetchErrors(t *testing.T) {
	svc, _ := newTestService()
	l := NewLatest(svc)

	_, err := l.Fetch(context.Background(), 0, 0, "museum")
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}
