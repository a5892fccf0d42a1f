package overpass

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/couchcryptid/crowdmap-service/internal/domain"
	"github.com/couchcryptid/crowdmap-service/internal/observability"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `{
	"version": 0.6,
	"elements": [
		{"type": "node", "id": 1, "lat": 40.7290, "lon": -73.9940,
		 "tags": {"name": "The Rusty Nail", "amenity": "pub", "addr:housenumber": "12", "addr:street": "Bowery", "addr:city": "New York"}},
		{"type": "node", "id": 2, "lat": 40.7283, "lon": -73.9943, "tags": {"amenity": "bar"}},
		{"type": "node", "id": 3, "lat": 40.8500, "lon": -73.9000, "tags": {"name": "Too Far", "amenity": "bar"}},
		{"type": "way", "id": 10, "nodes": [11, 12], "tags": {"name": "City Mall", "shop": "mall"}},
		{"type": "node", "id": 11, "lat": 40.7300, "lon": -73.9950},
		{"type": "node", "id": 12, "lat": 40.7310, "lon": -73.9930}
	]
}`

func newTestSearcher(endpoint string) *Searcher {
	return NewSearcher(endpoint, 1500, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
}

func TestSearcher_SearchPOI(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if form, err := url.ParseQuery(string(body)); err == nil {
			gotQuery = form.Get("data")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	pois, err := newTestSearcher(srv.URL).SearchPOI(context.Background(), "bar", 40.7282, -73.9942)
	require.NoError(t, err)

	want := []domain.POI{
		{
			ID:         "osm-node-1",
			Name:       "The Rusty Nail",
			Address:    "12 Bowery, New York",
			Latitude:   40.7290,
			Longitude:  -73.9940,
			Categories: []string{"pub"},
		},
		{
			ID:         "osm-way-10",
			Name:       "City Mall",
			Latitude:   40.7305,
			Longitude:  -73.9940,
			Categories: []string{"mall"},
		},
	}
	opt := cmp.Comparer(func(a, b float64) bool { return a-b < 1e-9 && b-a < 1e-9 })
	if diff := cmp.Diff(want, pois, opt); diff != "" {
		t.Errorf("SearchPOI mismatch (-want +got):\n%s", diff)
	}

	if gotQuery != "" {
		assert.Contains(t, gotQuery, `around:1500,40.728200,-73.994200`)
		assert.Contains(t, gotQuery, `amenity"~"^(bar|pub)$"`)
	}
}

func TestSearcher_ClassifiesWithSharedRules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	pois, err := newTestSearcher(srv.URL).SearchPOI(context.Background(), "bar", 40.7282, -73.9942)
	require.NoError(t, err)
	require.Len(t, pois, 2)

	assert.Equal(t, domain.PlaceBar, domain.ClassifyPlaceType(pois[0].Categories, "restaurant"))
	assert.Equal(t, domain.PlaceShopping, domain.ClassifyPlaceType(pois[1].Categories, "restaurant"))
}

func TestSearcher_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestSearcher(srv.URL).SearchPOI(context.Background(), "bar", 40.7282, -73.9942)
	require.ErrorIs(t, err, domain.ErrUpstreamFailure)
}

func TestSearcher_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSearcher(srv.URL).SearchPOI(ctx, "bar", 40.7282, -73.9942)
	require.ErrorIs(t, err, domain.ErrUpstreamFailure)
}

func TestBuildQuery_UnknownTermMatchesName(t *testing.T) {
	q := buildQuery("Bowling", 1, 2, 300)

	assert.Contains(t, q, `["name"~"bowling",i]`)
	assert.Contains(t, q, "around:300,1.000000,2.000000")
	assert.Contains(t, q, "out skel qt;")
}

func TestAddressAndCategories(t *testing.T) {
	assert.Empty(t, address(map[string]string{"addr:housenumber": "5"}))
	assert.Equal(t, "Main St", address(map[string]string{"addr:street": "Main St"}))
	assert.Equal(t, []string{"fast food", "burger"}, categories(map[string]string{"amenity": "fast_food", "cuisine": "burger"}))
}
