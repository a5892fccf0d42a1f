package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParsePlaceType(t *testing.T) {
	pt, err := ParsePlaceType(" Club ")
	require.NoError(t, err)
	assert.Equal(t, PlaceClub, pt)

	_, err = ParsePlaceType("museum")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseFilter("ALL")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseFilter("gym")
	require.NoError(t, err)
	assert.Equal(t, "gym", f)

	_, err = ParseFilter("zoo")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestPeakHoursReturnsCopy(t *testing.T) {
	h := PlaceBar.PeakHours()
	h[0] = 99

	assert.Equal(t, []int{21, 22, 23, 0, 1}, PlaceBar.PeakHours())
}

func TestSampleCatalog_Valid(t *testing.T) {
	catalog := SampleCatalog()
	require.Len(t, catalog, 12)

	for _, p := range catalog {
		assert.NoError(t, p.Validate())
		assert.NotEmpty(t, p.PeakHours, p.ID)
	}

	catalog[0].PeakHours[0] = 5
	assert.Equal(t, 21, SampleCatalog()[0].PeakHours[0])
}

func TestPlaceValidate(t *testing.T) {
	p := Place{ID: "x", Type: "zoo", Latitude: 91, Rating: 6, PriceLevel: 0, PeakHours: []int{24}, BasePopularity: 101}

	err := p.Validate()
	require.ErrorIs(t, err, ErrInvalidInput)
	for _, want := range []string{"type", "latitude", "rating", "priceLevel", "peak hour", "basePopularity"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestGenerateDemoPlaces_All(t *testing.T) {
	places, err := GenerateDemoPlaces(40.0, -74.0, "all", &seqRand{vals: []float64{0, 0.5, 0.999999}})
	require.NoError(t, err)

	require.Len(t, places, 18)
	perType := map[PlaceType]int{}
	for _, p := range places {
		perType[p.Type]++
		require.NoError(t, p.Validate())
		assert.Equal(t, DataSynthetic, p.Source)
		assert.True(t, strings.HasPrefix(p.ID, "demo-"+string(p.Type)+"-"))
		assert.InDelta(t, 40.0, p.Latitude, 0.0125+1e-9)
		assert.InDelta(t, -74.0, p.Longitude, 0.0125+1e-9)
		assert.GreaterOrEqual(t, p.BasePopularity, 50)
		assert.LessOrEqual(t, p.BasePopularity, 89)
		assert.GreaterOrEqual(t, p.PriceLevel, 1)
		assert.LessOrEqual(t, p.PriceLevel, 3)
		assert.Equal(t, p.Type.PeakHours(), p.PeakHours)
	}
	for _, pt := range AllPlaceTypes() {
		assert.Equal(t, 3, perType[pt], pt)
	}
}

func TestGenerateDemoPlaces_SingleType(t *testing.T) {
	places, err := GenerateDemoPlaces(51.5, -0.12, "cafe", NewRandSource())
	require.NoError(t, err)

	require.Len(t, places, 5)
	ids := map[string]bool{}
	for _, p := range places {
		assert.Equal(t, PlaceCafe, p.Type)
		ids[p.ID] = true
	}
	assert.Len(t, ids, 5, "ids are unique")
}

func TestGenerateDemoPlaces_UnknownFilter(t *testing.T) {
	_, err := GenerateDemoPlaces(0, 0, "zoo", NewRandSource())
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestPlaceFromPOI(t *testing.T) {
	poi := POI{ID: "poi.1", Latitude: 1, Longitude: 2}
	p := PlaceFromPOI(poi, PlaceClub, fixedRand(0))

	assert.Equal(t, "Unknown Place", p.Name)
	assert.Equal(t, "Address not available", p.Address)
	assert.Equal(t, DataLive, p.Source)
	assert.Equal(t, 3.5, p.Rating)
	assert.Equal(t, 1, p.PriceLevel)
	assert.Equal(t, 50, p.BasePopularity)
	assert.Equal(t, []int{23, 0, 1, 2, 3}, p.PeakHours)
}

func TestSearchTerms(t *testing.T) {
	assert.Equal(t, []string{"bar", "restaurant", "coffee"}, SearchTerms(FilterAll))
	assert.Equal(t, []string{"shop", "mall", "store"}, SearchTerms("shopping"))
	assert.Equal(t, []string{"nightclub", "club"}, SearchTerms("club"))
}

func TestClassifyPlaceType(t *testing.T) {
	tests := []struct {
		cats  []string
		query string
		want  PlaceType
	}{
		{[]string{"pub", "food"}, "restaurant", PlaceBar},
		{[]string{"coffee shop"}, "restaurant", PlaceCafe},
		{nil, "coffee", PlaceCafe},
		{[]string{"nightclub"}, "nightclub", PlaceClub},
		{[]string{"fitness center"}, "gym", PlaceGym},
		{[]string{"shopping mall"}, "mall", PlaceShopping},
		{[]string{"italian"}, "restaurant", PlaceRestaurant},
		{nil, "bar", PlaceBar},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyPlaceType(tt.cats, tt.query), "%v / %s", tt.cats, tt.query)
	}
}

func TestFilterPlaces(t *testing.T) {
	catalog := SampleCatalog()

	assert.Len(t, FilterPlaces(catalog, ""), len(catalog))

	byName := FilterPlaces(catalog, "rusty")
	require.Len(t, byName, 1)
	assert.Equal(t, "bar-1", byName[0].ID)

	byAddress := FilterPlaces(catalog, "ST MARKS")
	require.Len(t, byAddress, 1)
	assert.Equal(t, "rest-2", byAddress[0].ID)

	assert.Empty(t, FilterPlaces(catalog, "nowhere"))
}

func TestFormatHour(t *testing.T) {
	assert.Equal(t, "12:00 AM", FormatHour(0))
	assert.Equal(t, "9:00 AM", FormatHour(9))
	assert.Equal(t, "12:00 PM", FormatHour(12))
	assert.Equal(t, "11:00 PM", FormatHour(23))
}

func TestFormatPriceLevel(t *testing.T) {
	assert.Equal(t, "$$$", FormatPriceLevel(3))
	assert.Empty(t, FormatPriceLevel(0))
}

// --- occupancy ---

type mockOccupancy struct {
	result LiveOccupancy
	err    error
	calls  int
}

func (m *mockOccupancy) LiveOccupancy(_ context.Context, _, _ string) (LiveOccupancy, error) {
	m.calls++
	return m.result, m.err
}

func TestEnrichWithOccupancy_NilProvider(t *testing.T) {
	p := lateBar()

	got := EnrichWithOccupancy(context.Background(), p, nil, discardLogger())

	assert.Equal(t, p, got)
}

func TestEnrichWithOccupancy_LiveOverridesPopularity(t *testing.T) {
	prov := &mockOccupancy{result: LiveOccupancy{LiveBusyness: 42, LiveAvailable: true, ForecastedBusyness: 70, ForecastAvailable: true}}

	got := EnrichWithOccupancy(context.Background(), lateBar(), prov, discardLogger())

	assert.Equal(t, 42, got.BasePopularity)
	require.NotNil(t, got.Occupancy)
	assert.True(t, got.Occupancy.LiveAvailable)
	assert.Equal(t, 1, prov.calls)
}

func TestEnrichWithOccupancy_ForecastFallback(t *testing.T) {
	prov := &mockOccupancy{result: LiveOccupancy{ForecastedBusyness: 130, ForecastAvailable: true}}

	got := EnrichWithOccupancy(context.Background(), lateBar(), prov, discardLogger())

	assert.Equal(t, 100, got.BasePopularity)
}

func TestEnrichWithOccupancy_Unavailable(t *testing.T) {
	prov := &mockOccupancy{result: LiveOccupancy{}}
	p := lateBar()

	got := EnrichWithOccupancy(context.Background(), p, prov, discardLogger())

	assert.Equal(t, 85, got.BasePopularity)
	assert.Nil(t, got.Occupancy)
}

func TestEnrichWithOccupancy_ErrorKeepsSynthetic(t *testing.T) {
	prov := &mockOccupancy{err: errors.New("boom")}

	got := EnrichWithOccupancy(context.Background(), lateBar(), prov, discardLogger())

	assert.Equal(t, 85, got.BasePopularity)
	assert.Nil(t, got.Occupancy)
}
