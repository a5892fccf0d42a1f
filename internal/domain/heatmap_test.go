package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxJitter = 0.0004 + 1e-12

func TestPointCount(t *testing.T) {
	assert.Equal(t, 3, PointCount(0))
	assert.Equal(t, 3, PointCount(9))
	assert.Equal(t, 4, PointCount(10))
	assert.Equal(t, 11, PointCount(83))
	assert.Equal(t, 13, PointCount(100))
}

func TestGenerate_PointCountMatchesScores(t *testing.T) {
	places := SampleCatalog()
	e := estimatorAt(tuesday, fixedRand(0.9))

	expected := 0
	for _, p := range places {
		score, err := e.Estimate(p, 21)
		require.NoError(t, err)
		expected += score/10 + 3
	}

	points, err := e.Generate(places, 21)
	require.NoError(t, err)
	assert.Len(t, points, expected)
}

func TestGenerate_PointsStayNearTheirPlace(t *testing.T) {
	places := SampleCatalog()
	// Draws at both extremes push jitter to its bounds.
	r := &seqRand{vals: []float64{0, 0.999999, 0.5, 0.25, 0.75}}
	e := estimatorAt(friday, r)

	for _, p := range places {
		points, err := e.Generate([]Place{p}, 22)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(points), 3)

		for _, pt := range points {
			assert.LessOrEqual(t, math.Abs(pt.Latitude-p.Latitude), maxJitter, p.ID)
			assert.LessOrEqual(t, math.Abs(pt.Longitude-p.Longitude), maxJitter, p.ID)
		}
	}
}

func TestGenerate_WeightProportionalToScore(t *testing.T) {
	p := lateBar()
	e := estimatorAt(tuesday, fixedRand(0.9))

	score, err := e.Estimate(p, 22)
	require.NoError(t, err)

	points, err := e.Generate([]Place{p}, 22)
	require.NoError(t, err)
	require.Len(t, points, PointCount(score))

	for _, pt := range points {
		assert.GreaterOrEqual(t, pt.Weight, float64(score)*0.5)
		assert.Less(t, pt.Weight, float64(score))
		assert.InDelta(t, float64(score)*0.95, pt.Weight, 1e-9)
	}
}

func TestGenerate_EmptyInput(t *testing.T) {
	e := estimatorAt(tuesday, fixedRand(0.5))

	points, err := e.Generate(nil, 12)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestGenerate_InvalidHour(t *testing.T) {
	e := estimatorAt(tuesday, fixedRand(0.5))

	_, err := e.Generate(SampleCatalog(), 24)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenerate_FreshPointsEachCall(t *testing.T) {
	e := NewEstimator(nil, nil, nil)
	places := SampleCatalog()[:1]

	a, err := e.Generate(places, 12)
	require.NoError(t, err)
	b, err := e.Generate(places, 12)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestSnapshot(t *testing.T) {
	places := SampleCatalog()
	e := estimatorAt(tuesday, fixedRand(0.9))

	snap, err := e.Snapshot(places, 22)
	require.NoError(t, err)

	assert.Equal(t, 22, snap.Hour)
	assert.Equal(t, "10:00 PM", snap.HourLabel)
	assert.Equal(t, "Tuesday", snap.Day)
	assert.True(t, tuesday.Equal(snap.ComputedAt))
	require.Len(t, snap.Places, len(places))

	total := 0
	for i, pc := range snap.Places {
		assert.Equal(t, places[i].ID, pc.Place.ID)
		assert.Equal(t, Describe(pc.Score), pc.Tier)
		total += PointCount(pc.Score)
	}
	assert.Len(t, snap.Points, total)

	assert.Equal(t, 83, snap.Places[0].Score, "the rusty nail at 22:00")
}

func TestSnapshot_InvalidHour(t *testing.T) {
	e := estimatorAt(tuesday, fixedRand(0.9))

	_, err := e.Snapshot(SampleCatalog(), -1)
	require.ErrorIs(t, err, ErrInvalidInput)
}
