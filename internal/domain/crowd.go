package domain

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	baseMultiplier = 0.3
	peakMin        = 0.8
	peakSpan       = 0.2
	nearPeakMin    = 0.5
	nearPeakSpan   = 0.2
	weekendBoost   = 1.2
	maxCrowdScore  = 100
	nearPeakWindow = 1
	hoursPerDay    = 24
)

// Estimator computes crowd scores and heatmap points. It holds no mutable
// state and is safe for concurrent use when its RandSource is.
type Estimator struct {
	clock clockwork.Clock
	rng   RandSource
	loc   *time.Location
}

// NewEstimator creates an Estimator. A nil clock, rng or loc falls back to the
// real clock, the global random source and time.Local.
func NewEstimator(clock clockwork.Clock, rng RandSource, loc *time.Location) *Estimator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if rng == nil {
		rng = NewRandSource()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Estimator{clock: clock, rng: rng, loc: loc}
}

// Now returns the current time in the estimator's zone.
func (e *Estimator) Now() time.Time {
	return e.clock.Now().In(e.loc)
}

// CurrentHour returns the current hour of day (0..23) in the estimator's zone.
func (e *Estimator) CurrentHour() int {
	return e.Now().Hour()
}

// Estimate returns the 0..100 crowd score for place at hour.
func (e *Estimator) Estimate(place Place, hour int) (int, error) {
	if err := checkHour(hour); err != nil {
		return 0, err
	}

	multiplier := baseMultiplier
	switch {
	case isPeakHour(place.PeakHours, hour):
		multiplier = peakMin + e.rng.Float64()*peakSpan
	case isNearPeak(place.PeakHours, hour):
		multiplier = nearPeakMin + e.rng.Float64()*nearPeakSpan
	}

	if isWeekend(e.Now().Weekday()) && place.Type.weekendBoosted() {
		multiplier *= weekendBoost
	}

	score := math.Floor(math.Min(maxCrowdScore, float64(place.BasePopularity)*multiplier))
	if score < 0 {
		score = 0
	}
	return int(score), nil
}

func checkHour(hour int) error {
	if hour < 0 || hour >= hoursPerDay {
		return fmt.Errorf("%w: hour %d outside 0..23", ErrInvalidInput, hour)
	}
	return nil
}

func isPeakHour(peaks []int, hour int) bool {
	return slices.Contains(peaks, hour)
}

// isNearPeak uses plain integer distance, so 23 and 0 are 23 hours apart.
func isNearPeak(peaks []int, hour int) bool {
	for _, h := range peaks {
		d := h - hour
		if d < 0 {
			d = -d
		}
		if d <= nearPeakWindow {
			return true
		}
	}
	return false
}

// isWeekend groups Sunday, Friday and Saturday together.
func isWeekend(day time.Weekday) bool {
	return day == time.Sunday || day == time.Friday || day == time.Saturday
}
