package domain

import "time"

const (
	// jitterSpan is the full width of the per-axis offset, so points land
	// within ±jitterSpan/2 degrees of the place.
	jitterSpan   = 0.0008
	minPoints    = 3
	pointsPerTen = 10
	weightMin    = 0.5
	weightSpan   = 0.5
)

// CrowdDataPoint is one weighted sample of the heatmap point cloud.
type CrowdDataPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Weight    float64 `json:"weight"`
}

// PlaceCrowd pairs a place with its score and tier for one recompute.
type PlaceCrowd struct {
	Place Place     `json:"place"`
	Score int       `json:"score"`
	Tier  CrowdTier `json:"tier"`
}

// CrowdSnapshot is the full result of one recompute tick.
type CrowdSnapshot struct {
	Hour       int              `json:"hour"`
	HourLabel  string           `json:"hourLabel"`
	Day        string           `json:"day"`
	ComputedAt time.Time        `json:"computedAt"`
	Places     []PlaceCrowd     `json:"places"`
	Points     []CrowdDataPoint `json:"points"`
}

// PointCount returns how many heatmap points a score expands into.
func PointCount(score int) int {
	return score/pointsPerTen + minPoints
}

// Generate expands every place into its jittered point cloud for hour.
func (e *Estimator) Generate(places []Place, hour int) ([]CrowdDataPoint, error) {
	if err := checkHour(hour); err != nil {
		return nil, err
	}
	var points []CrowdDataPoint
	for _, p := range places {
		score, err := e.Estimate(p, hour)
		if err != nil {
			return nil, err
		}
		points = e.appendPoints(points, p, score)
	}
	return points, nil
}

// Snapshot scores every place once and derives both tiers and points from
// that single score.
func (e *Estimator) Snapshot(places []Place, hour int) (CrowdSnapshot, error) {
	if err := checkHour(hour); err != nil {
		return CrowdSnapshot{}, err
	}
	now := e.Now()
	snap := CrowdSnapshot{
		Hour:       hour,
		HourLabel:  FormatHour(hour),
		Day:        now.Weekday().String(),
		ComputedAt: now,
		Places:     make([]PlaceCrowd, 0, len(places)),
	}
	for _, p := range places {
		score, err := e.Estimate(p, hour)
		if err != nil {
			return CrowdSnapshot{}, err
		}
		snap.Places = append(snap.Places, PlaceCrowd{Place: p, Score: score, Tier: Describe(score)})
		snap.Points = e.appendPoints(snap.Points, p, score)
	}
	return snap, nil
}

func (e *Estimator) appendPoints(points []CrowdDataPoint, p Place, score int) []CrowdDataPoint {
	n := PointCount(score)
	for range n {
		points = append(points, CrowdDataPoint{
			Latitude:  p.Latitude + (e.rng.Float64()-0.5)*jitterSpan,
			Longitude: p.Longitude + (e.rng.Float64()-0.5)*jitterSpan,
			Weight:    float64(score) * (weightMin + e.rng.Float64()*weightSpan),
		})
	}
	return points
}
