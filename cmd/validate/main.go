// Command validate performs integrity checks on a place catalog: schema and
// range validation, peak hour consistency, occupancy consistency, crowd score
// bounds for every hour of a week, and optionally distance from a centre.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -catalog internal/pipeline/testdata/places.json \
//	  -lat 40.7282 -lng -73.9942 -radius 3000
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/crowdmap-service/internal/domain"
	"github.com/couchcryptid/crowdmap-service/internal/places"
	"github.com/jonboulle/clockwork"
)

// Monday 2026-10-19, the start of the week scores are checked against.
var weekStart = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// midRand keeps score draws deterministic between runs.
type midRand struct{}

func (midRand) Float64() float64 { return 0.5 }

func main() {
	catalogPath := flag.String("catalog", "", "path to a place catalog JSON file")
	lat := flag.Float64("lat", math.NaN(), "centre latitude for the distance check")
	lng := flag.Float64("lng", math.NaN(), "centre longitude for the distance check")
	radius := flag.Float64("radius", 0, "maximum distance in metres from the centre, 0 to skip")
	flag.Parse()

	if *catalogPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*catalogPath, *lat, *lng, *radius))
}

func run(path string, lat, lng, radius float64) int {
	fmt.Println("=== Place Catalog Validation ===")
	fmt.Println()

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open catalog: %v\n", err)
		return 1
	}
	catalog, err := places.ReadCatalog(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validatePeakHours(catalog),
		validateOccupancy(catalog),
		validateScores(catalog),
	}
	if radius > 0 && !math.IsNaN(lat) && !math.IsNaN(lng) {
		phases = append(phases, validateDistance(catalog, lat, lng, radius))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Places: %d\n", len(catalog))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Peak hours ──
// Every place lists distinct hours within 0..23. Live and generated demo
// places take their type's default profile; catalog entries may differ.

func validatePeakHours(catalog []domain.Place) *phase {
	p := &phase{name: "Phase 1: Peak hours"}
	for _, place := range catalog {
		if len(place.PeakHours) == 0 {
			p.errorf("%s: no peak hours", place.ID)
			continue
		}
		seen := map[int]bool{}
		for _, h := range place.PeakHours {
			if h < 0 || h > 23 {
				p.errorf("%s: peak hour %d out of range", place.ID, h)
			}
			if seen[h] {
				p.errorf("%s: peak hour %d listed twice", place.ID, h)
			}
			seen[h] = true
		}
		if usesTypeProfile(place) && !slices.Equal(place.PeakHours, place.Type.PeakHours()) {
			p.errorf("%s (%s): peak hours %v, type default %v", place.ID, place.Type, place.PeakHours, place.Type.PeakHours())
		}
	}
	return p
}

func usesTypeProfile(place domain.Place) bool {
	return place.Source == domain.DataLive || strings.HasPrefix(place.ID, "demo-")
}

// ── Phase 2: Occupancy ──
// An attached occupancy reading must be the source of the base popularity.

func validateOccupancy(catalog []domain.Place) *phase {
	p := &phase{name: "Phase 2: Occupancy consistency"}
	for _, place := range catalog {
		occ := place.Occupancy
		if occ == nil {
			continue
		}
		switch {
		case occ.LiveAvailable:
			if want := domain.ClampScore(occ.LiveBusyness); place.BasePopularity != want {
				p.errorf("%s: basePopularity %d, live busyness %d", place.ID, place.BasePopularity, want)
			}
		case occ.ForecastAvailable:
			if want := domain.ClampScore(occ.ForecastedBusyness); place.BasePopularity != want {
				p.errorf("%s: basePopularity %d, forecast %d", place.ID, place.BasePopularity, want)
			}
		default:
			p.errorf("%s: occupancy attached with no live or forecast data", place.ID)
		}
	}
	return p
}

// ── Phase 3: Scores ──
// Every place scores within 0..100 at every hour of the week, and peaks are
// never quieter than off-peak hours on the same day.

func validateScores(catalog []domain.Place) *phase {
	p := &phase{name: "Phase 3: Crowd scores across a week"}
	clock := clockwork.NewFakeClockAt(weekStart)
	est := domain.NewEstimator(clock, midRand{}, time.UTC)

	for range 7 {
		day := clock.Now().Weekday()
		for _, place := range catalog {
			minPeak, maxOff := math.MaxInt, -1
			for hour := range 24 {
				score, err := est.Estimate(place, hour)
				if err != nil {
					p.errorf("%s %s %02d:00: %v", place.ID, day, hour, err)
					continue
				}
				if score < 0 || score > 100 {
					p.errorf("%s %s %02d:00: score %d out of range", place.ID, day, hour, score)
				}
				if slices.Contains(place.PeakHours, hour) {
					minPeak = min(minPeak, score)
				} else {
					maxOff = max(maxOff, score)
				}
			}
			if minPeak != math.MaxInt && minPeak < maxOff {
				p.errorf("%s %s: peak score %d below off-peak score %d", place.ID, day, minPeak, maxOff)
			}
		}
		clock.Advance(24 * time.Hour)
	}
	return p
}

// ── Phase 4: Distance ──

func validateDistance(catalog []domain.Place, lat, lng, radius float64) *phase {
	p := &phase{name: fmt.Sprintf("Phase 4: Within %.0f m of centre", radius)}
	for _, place := range catalog {
		if d := domain.DistanceMeters(lat, lng, place.Latitude, place.Longitude); d > radius {
			p.errorf("%s: %.0f m from %.4f,%.4f", place.ID, d, lat, lng)
		}
	}
	return p
}
