package domain

import "math/rand/v2"

// RandSource yields uniform values in [0, 1). Implementations used by an
// Estimator shared across goroutines must be safe for concurrent use.
type RandSource interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// NewRandSource returns the process-wide math/rand/v2 source, which is safe
// for concurrent use.
func NewRandSource() RandSource { return globalRand{} }

// intn draws an integer in [0, n) from r.
func intn(r RandSource, n int) int {
	if n <= 0 {
		return 0
	}
	v := int(r.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}
