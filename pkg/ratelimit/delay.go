package ratelimit

import (
	"math/rand"
	"sync"
	"time"
)

// DelayProvider produces the pause inserted before each deletion
type DelayProvider interface {
	// Next returns the next delay to observe
	Next() time.Duration
	// Penalize stretches subsequent delays after a throttling signal
	Penalize()
}

// GaussianDelay draws delays from a normal distribution with a floor.
// Each Penalize call stretches the distribution so repeated throttling
// signals slow the run down progressively.
type GaussianDelay struct {
	mu         sync.Mutex
	mean       float64 // seconds
	stdDev     float64 // seconds
	min        float64 // seconds
	multiplier float64
	penalties  int
	rng        *rand.Rand
}

// NewGaussianDelay creates a delay provider. All arguments are in seconds.
func NewGaussianDelay(mean, stdDev, min, multiplier float64) *GaussianDelay {
	return &GaussianDelay{
		mean:       mean,
		stdDev:     stdDev,
		min:        min,
		multiplier: multiplier,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns a random delay, never below the configured floor
func (g *GaussianDelay) Next() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	seconds := g.rng.NormFloat64()*g.stdDev + g.mean
	if seconds < g.min {
		seconds = g.min
	}
	return time.Duration(seconds * float64(time.Second))
}

// Penalize stretches the distribution for all subsequent draws
func (g *GaussianDelay) Penalize() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.penalties++
	g.mean *= g.multiplier
	g.stdDev *= 1.2
}

// Penalties returns the number of times the delay has been stretched
func (g *GaussianDelay) Penalties() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.penalties
}

// Mean returns the current mean delay in seconds
func (g *GaussianDelay) Mean() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mean
}
