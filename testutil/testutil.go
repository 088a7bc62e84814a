// Package testutil provides deterministic pattern generators for
// tests. All randomness flows through a seeded RNG so failing cases
// reproduce exactly.
package testutil

import (
	"math/rand"
	"sync"

	"github.com/hellblazer/art/pattern"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Pattern returns a random pattern with components in [0, 1).
func (r *RNG) Pattern(dimension int) pattern.Pattern {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := make(pattern.Pattern, dimension)
	for i := range p {
		p[i] = r.rand.Float64()
	}
	return p
}

// Patterns returns num random patterns with components in [0, 1).
func (r *RNG) Patterns(num, dimension int) []pattern.Pattern {
	out := make([]pattern.Pattern, num)
	for i := range out {
		out[i] = r.Pattern(dimension)
	}
	return out
}

// Jitter returns a copy of center with each component perturbed by a
// uniform offset in [-radius, radius).
func (r *RNG) Jitter(center pattern.Pattern, radius float64) pattern.Pattern {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := make(pattern.Pattern, len(center))
	for i, v := range center {
		p[i] = v + (r.rand.Float64()*2-1)*radius
	}
	return p
}

// Cluster returns num patterns jittered around center. Tests use it to
// build well-separated clusters that a tight vigilance keeps apart.
func (r *RNG) Cluster(center pattern.Pattern, radius float64, num int) []pattern.Pattern {
	out := make([]pattern.Pattern, num)
	for i := range out {
		out[i] = r.Jitter(center, radius)
	}
	return out
}

// Shuffle permutes the patterns in place.
func (r *RNG) Shuffle(ps []pattern.Pattern) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(len(ps), func(i, j int) {
		ps[i], ps[j] = ps[j], ps[i]
	})
}
