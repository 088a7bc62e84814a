// Package pattern provides the input value type for ART modules along
// with the vector helpers shared by the geometry packages.
package pattern

import (
	"math"
	"slices"
)

// Pattern is an ordered sequence of real-valued features with a fixed
// dimension. Patterns are treated as immutable once handed to a module;
// callers that need to mutate a pattern should Clone it first.
type Pattern []float64

// New creates a Pattern from the given feature values.
func New(values ...float64) Pattern {
	return slices.Clone(values)
}

// Dimension returns the number of features in the pattern.
func (p Pattern) Dimension() int {
	return len(p)
}

// Clone returns a deep copy of the pattern.
func (p Pattern) Clone() Pattern {
	return slices.Clone(p)
}

// Slice returns the sub-pattern [lo, hi). Used by multi-channel rules
// to address one channel of a concatenated pattern. The returned slice
// aliases p; callers must treat it as read-only.
func (p Pattern) Slice(lo, hi int) Pattern {
	return Pattern(p[lo:hi])
}

// ComplementCode returns the complement-coded form of p: each feature x
// is represented by the pair (x, 1-x). Features are clamped to [0, 1]
// before coding so the result always has constant L1 norm.
func ComplementCode(p Pattern) Pattern {
	out := make(Pattern, 0, 2*len(p))
	for _, v := range p {
		v = math.Min(1, math.Max(0, v))
		out = append(out, v)
	}
	for _, v := range p {
		v = math.Min(1, math.Max(0, v))
		out = append(out, 1-v)
	}
	return out
}

// NormalizeL2InPlace L2-normalizes p in place.
// Returns false if p has zero L2 norm.
func NormalizeL2InPlace(p Pattern) bool {
	if len(p) == 0 {
		return false
	}
	var norm2 float64
	for _, v := range p {
		norm2 += v * v
	}
	if norm2 == 0 {
		return false
	}
	inv := 1 / math.Sqrt(norm2)
	for i := range p {
		p[i] *= inv
	}
	return true
}

// NormalizeL2Copy returns a normalized copy of p.
// Returns false if p has zero L2 norm.
func NormalizeL2Copy(p Pattern) (Pattern, bool) {
	dst := p.Clone()
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}
