// Package salience implements salience-weighted categories: a center
// plus a per-feature relevance vector that scales each feature's
// contribution to the match, so features that disagree persistently
// lose their power to veto resonance.
package salience

import (
	"encoding/gob"
	"math"
	"slices"

	"github.com/hellblazer/art/geometry"
	"github.com/hellblazer/art/pattern"
)

func init() {
	gob.Register(&Category{})
}

// Compile-time check to ensure Rule satisfies the geometry interface.
var _ geometry.Rule = (*Rule)(nil)

// Options contains configuration options for the salience rule.
type Options struct {
	// Dimension is the fixed pattern dimensionality.
	Dimension int `validate:"gt=0"`

	// Decay is the exponential blend rate for the per-feature
	// relevance update.
	Decay float64 `validate:"gt=0,lte=1"`

	// Tolerance is the feature deviation at which relevance drops to
	// 1/e. It also scales the membership distance.
	Tolerance float64 `validate:"gt=0"`
}

// DefaultOptions contains the default configuration options for the
// salience rule.
var DefaultOptions = Options{
	Dimension: 0,
	Decay:     0.1,
	Tolerance: 0.2,
}

// Category is a salience-weighted cluster representative.
type Category struct {
	Idx      int
	Center   []float64
	Salience []float64
	Samples  uint64
}

// Index returns the category's creation index.
func (c *Category) Index() int { return c.Idx }

// Dimension returns the input dimensionality of the category.
func (c *Category) Dimension() int { return len(c.Center) }

// Centroid returns the category center.
func (c *Category) Centroid() []float64 { return c.Center }

// SampleCount returns the number of absorbed patterns.
func (c *Category) SampleCount() uint64 { return c.Samples }

// Clone returns a deep copy of the category.
func (c *Category) Clone() geometry.Category {
	return &Category{
		Idx:      c.Idx,
		Center:   slices.Clone(c.Center),
		Salience: slices.Clone(c.Salience),
		Samples:  c.Samples,
	}
}

// Rule implements salience-weighted accept/update semantics.
type Rule struct {
	opts Options
}

// New creates a new salience rule. Dimension is required.
func New(optFns ...func(o *Options)) (*Rule, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := geometry.ValidateOptions("salience", opts); err != nil {
		return nil, err
	}
	return &Rule{opts: opts}, nil
}

// Name identifies the shape.
func (*Rule) Name() string { return "Salience" }

// Dimension returns the expected pattern dimensionality.
func (r *Rule) Dimension() int { return r.opts.Dimension }

// distance is the salience-weighted RMS deviation of p from the
// center, scaled by the tolerance. A feature with near-zero salience
// contributes almost nothing, and the salience mass in the denominator
// is floored at epsilon so an all-irrelevant category stays finite.
func (r *Rule) distance(p pattern.Pattern, c *Category, params geometry.Params) float64 {
	var sum, mass float64
	for i, v := range p {
		s := geometry.Clamp(c.Salience[i], params.Epsilon)
		d := v - c.Center[i]
		sum += s * d * d
		mass += s
	}
	return math.Sqrt(sum/geometry.Clamp(mass, params.Epsilon)) / r.opts.Tolerance
}

// Activation scores p against c with the choice function 1/(alpha+dis).
func (r *Rule) Activation(p pattern.Pattern, c geometry.Category, params geometry.Params) float64 {
	sc, ok := c.(*Category)
	if !ok {
		return 0
	}
	return 1 / (geometry.Choice(params) + r.distance(p, sc, params))
}

// Membership returns 1/(1+dis), 1 exactly at the center.
func (r *Rule) Membership(p pattern.Pattern, c geometry.Category, params geometry.Params) float64 {
	sc, ok := c.(*Category)
	if !ok {
		return 0
	}
	return 1 / (1 + r.distance(p, sc, params))
}

// Seed creates a new category centered on p with full salience on
// every feature.
func (r *Rule) Seed(index int, p pattern.Pattern) geometry.Category {
	sal := make([]float64, len(p))
	for i := range sal {
		sal[i] = 1
	}
	return &Category{
		Idx:      index,
		Center:   p.Clone(),
		Salience: sal,
		Samples:  1,
	}
}

// Update moves the center toward p at the learning rate, then blends
// each feature's salience toward its current agreement
// exp(-|deviation|/tolerance). Features that keep deviating decay
// toward the epsilon floor; features that agree recover toward 1.
func (r *Rule) Update(p pattern.Pattern, c geometry.Category, params geometry.Params) error {
	sc, ok := c.(*Category)
	if !ok {
		return &geometry.ErrCategoryShape{Rule: r.Name(), Got: c}
	}

	beta := params.LearningRate
	for i, v := range p {
		sc.Center[i] += beta * (v - sc.Center[i])
		agreement := math.Exp(-math.Abs(v-sc.Center[i]) / r.opts.Tolerance)
		s := (1-r.opts.Decay)*sc.Salience[i] + r.opts.Decay*agreement
		sc.Salience[i] = geometry.Clamp(s, params.Epsilon)
	}
	sc.Samples++
	return nil
}
