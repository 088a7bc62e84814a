// Package gaussian implements Gaussian categories with a diagonal
// covariance: a mean vector, per-axis variances and a sample count
// that weights both the activation prior and the update step.
package gaussian

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

// Options contains configuration options for the gaussian rule.
type Options struct {
	// Dimension is the fixed pattern dimensionality.
	Dimension int `validate:"gt=0"`

	// InitialVariance is the per-axis variance a freshly seeded
	// category starts with. It also acts as the regularization floor
	// for the rank-1 variance update, keeping the diagonal
	// covariance positive definite.
	InitialVariance float64 `validate:"gt=0"`
}

// DefaultOptions contains the default configuration options for the
// gaussian rule.
var DefaultOptions = Options{
	Dimension:       0,
	InitialVariance: 0.01,
}

// Category is a diagonal-covariance Gaussian cluster representative.
type Category struct {
	Idx      int
	Mean     []float64
	Variance []float64
	Samples  uint64
}

// Index returns the category's creation index.
func (c *Category) Index() int { return c.Idx }

// Dimension returns the input dimensionality of the category.
func (c *Category) Dimension() int { return len(c.Mean) }

// Centroid returns the Gaussian mean.
func (c *Category) Centroid() []float64 { return c.Mean }

// SampleCount returns the number of absorbed patterns.
func (c *Category) SampleCount() uint64 { return c.Samples }

// Clone returns a deep copy of the category.
func (c *Category) Clone() geometry.Category {
	return &Category{
		Idx:      c.Idx,
		Mean:     slices.Clone(c.Mean),
		Variance: slices.Clone(c.Variance),
		Samples:  c.Samples,
	}
}

// Rule implements Gaussian accept/update semantics.
type Rule struct {
	opts Options
}

// New creates a new gaussian rule. Dimension is required.
func New(optFns ...func(o *Options)) (*Rule, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := geometry.ValidateOptions("gaussian", opts); err != nil {
		return nil, err
	}
	return &Rule{opts: opts}, nil
}

// Name identifies the shape.
func (*Rule) Name() string { return "Gaussian" }

// Dimension returns the expected pattern dimensionality.
func (r *Rule) Dimension() int { return r.opts.Dimension }

// mahalanobis returns the mean per-axis squared Mahalanobis distance
// of p from c, with variances floored at epsilon.
func (r *Rule) mahalanobis(p pattern.Pattern, c *Category, params geometry.Params) float64 {
	var sum float64
	for i, v := range p {
		s2 := geometry.Clamp(c.Variance[i], params.Epsilon)
		d := v - c.Mean[i]
		sum += d * d / s2
	}
	return sum / float64(len(p))
}

// Activation is the log-likelihood score: sample-count prior minus the
// Mahalanobis term minus the log-volume penalty. Values may be
// negative; only their ordering matters.
func (r *Rule) Activation(p pattern.Pattern, c geometry.Category, params geometry.Params) float64 {
	gc, ok := c.(*Category)
	if !ok {
		return math.Inf(-1)
	}
	var logVol float64
	for _, s2 := range gc.Variance {
		logVol += math.Log(geometry.Clamp(s2, params.Epsilon))
	}
	return math.Log(float64(gc.Samples)) - 0.5*r.mahalanobis(p, gc, params)*float64(len(p)) - 0.5*logVol
}

// Membership is the normalized likelihood exp(-dis/2), which is 1
// exactly at the mean.
func (r *Rule) Membership(p pattern.Pattern, c geometry.Category, params geometry.Params) float64 {
	gc, ok := c.(*Category)
	if !ok {
		return 0
	}
	return math.Exp(-0.5 * r.mahalanobis(p, gc, params))
}

// Seed creates a new category with its mean exactly on p and variances
// at the configured initial value.
func (r *Rule) Seed(index int, p pattern.Pattern) geometry.Category {
	variance := make([]float64, len(p))
	for i := range variance {
		variance[i] = r.opts.InitialVariance
	}
	return &Category{
		Idx:      index,
		Mean:     p.Clone(),
		Variance: variance,
		Samples:  1,
	}
}

// Update performs the sample-weighted mean shift and the rank-1
// diagonal variance update. The blend weight is 1/(n+1) capped at the
// learning rate, so early samples move the category quickly while a
// mature category stabilizes; variances are floored at the initial
// variance to stay positive definite.
func (r *Rule) Update(p pattern.Pattern, c geometry.Category, params geometry.Params) error {
	gc, ok := c.(*Category)
	if !ok {
		return &geometry.ErrCategoryShape{Rule: r.Name(), Got: c}
	}

	gc.Samples++
	w := 1 / float64(gc.Samples)
	if w > params.LearningRate {
		w = params.LearningRate
	}
	for i, v := range p {
		gc.Mean[i] += w * (v - gc.Mean[i])
		d := v - gc.Mean[i]
		s2 := (1-w)*gc.Variance[i] + w*d*d
		gc.Variance[i] = geometry.Clamp(s2, r.opts.InitialVariance*w)
	}
	return nil
}
