// Package ellipsoid implements hyper-ellipsoidal categories: a center,
// per-axis radii and an orientation parameter mu that floors the minor
// axes at a fraction of the largest radius.
package ellipsoid

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

// Options contains configuration options for the ellipsoid rule.
type Options struct {
	// Dimension is the fixed pattern dimensionality.
	// It must be > 0 and is enforced for all operations.
	Dimension int `validate:"gt=0"`

	// InitialRadius is the per-axis radius a freshly seeded category
	// starts with. Zero is allowed; distances then fall back to the
	// epsilon floor from Params.
	InitialRadius float64 `validate:"gte=0"`

	// Mu is the axis-ratio floor in (0, 1]: the effective radius of
	// every axis is at least Mu times the largest axis radius, which
	// bounds the eccentricity of the ellipsoid.
	Mu float64 `validate:"gt=0,lte=1"`
}

// DefaultOptions contains the default configuration options for the
// ellipsoid rule.
var DefaultOptions = Options{
	Dimension:     0,
	InitialRadius: 0,
	Mu:            1.0,
}

// Category is a hyper-ellipsoidal cluster representative.
type Category struct {
	Idx     int
	Center  []float64
	Radii   []float64
	Mu      float64
	Samples uint64
}

// Index returns the category's creation index.
func (c *Category) Index() int { return c.Idx }

// Dimension returns the input dimensionality of the category.
func (c *Category) Dimension() int { return len(c.Center) }

// Centroid returns the ellipsoid center.
func (c *Category) Centroid() []float64 { return c.Center }

// SampleCount returns the number of absorbed patterns.
func (c *Category) SampleCount() uint64 { return c.Samples }

// Clone returns a deep copy of the category.
func (c *Category) Clone() geometry.Category {
	return &Category{
		Idx:     c.Idx,
		Center:  slices.Clone(c.Center),
		Radii:   slices.Clone(c.Radii),
		Mu:      c.Mu,
		Samples: c.Samples,
	}
}

// Rule implements ellipsoid accept/update semantics.
type Rule struct {
	opts Options
}

// New creates a new ellipsoid rule. Dimension is required.
func New(optFns ...func(o *Options)) (*Rule, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := geometry.ValidateOptions("ellipsoid", opts); err != nil {
		return nil, err
	}
	return &Rule{opts: opts}, nil
}

// Name identifies the shape.
func (*Rule) Name() string { return "Ellipsoid" }

// Dimension returns the expected pattern dimensionality.
func (r *Rule) Dimension() int { return r.opts.Dimension }

// distance returns the radius-normalized distance of p from c, zero
// when p sits exactly on the center. Axes are floored at mu*rmax and
// at epsilon so a zero-radius category never divides by zero.
func (r *Rule) distance(p pattern.Pattern, c *Category, params geometry.Params) float64 {
	rmax := 0.0
	for _, rad := range c.Radii {
		if rad > rmax {
			rmax = rad
		}
	}
	floor := geometry.Clamp(c.Mu*rmax, params.Epsilon)

	var sum float64
	for i, v := range p {
		axis := geometry.Clamp(c.Radii[i], floor)
		d := (v - c.Center[i]) / axis
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(p)))
}

// Activation scores p against c with the choice function 1/(alpha+dis).
func (r *Rule) Activation(p pattern.Pattern, c geometry.Category, params geometry.Params) float64 {
	ec, ok := c.(*Category)
	if !ok {
		return 0
	}
	return 1 / (geometry.Choice(params) + r.distance(p, ec, params))
}

// Membership returns 1/(1+dis), which is 1 exactly at the center and
// decays monotonically with the radius-normalized distance.
func (r *Rule) Membership(p pattern.Pattern, c geometry.Category, params geometry.Params) float64 {
	ec, ok := c.(*Category)
	if !ok {
		return 0
	}
	return 1 / (1 + r.distance(p, ec, params))
}

// Seed creates a new category centered exactly on p.
func (r *Rule) Seed(index int, p pattern.Pattern) geometry.Category {
	radii := make([]float64, len(p))
	for i := range radii {
		radii[i] = r.opts.InitialRadius
	}
	return &Category{
		Idx:     index,
		Center:  p.Clone(),
		Radii:   radii,
		Mu:      r.opts.Mu,
		Samples: 1,
	}
}

// Update moves the center toward p and grows each axis radius toward
// the distance needed to enclose p, both at the learning rate. Radii
// never shrink, so a category always encloses everything it has
// resonated with up to the blend factor.
func (r *Rule) Update(p pattern.Pattern, c geometry.Category, params geometry.Params) error {
	ec, ok := c.(*Category)
	if !ok {
		return &geometry.ErrCategoryShape{Rule: r.Name(), Got: c}
	}

	beta := params.LearningRate
	for i, v := range p {
		ec.Center[i] += beta * (v - ec.Center[i])
		reach := math.Abs(v - ec.Center[i])
		if reach > ec.Radii[i] {
			ec.Radii[i] += beta * (reach - ec.Radii[i])
		}
	}
	ec.Samples++
	return nil
}
