// Package fusion implements multi-channel categories: one sub-category
// per input channel, each with its own geometry, combined through a
// channel weight vector whose mass stays at a fixed reference.
package fusion

import (
	"encoding/gob"
	"fmt"
	"slices"

	"github.com/hellblazer/art/geometry"
	"github.com/hellblazer/art/pattern"
)

func init() {
	gob.Register(&Category{})
}

// Compile-time check to ensure Rule satisfies the geometry interface.
var _ geometry.Rule = (*Rule)(nil)

// Options contains configuration options for the fusion rule.
type Options struct {
	// Weights are the initial channel weights. If nil, every channel
	// starts at 1. Length must match the channel count.
	Weights []float64

	// WeightReference is the total weight mass preserved by
	// renormalization. If zero it defaults to the channel count, so
	// uniform weights start at exactly 1 each.
	WeightReference float64 `validate:"gte=0"`

	// AdaptWeights enables per-update channel weight adaptation
	// toward the channels that match best, followed by
	// renormalization to WeightReference.
	AdaptWeights bool
}

// DefaultOptions contains the default configuration options for the
// fusion rule.
var DefaultOptions = Options{
	Weights:         nil,
	WeightReference: 0,
	AdaptWeights:    true,
}

// Category is a multi-channel cluster representative: one
// sub-category per channel plus the channel weight vector.
type Category struct {
	Idx     int
	Parts   []geometry.Category
	Weights []float64
	Samples uint64
}

// Index returns the category's creation index.
func (c *Category) Index() int { return c.Idx }

// Dimension returns the total input dimensionality across channels.
func (c *Category) Dimension() int {
	d := 0
	for _, p := range c.Parts {
		d += p.Dimension()
	}
	return d
}

// Centroid returns the concatenation of the channel centroids.
func (c *Category) Centroid() []float64 {
	out := make([]float64, 0, c.Dimension())
	for _, p := range c.Parts {
		out = append(out, p.Centroid()...)
	}
	return out
}

// SampleCount returns the number of absorbed patterns.
func (c *Category) SampleCount() uint64 { return c.Samples }

// Clone returns a deep copy of the category.
func (c *Category) Clone() geometry.Category {
	parts := make([]geometry.Category, len(c.Parts))
	for i, p := range c.Parts {
		parts[i] = p.Clone()
	}
	return &Category{
		Idx:     c.Idx,
		Parts:   parts,
		Weights: slices.Clone(c.Weights),
		Samples: c.Samples,
	}
}

// Rule implements multi-channel accept/update semantics by delegating
// to one sub-rule per channel. Channels should use rules from the same
// family so their activation scales are comparable.
type Rule struct {
	channels  []geometry.Rule
	offsets   []int // channel start offsets into the concatenated pattern
	dimension int
	opts      Options
}

// New creates a new fusion rule over the given channel rules.
// At least one channel is required, and the weight vector (when given)
// must match the channel count; a mismatch is a construction error.
func New(channels []geometry.Rule, optFns ...func(o *Options)) (*Rule, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("fusion: at least one channel required, got 0")
	}
	if opts.Weights != nil && len(opts.Weights) != len(channels) {
		return nil, fmt.Errorf("fusion: weight count mismatch: channels=%d, weights=%d", len(channels), len(opts.Weights))
	}
	if err := geometry.ValidateOptions("fusion", opts); err != nil {
		return nil, err
	}
	for _, w := range opts.Weights {
		if w <= 0 {
			return nil, fmt.Errorf("fusion: channel weights must be positive, got %v", w)
		}
	}
	if opts.WeightReference == 0 {
		opts.WeightReference = float64(len(channels))
	}
	if opts.Weights == nil {
		opts.Weights = make([]float64, len(channels))
		for i := range opts.Weights {
			opts.Weights[i] = 1
		}
	}
	renormalize(opts.Weights, opts.WeightReference)

	offsets := make([]int, len(channels))
	dim := 0
	for i, ch := range channels {
		if ch == nil {
			return nil, fmt.Errorf("fusion: channel %d is nil", i)
		}
		offsets[i] = dim
		dim += ch.Dimension()
	}

	return &Rule{
		channels:  channels,
		offsets:   offsets,
		dimension: dim,
		opts:      opts,
	}, nil
}

// Name identifies the shape.
func (*Rule) Name() string { return "Fusion" }

// Dimension returns the total pattern dimensionality across channels.
func (r *Rule) Dimension() int { return r.dimension }

// slice returns the channel-k view of the concatenated pattern.
func (r *Rule) slice(p pattern.Pattern, k int) pattern.Pattern {
	lo := r.offsets[k]
	hi := lo + r.channels[k].Dimension()
	return p.Slice(lo, hi)
}

// Activation is the weighted sum of the channel activations.
func (r *Rule) Activation(p pattern.Pattern, c geometry.Category, params geometry.Params) float64 {
	fc, ok := c.(*Category)
	if !ok || len(fc.Parts) != len(r.channels) {
		return 0
	}
	var sum float64
	for k, ch := range r.channels {
		sum += fc.Weights[k] * ch.Activation(r.slice(p, k), fc.Parts[k], params)
	}
	return sum / r.opts.WeightReference
}

// Membership is the weight-normalized mean of the channel memberships,
// so it stays in [0, 1] and is 1 exactly when every channel sits on
// its sub-category's representative.
func (r *Rule) Membership(p pattern.Pattern, c geometry.Category, params geometry.Params) float64 {
	fc, ok := c.(*Category)
	if !ok || len(fc.Parts) != len(r.channels) {
		return 0
	}
	var sum, mass float64
	for k, ch := range r.channels {
		sum += fc.Weights[k] * ch.Membership(r.slice(p, k), fc.Parts[k], params)
		mass += fc.Weights[k]
	}
	return sum / geometry.Clamp(mass, params.Epsilon)
}

// Seed creates a new category by seeding every channel on its slice of
// p, starting from the configured channel weights.
func (r *Rule) Seed(index int, p pattern.Pattern) geometry.Category {
	parts := make([]geometry.Category, len(r.channels))
	for k, ch := range r.channels {
		parts[k] = ch.Seed(index, r.slice(p, k).Clone())
	}
	return &Category{
		Idx:     index,
		Parts:   parts,
		Weights: slices.Clone(r.opts.Weights),
		Samples: 1,
	}
}

// Update updates every channel independently, then (when enabled)
// adapts the channel weights toward the channels that matched best and
// renormalizes them back to the weight reference.
func (r *Rule) Update(p pattern.Pattern, c geometry.Category, params geometry.Params) error {
	fc, ok := c.(*Category)
	if !ok || len(fc.Parts) != len(r.channels) {
		return &geometry.ErrCategoryShape{Rule: r.Name(), Got: c}
	}

	memberships := make([]float64, len(r.channels))
	for k, ch := range r.channels {
		memberships[k] = ch.Membership(r.slice(p, k), fc.Parts[k], params)
	}
	for k, ch := range r.channels {
		if err := ch.Update(r.slice(p, k), fc.Parts[k], params); err != nil {
			return err
		}
	}

	if r.opts.AdaptWeights {
		lambda := params.LearningRate
		for k := range fc.Weights {
			fc.Weights[k] = (1-lambda)*fc.Weights[k] + lambda*memberships[k]*r.opts.WeightReference/float64(len(r.channels))
			fc.Weights[k] = geometry.Clamp(fc.Weights[k], params.Epsilon)
		}
		renormalize(fc.Weights, r.opts.WeightReference)
	}
	fc.Samples++
	return nil
}

// renormalize rescales w so its mass equals ref.
func renormalize(w []float64, ref float64) {
	var mass float64
	for _, v := range w {
		mass += v
	}
	if mass == 0 {
		return
	}
	scale := ref / mass
	for i := range w {
		w[i] *= scale
	}
}
