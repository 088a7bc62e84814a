// Package geometry defines the interfaces shared by all category
// shapes: a Category is one cluster representative, a Rule implements
// the activation, membership (vigilance) and update semantics for one
// shape. Concrete shapes live in the subpackages ellipsoid, gaussian,
// fusion and salience.
package geometry

import (
	"fmt"
	"math"

	"github.com/hellblazer/art/pattern"
)

// Category is a persistent cluster representative. A category's
// creation index is its stable identity for the lifetime of the store;
// only its geometry is ever mutated, and only under the owning
// module's writer lock.
type Category interface {
	// Index returns the category's creation index.
	Index() int

	// Dimension returns the input dimensionality of the category.
	Dimension() int

	// Centroid returns the category's representative location.
	// The returned slice aliases internal memory; callers must treat
	// it as read-only.
	Centroid() []float64

	// SampleCount returns the number of patterns absorbed by the
	// category, including the seeding pattern.
	SampleCount() uint64

	// Clone returns a deep copy of the category.
	Clone() Category
}

// Rule implements accept/update semantics for one category shape.
//
// Activation ranks candidate categories (higher is better) and
// Membership drives the vigilance test (always in [0, 1], exactly 1
// for a pattern at the category's representative location). Both must
// be deterministic and numerically stable: degenerate geometry (zero
// variance, zero radius, zero salience) is clamped to Params.Epsilon,
// never surfaced as NaN or an error.
type Rule interface {
	// Name identifies the shape, e.g. "Ellipsoid".
	Name() string

	// Dimension returns the expected pattern dimensionality.
	Dimension() int

	// Activation scores how strongly p activates c.
	Activation(p pattern.Pattern, c Category, params Params) float64

	// Membership returns the match quality of p against c in [0, 1].
	Membership(p pattern.Pattern, c Category, params Params) float64

	// Seed creates a new category at the given creation index,
	// centered exactly on p.
	Seed(index int, p pattern.Pattern) Category

	// Update moves c toward p at the rate given by
	// Params.LearningRate. It mutates c in place and is only called
	// after c passed the vigilance test.
	Update(p pattern.Pattern, c Category, params Params) error
}

// ErrCategoryShape is returned by Update when a rule is handed a
// category created by a different rule.
type ErrCategoryShape struct {
	Rule string
	Got  Category
}

func (e *ErrCategoryShape) Error() string {
	return fmt.Sprintf("%s: category %d has incompatible shape %T", e.Rule, e.Got.Index(), e.Got)
}

// Clamp returns v floored at eps. All shape packages use it to keep
// radii, variances and saliences away from zero.
func Clamp(v, eps float64) float64 {
	if v < eps {
		return eps
	}
	return v
}

// Choice returns the choice denominator term max(alpha, eps) so that
// activation functions of the form 1/(alpha+dis) stay finite for a
// pattern sitting exactly on a category's representative.
func Choice(params Params) float64 {
	return math.Max(params.Choice, params.Epsilon)
}
