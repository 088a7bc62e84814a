package geometry

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Params is the immutable per-operation configuration consumed by the
// matcher and the shape rules. Construct it with NewParams; invalid
// values are a constructor-time error and are never clamped silently.
//
// Copy-with-override helpers (WithVigilance, WithLearningRate) return a
// modified copy, leaving the receiver untouched. They are the mechanism
// behind the transient vigilance raise in match tracking.
type Params struct {
	// Vigilance is the minimum membership required for resonance.
	Vigilance float64 `validate:"gte=0,lte=1"`

	// LearningRate controls how far an update moves a category
	// toward the pattern.
	LearningRate float64 `validate:"gt=0,lte=1"`

	// Choice is the ART choice parameter (activation tie-break bias
	// toward larger categories when small).
	Choice float64 `validate:"gte=0"`

	// Epsilon is the numeric floor applied to radii, variances and
	// saliences to avoid degenerate activations.
	Epsilon float64 `validate:"gt=0"`

	// Workers is the parallelism hint for activation scoring.
	// Zero or one means serial scoring.
	Workers int `validate:"gte=0"`
}

// DefaultParams are the baseline parameters used when no overrides are
// given.
var DefaultParams = Params{
	Vigilance:    0.75,
	LearningRate: 0.5,
	Choice:       0.001,
	Epsilon:      1e-9,
	Workers:      0,
}

// NewParams builds a validated Params value starting from
// DefaultParams.
func NewParams(optFns ...func(p *Params)) (Params, error) {
	p := DefaultParams
	for _, fn := range optFns {
		fn(&p)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate checks the parameter invariants. A zero-value Params is
// invalid (LearningRate and Epsilon must be positive).
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("geometry: invalid params: %w", err)
	}
	return nil
}

// ValidateOptions validates a shape Options struct with the shared
// validator, prefixing failures with the shape name. Shape packages
// call it from their constructors so invalid geometry is always a
// construction error, never a runtime fault.
func ValidateOptions(shape string, opts any) error {
	if err := validate.Struct(opts); err != nil {
		return fmt.Errorf("%s: invalid options: %w", shape, err)
	}
	return nil
}

// WithVigilance returns a copy of p with the vigilance replaced.
// The value is not validated here; match tracking may push it
// arbitrarily close to (but never above) 1.
func (p Params) WithVigilance(rho float64) Params {
	if rho > 1 {
		rho = 1
	}
	p.Vigilance = rho
	return p
}

// WithLearningRate returns a copy of p with the learning rate replaced.
func (p Params) WithLearningRate(beta float64) Params {
	p.LearningRate = beta
	return p
}

// WithWorkers returns a copy of p with the parallelism hint replaced.
func (p Params) WithWorkers(n int) Params {
	p.Workers = n
	return p
}
