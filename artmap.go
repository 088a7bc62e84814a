package art

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hellblazer/art/pattern"
)

// ErrSameNetwork is returned when a mapper is constructed over a
// single network playing both sides.
var ErrSameNetwork = errors.New("mapper requires two distinct networks")

// MapOptions configures a Mapper.
type MapOptions struct {
	// MaxSearchAttempts bounds the match-tracking search on the input
	// side. When exhausted, a fresh input category is created.
	MaxSearchAttempts int

	// VigilanceIncrement is added to the rejected winner's membership
	// when raising vigilance during match tracking. Must be positive
	// so each raise strictly excludes the rejected winner.
	VigilanceIncrement float64

	// Logger for match-tracking events. Defaults to NoopLogger.
	Logger *Logger

	// Metrics collects match-tracking metrics. Defaults to
	// NoopMetricsCollector.
	Metrics MetricsCollector
}

// DefaultMapOptions returns the default mapper options.
func DefaultMapOptions() MapOptions {
	return MapOptions{
		MaxSearchAttempts:  16,
		VigilanceIncrement: 1e-6,
		Logger:             NoopLogger(),
		Metrics:            NoopMetricsCollector{},
	}
}

// MapResult is the outcome of one supervised training step.
type MapResult struct {
	// InputCategory is the input-side category the pattern settled
	// into.
	InputCategory int

	// OutputCategory is the output-side category the target settled
	// into.
	OutputCategory int

	// InputCreated reports whether the input side allocated a new
	// category.
	InputCreated bool

	// OutputCreated reports whether the output side allocated a new
	// category.
	OutputCreated bool

	// Attempts is the number of input-side searches it took to
	// resolve, 1 when the first winner was consistent.
	Attempts int

	// Vigilance is the input-side vigilance in effect when the step
	// resolved.
	Vigilance float64

	// Exhausted reports that match tracking hit MaxSearchAttempts and
	// fell back to creating a fresh input category.
	Exhausted bool
}

// Prediction is the outcome of a supervised lookup.
type Prediction struct {
	// InputCategory is the resonant input-side category, or NoMatch.
	InputCategory int

	// OutputCategory is the associated output-side category, or
	// NoMatch when the input side missed or the winner is unmapped.
	OutputCategory int

	// Membership is the input-side winner's membership.
	Membership float64
}

// Mapper implements the ARTMAP association between two networks: an
// input-side network whose categories are linked one-to-one onto
// output-side categories, with match tracking to resolve conflicts.
//
// When a training pair would associate an input category with a
// different output category than it already maps to, the mapper
// transiently raises the input-side vigilance just above the rejected
// winner's membership and searches again, excluding prior rejects.
// The raise is per-pattern; the base vigilance is untouched.
//
// Lock order is fixed: mapper, then input network, then output
// network. Both networks are locked exclusively for the whole training
// step, so a step is atomic across all three structures.
type Mapper struct {
	mu   sync.RWMutex
	a    *Network
	b    *Network
	opts MapOptions

	// assoc maps input-side category indices to output-side ones.
	assoc map[int]int
}

// NewMapper creates a mapper over an input-side network a and an
// output-side network b.
func NewMapper(a, b *Network, optFns ...func(*MapOptions)) (*Mapper, error) {
	if a == nil || b == nil {
		return nil, errors.New("mapper requires both networks")
	}
	if a == b {
		return nil, ErrSameNetwork
	}

	opts := DefaultMapOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxSearchAttempts <= 0 {
		opts.MaxSearchAttempts = 1
	}
	if opts.VigilanceIncrement <= 0 {
		opts.VigilanceIncrement = 1e-6
	}

	return &Mapper{
		a:     a,
		b:     b,
		opts:  opts,
		assoc: make(map[int]int),
	}, nil
}

// WithMaxSearchAttempts bounds the match-tracking search.
func WithMaxSearchAttempts(n int) func(*MapOptions) {
	return func(o *MapOptions) { o.MaxSearchAttempts = n }
}

// WithVigilanceIncrement sets the match-tracking raise increment.
func WithVigilanceIncrement(inc float64) func(*MapOptions) {
	return func(o *MapOptions) { o.VigilanceIncrement = inc }
}

// WithMapLogger sets the mapper's logger.
func WithMapLogger(logger *Logger) func(*MapOptions) {
	return func(o *MapOptions) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithMapMetrics sets the mapper's metrics collector.
func WithMapMetrics(m MetricsCollector) func(*MapOptions) {
	return func(o *MapOptions) {
		if m != nil {
			o.Metrics = m
		}
	}
}

// Train presents one supervised pair: the target pattern settles into
// an output-side category, then the input pattern is searched on the
// input side under match tracking until it lands in a category that
// maps to that output category, maps to nothing yet, or is freshly
// created.
func (m *Mapper) Train(ctx context.Context, in, out pattern.Pattern) (MapResult, error) {
	start := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.a.mu.Lock()
	defer m.a.mu.Unlock()
	m.b.mu.Lock()
	defer m.b.mu.Unlock()

	res, err := m.trainLocked(ctx, in, out)

	m.opts.Metrics.RecordLearn(time.Since(start), res.InputCreated, err)
	m.opts.Metrics.RecordMatchTracking(res.Attempts)
	return res, err
}

func (m *Mapper) trainLocked(ctx context.Context, in, out pattern.Pattern) (MapResult, error) {
	// Validate both sides before either mutates, so a bad pair never
	// leaves a half-trained step.
	if err := translateError(m.a.eng.CheckPattern(in)); err != nil {
		return MapResult{InputCategory: NoMatch, OutputCategory: NoMatch}, err
	}
	if err := translateError(m.b.eng.CheckPattern(out)); err != nil {
		return MapResult{InputCategory: NoMatch, OutputCategory: NoMatch}, err
	}

	bRes, err := m.b.learnLocked(ctx, out, m.b.params)
	if err != nil {
		return MapResult{InputCategory: NoMatch, OutputCategory: NoMatch}, err
	}

	result := MapResult{
		InputCategory:  NoMatch,
		OutputCategory: bRes.Index,
		OutputCreated:  bRes.Created,
		Vigilance:      m.a.params.Vigilance,
	}

	rho := m.a.params.Vigilance
	exclude := roaring.New()

	for attempt := 1; attempt <= m.opts.MaxSearchAttempts; attempt++ {
		result.Attempts = attempt
		result.Vigilance = rho

		params := m.a.params.WithVigilance(rho)
		aRes, err := m.a.searchLocked(ctx, in, params, exclude)
		if err != nil {
			return result, err
		}

		if !aRes.Matched() {
			created, err := m.a.createLocked(in)
			if err != nil {
				return result, err
			}
			m.assoc[created.Index] = bRes.Index
			result.InputCategory = created.Index
			result.InputCreated = true
			return result, nil
		}

		mapped, bound := m.assoc[aRes.Index]
		if !bound || mapped == bRes.Index {
			if err := m.a.commitLocked(in, params, aRes.Index); err != nil {
				return result, err
			}
			m.assoc[aRes.Index] = bRes.Index
			result.InputCategory = aRes.Index
			return result, nil
		}

		// Conflict: the winner is committed elsewhere. Raise the
		// vigilance just above its membership and search again
		// without it.
		exclude.Add(uint32(aRes.Index))
		raised := aRes.Membership + m.opts.VigilanceIncrement
		if raised <= rho {
			raised = rho + m.opts.VigilanceIncrement
		}
		rho = raised
		m.opts.Logger.LogMatchTracking(ctx, attempt, aRes.Index, rho)
	}

	// Search bound hit: place the pair in a fresh input category so
	// training always terminates with a consistent association.
	created, err := m.a.createLocked(in)
	if err != nil {
		return result, err
	}
	m.assoc[created.Index] = bRes.Index
	result.InputCategory = created.Index
	result.InputCreated = true
	result.Exhausted = true
	return result, nil
}

// Predict looks up the output-side category associated with the
// input pattern's resonant category. An unmapped winner or an
// input-side miss yields OutputCategory == NoMatch; neither is an
// error.
func (m *Mapper) Predict(ctx context.Context, in pattern.Pattern) (Prediction, error) {
	start := time.Now()

	m.mu.RLock()
	defer m.mu.RUnlock()
	m.a.mu.RLock()
	defer m.a.mu.RUnlock()

	res, err := m.a.searchLocked(ctx, in, m.a.params, nil)
	if err != nil {
		m.opts.Metrics.RecordPredict(time.Since(start), false, err)
		return Prediction{InputCategory: NoMatch, OutputCategory: NoMatch}, err
	}

	pred := Prediction{
		InputCategory:  res.Index,
		OutputCategory: NoMatch,
		Membership:     res.Membership,
	}
	if res.Matched() {
		if mapped, ok := m.assoc[res.Index]; ok {
			pred.OutputCategory = mapped
		}
	}

	m.opts.Metrics.RecordPredict(time.Since(start), pred.OutputCategory != NoMatch, nil)
	return pred, nil
}

// Associations returns a copy of the current input-to-output category
// map.
func (m *Mapper) Associations() map[int]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int]int, len(m.assoc))
	for k, v := range m.assoc {
		out[k] = v
	}
	return out
}

// InputNetwork returns the input-side network.
func (m *Mapper) InputNetwork() *Network { return m.a }

// OutputNetwork returns the output-side network.
func (m *Mapper) OutputNetwork() *Network { return m.b }
