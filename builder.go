// Package art provides online adaptive resonance clustering.
//
// This file implements shape-specific fluent builder APIs for creating
// and configuring networks. Builders are immutable - each method
// returns a new builder with the updated configuration.
package art

import (
	"golang.org/x/time/rate"

	"github.com/hellblazer/art/geometry"
	"github.com/hellblazer/art/geometry/ellipsoid"
	"github.com/hellblazer/art/geometry/fusion"
	"github.com/hellblazer/art/geometry/gaussian"
	"github.com/hellblazer/art/geometry/salience"
)

// paramsConfig holds the matcher parameters shared by every builder.
type paramsConfig struct {
	vigilance    float64
	learningRate float64
	choice       float64
	workers      int
}

func defaultParamsConfig() paramsConfig {
	return paramsConfig{
		vigilance:    geometry.DefaultParams.Vigilance,
		learningRate: geometry.DefaultParams.LearningRate,
		choice:       geometry.DefaultParams.Choice,
		workers:      geometry.DefaultParams.Workers,
	}
}

func (pc paramsConfig) params() (geometry.Params, error) {
	return geometry.NewParams(func(p *geometry.Params) {
		p.Vigilance = pc.vigilance
		p.LearningRate = pc.learningRate
		p.Choice = pc.choice
		p.Workers = pc.workers
	})
}

// networkConfig holds the facade options shared by every builder.
type networkConfig struct {
	logger       *Logger
	metrics      MetricsCollector
	randomSeed   *int64
	autoOptimize *rate.Limit
	autoOptFns   []func(*OptimizeOptions)
}

func (nc networkConfig) optFns() []func(*Options) {
	var fns []func(*Options)
	if nc.logger != nil {
		fns = append(fns, WithLogger(nc.logger))
	}
	if nc.metrics != nil {
		fns = append(fns, WithMetrics(nc.metrics))
	}
	if nc.randomSeed != nil {
		fns = append(fns, WithRandSeed(*nc.randomSeed))
	}
	if nc.autoOptimize != nil {
		fns = append(fns, WithAutoOptimize(*nc.autoOptimize, nc.autoOptFns...))
	}
	return fns
}

// =============================================================================
// Ellipsoid Builder (Immutable)
// =============================================================================

// Ellipsoid creates a builder for a network with hyper-ellipsoidal
// categories of the specified dimension.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration.
//
// Example:
//
//	net, err := art.Ellipsoid(4).
//	    Vigilance(0.9).
//	    InitialRadius(0.1).
//	    Mu(0.5).
//	    Build()
func Ellipsoid(dimension int) EllipsoidBuilder {
	return EllipsoidBuilder{
		dimension:     dimension,
		initialRadius: ellipsoid.DefaultOptions.InitialRadius,
		mu:            ellipsoid.DefaultOptions.Mu,
		pc:            defaultParamsConfig(),
	}
}

// EllipsoidBuilder is an immutable fluent builder for ellipsoid-based
// networks.
type EllipsoidBuilder struct {
	dimension     int
	initialRadius float64
	mu            float64
	pc            paramsConfig
	nc            networkConfig
}

// InitialRadius sets the per-axis radius of freshly seeded categories.
func (b EllipsoidBuilder) InitialRadius(r float64) EllipsoidBuilder {
	b.initialRadius = r
	return b
}

// Mu sets the axis-ratio floor in (0, 1]. Lower values allow more
// eccentric ellipsoids.
func (b EllipsoidBuilder) Mu(mu float64) EllipsoidBuilder {
	b.mu = mu
	return b
}

// Vigilance sets the resonance threshold.
func (b EllipsoidBuilder) Vigilance(rho float64) EllipsoidBuilder {
	b.pc.vigilance = rho
	return b
}

// LearningRate sets the update blend rate.
func (b EllipsoidBuilder) LearningRate(beta float64) EllipsoidBuilder {
	b.pc.learningRate = beta
	return b
}

// Choice sets the activation choice parameter.
func (b EllipsoidBuilder) Choice(alpha float64) EllipsoidBuilder {
	b.pc.choice = alpha
	return b
}

// Workers sets the parallelism hint for activation scoring.
func (b EllipsoidBuilder) Workers(n int) EllipsoidBuilder {
	b.pc.workers = n
	return b
}

// Logger sets the structured logger for operation tracing.
func (b EllipsoidBuilder) Logger(l *Logger) EllipsoidBuilder {
	b.nc.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b EllipsoidBuilder) Metrics(mc MetricsCollector) EllipsoidBuilder {
	b.nc.metrics = mc
	return b
}

// RandomSeed seeds the optimization sampler for reproducible runs.
func (b EllipsoidBuilder) RandomSeed(seed int64) EllipsoidBuilder {
	b.nc.randomSeed = &seed
	return b
}

// AutoOptimize enables throttled opportunistic optimization passes.
func (b EllipsoidBuilder) AutoOptimize(limit rate.Limit, optFns ...func(*OptimizeOptions)) EllipsoidBuilder {
	b.nc.autoOptimize = &limit
	b.nc.autoOptFns = optFns
	return b
}

// Build creates the ellipsoid-based network.
func (b EllipsoidBuilder) Build() (*Network, error) {
	rule, err := ellipsoid.New(func(o *ellipsoid.Options) {
		o.Dimension = b.dimension
		o.InitialRadius = b.initialRadius
		o.Mu = b.mu
	})
	if err != nil {
		return nil, err
	}
	params, err := b.pc.params()
	if err != nil {
		return nil, err
	}
	return NewNetwork(rule, params, b.nc.optFns()...)
}

// MustBuild creates the network, panicking on error.
func (b EllipsoidBuilder) MustBuild() *Network {
	n, err := b.Build()
	if err != nil {
		panic(err)
	}
	return n
}

// =============================================================================
// Gaussian Builder (Immutable)
// =============================================================================

// Gaussian creates a builder for a network with diagonal-covariance
// Gaussian categories of the specified dimension.
//
// Example:
//
//	net, err := art.Gaussian(8).
//	    Vigilance(0.8).
//	    InitialVariance(0.05).
//	    Build()
func Gaussian(dimension int) GaussianBuilder {
	return GaussianBuilder{
		dimension:       dimension,
		initialVariance: gaussian.DefaultOptions.InitialVariance,
		pc:              defaultParamsConfig(),
	}
}

// GaussianBuilder is an immutable fluent builder for Gaussian-based
// networks.
type GaussianBuilder struct {
	dimension       int
	initialVariance float64
	pc              paramsConfig
	nc              networkConfig
}

// InitialVariance sets the seed variance and the regularization floor
// for the variance update.
func (b GaussianBuilder) InitialVariance(v float64) GaussianBuilder {
	b.initialVariance = v
	return b
}

// Vigilance sets the resonance threshold.
func (b GaussianBuilder) Vigilance(rho float64) GaussianBuilder {
	b.pc.vigilance = rho
	return b
}

// LearningRate caps the per-update blend weight.
func (b GaussianBuilder) LearningRate(beta float64) GaussianBuilder {
	b.pc.learningRate = beta
	return b
}

// Choice sets the activation choice parameter.
func (b GaussianBuilder) Choice(alpha float64) GaussianBuilder {
	b.pc.choice = alpha
	return b
}

// Workers sets the parallelism hint for activation scoring.
func (b GaussianBuilder) Workers(n int) GaussianBuilder {
	b.pc.workers = n
	return b
}

// Logger sets the structured logger for operation tracing.
func (b GaussianBuilder) Logger(l *Logger) GaussianBuilder {
	b.nc.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b GaussianBuilder) Metrics(mc MetricsCollector) GaussianBuilder {
	b.nc.metrics = mc
	return b
}

// RandomSeed seeds the optimization sampler for reproducible runs.
func (b GaussianBuilder) RandomSeed(seed int64) GaussianBuilder {
	b.nc.randomSeed = &seed
	return b
}

// AutoOptimize enables throttled opportunistic optimization passes.
func (b GaussianBuilder) AutoOptimize(limit rate.Limit, optFns ...func(*OptimizeOptions)) GaussianBuilder {
	b.nc.autoOptimize = &limit
	b.nc.autoOptFns = optFns
	return b
}

// Build creates the Gaussian-based network.
func (b GaussianBuilder) Build() (*Network, error) {
	rule, err := gaussian.New(func(o *gaussian.Options) {
		o.Dimension = b.dimension
		o.InitialVariance = b.initialVariance
	})
	if err != nil {
		return nil, err
	}
	params, err := b.pc.params()
	if err != nil {
		return nil, err
	}
	return NewNetwork(rule, params, b.nc.optFns()...)
}

// MustBuild creates the network, panicking on error.
func (b GaussianBuilder) MustBuild() *Network {
	n, err := b.Build()
	if err != nil {
		panic(err)
	}
	return n
}

// =============================================================================
// Salience Builder (Immutable)
// =============================================================================

// Salience creates a builder for a network with salience-weighted
// categories of the specified dimension. Features that deviate
// consistently lose relevance in the match.
//
// Example:
//
//	net, err := art.Salience(16).
//	    Vigilance(0.7).
//	    Decay(0.05).
//	    Tolerance(0.3).
//	    Build()
func Salience(dimension int) SalienceBuilder {
	return SalienceBuilder{
		dimension: dimension,
		decay:     salience.DefaultOptions.Decay,
		tolerance: salience.DefaultOptions.Tolerance,
		pc:        defaultParamsConfig(),
	}
}

// SalienceBuilder is an immutable fluent builder for salience-based
// networks.
type SalienceBuilder struct {
	dimension int
	decay     float64
	tolerance float64
	pc        paramsConfig
	nc        networkConfig
}

// Decay sets the relevance blend rate.
func (b SalienceBuilder) Decay(d float64) SalienceBuilder {
	b.decay = d
	return b
}

// Tolerance sets the deviation scale of the relevance update.
func (b SalienceBuilder) Tolerance(t float64) SalienceBuilder {
	b.tolerance = t
	return b
}

// Vigilance sets the resonance threshold.
func (b SalienceBuilder) Vigilance(rho float64) SalienceBuilder {
	b.pc.vigilance = rho
	return b
}

// LearningRate sets the update blend rate.
func (b SalienceBuilder) LearningRate(beta float64) SalienceBuilder {
	b.pc.learningRate = beta
	return b
}

// Choice sets the activation choice parameter.
func (b SalienceBuilder) Choice(alpha float64) SalienceBuilder {
	b.pc.choice = alpha
	return b
}

// Workers sets the parallelism hint for activation scoring.
func (b SalienceBuilder) Workers(n int) SalienceBuilder {
	b.pc.workers = n
	return b
}

// Logger sets the structured logger for operation tracing.
func (b SalienceBuilder) Logger(l *Logger) SalienceBuilder {
	b.nc.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b SalienceBuilder) Metrics(mc MetricsCollector) SalienceBuilder {
	b.nc.metrics = mc
	return b
}

// RandomSeed seeds the optimization sampler for reproducible runs.
func (b SalienceBuilder) RandomSeed(seed int64) SalienceBuilder {
	b.nc.randomSeed = &seed
	return b
}

// AutoOptimize enables throttled opportunistic optimization passes.
func (b SalienceBuilder) AutoOptimize(limit rate.Limit, optFns ...func(*OptimizeOptions)) SalienceBuilder {
	b.nc.autoOptimize = &limit
	b.nc.autoOptFns = optFns
	return b
}

// Build creates the salience-based network.
func (b SalienceBuilder) Build() (*Network, error) {
	rule, err := salience.New(func(o *salience.Options) {
		o.Dimension = b.dimension
		o.Decay = b.decay
		o.Tolerance = b.tolerance
	})
	if err != nil {
		return nil, err
	}
	params, err := b.pc.params()
	if err != nil {
		return nil, err
	}
	return NewNetwork(rule, params, b.nc.optFns()...)
}

// MustBuild creates the network, panicking on error.
func (b SalienceBuilder) MustBuild() *Network {
	n, err := b.Build()
	if err != nil {
		panic(err)
	}
	return n
}

// =============================================================================
// Fusion Builder (Immutable)
// =============================================================================

// Fusion creates a builder for a multi-channel network over the given
// channel rules. Patterns are the concatenation of the channel
// segments in order.
//
// Example:
//
//	pos, _ := ellipsoid.New(func(o *ellipsoid.Options) { o.Dimension = 3 })
//	color, _ := gaussian.New(func(o *gaussian.Options) { o.Dimension = 3 })
//	net, err := art.Fusion(pos, color).
//	    Weights(2, 1).
//	    Vigilance(0.8).
//	    Build()
func Fusion(channels ...geometry.Rule) FusionBuilder {
	return FusionBuilder{
		channels:     channels,
		adaptWeights: fusion.DefaultOptions.AdaptWeights,
		pc:           defaultParamsConfig(),
	}
}

// FusionBuilder is an immutable fluent builder for multi-channel
// networks.
type FusionBuilder struct {
	channels     []geometry.Rule
	weights      []float64
	weightRef    float64
	adaptWeights bool
	pc           paramsConfig
	nc           networkConfig
}

// Weights sets the initial channel weights. The count must match the
// channel count; a mismatch is a Build error.
func (b FusionBuilder) Weights(w ...float64) FusionBuilder {
	b.weights = w
	return b
}

// WeightReference sets the total weight mass preserved by
// renormalization.
func (b FusionBuilder) WeightReference(ref float64) FusionBuilder {
	b.weightRef = ref
	return b
}

// AdaptWeights enables or disables per-update channel weight
// adaptation. Default: true.
func (b FusionBuilder) AdaptWeights(enabled bool) FusionBuilder {
	b.adaptWeights = enabled
	return b
}

// Vigilance sets the resonance threshold.
func (b FusionBuilder) Vigilance(rho float64) FusionBuilder {
	b.pc.vigilance = rho
	return b
}

// LearningRate sets the update blend rate.
func (b FusionBuilder) LearningRate(beta float64) FusionBuilder {
	b.pc.learningRate = beta
	return b
}

// Choice sets the activation choice parameter.
func (b FusionBuilder) Choice(alpha float64) FusionBuilder {
	b.pc.choice = alpha
	return b
}

// Workers sets the parallelism hint for activation scoring.
func (b FusionBuilder) Workers(n int) FusionBuilder {
	b.pc.workers = n
	return b
}

// Logger sets the structured logger for operation tracing.
func (b FusionBuilder) Logger(l *Logger) FusionBuilder {
	b.nc.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b FusionBuilder) Metrics(mc MetricsCollector) FusionBuilder {
	b.nc.metrics = mc
	return b
}

// RandomSeed seeds the optimization sampler for reproducible runs.
func (b FusionBuilder) RandomSeed(seed int64) FusionBuilder {
	b.nc.randomSeed = &seed
	return b
}

// AutoOptimize enables throttled opportunistic optimization passes.
func (b FusionBuilder) AutoOptimize(limit rate.Limit, optFns ...func(*OptimizeOptions)) FusionBuilder {
	b.nc.autoOptimize = &limit
	b.nc.autoOptFns = optFns
	return b
}

// Build creates the fusion-based network.
func (b FusionBuilder) Build() (*Network, error) {
	rule, err := fusion.New(b.channels, func(o *fusion.Options) {
		o.Weights = b.weights
		o.WeightReference = b.weightRef
		o.AdaptWeights = b.adaptWeights
	})
	if err != nil {
		return nil, err
	}
	params, err := b.pc.params()
	if err != nil {
		return nil, err
	}
	return NewNetwork(rule, params, b.nc.optFns()...)
}

// MustBuild creates the network, panicking on error.
func (b FusionBuilder) MustBuild() *Network {
	n, err := b.Build()
	if err != nil {
		panic(err)
	}
	return n
}
