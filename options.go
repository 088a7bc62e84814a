package art

import (
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// Options configures a Network.
type Options struct {
	// Logger for structured logging. Defaults to NoopLogger.
	Logger *Logger

	// Metrics collects operation metrics. Defaults to
	// NoopMetricsCollector.
	Metrics MetricsCollector

	// Rand drives the sampling decisions in Optimize. It is only used
	// under the exclusive writer lock. Defaults to a time-seeded
	// source; inject a fixed seed for reproducible optimization runs.
	Rand *rand.Rand

	// AutoOptimize, when non-nil, throttles opportunistic optimization
	// passes piggybacked on learning. A pass runs at most at the
	// limiter's rate, using AutoOptimizeOptions.
	AutoOptimize *rate.Limiter

	// AutoOptimizeOptions configures the piggybacked passes.
	AutoOptimizeOptions OptimizeOptions
}

// DefaultOptions returns the default network options.
func DefaultOptions() Options {
	return Options{
		Logger:              NoopLogger(),
		Metrics:             NoopMetricsCollector{},
		Rand:                rand.New(rand.NewSource(time.Now().UnixNano())),
		AutoOptimizeOptions: DefaultOptimizeOptions,
	}
}

// WithLogger sets the logger.
func WithLogger(logger *Logger) func(*Options) {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) func(*Options) {
	return func(o *Options) {
		if m != nil {
			o.Metrics = m
		}
	}
}

// WithRand sets the random source used by Optimize sampling.
func WithRand(r *rand.Rand) func(*Options) {
	return func(o *Options) {
		if r != nil {
			o.Rand = r
		}
	}
}

// WithRandSeed seeds the random source used by Optimize sampling,
// making sampled optimization runs reproducible.
func WithRandSeed(seed int64) func(*Options) {
	return func(o *Options) {
		o.Rand = rand.New(rand.NewSource(seed))
	}
}

// WithAutoOptimize enables opportunistic optimization after learning
// steps, throttled to the given rate (passes per second, burst 1).
func WithAutoOptimize(limit rate.Limit, optFns ...func(*OptimizeOptions)) func(*Options) {
	return func(o *Options) {
		o.AutoOptimize = rate.NewLimiter(limit, 1)
		opts := DefaultOptimizeOptions
		for _, fn := range optFns {
			fn(&opts)
		}
		o.AutoOptimizeOptions = opts
	}
}
