// Package prom provides a Prometheus implementation of the
// art.MetricsCollector interface.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hellblazer/art"
)

// Compile-time check to ensure Collector satisfies the interface.
var _ art.MetricsCollector = (*Collector)(nil)

// Options configures a Collector.
type Options struct {
	// Namespace prefixes every metric name. Defaults to "art".
	Namespace string

	// ConstLabels are attached to every metric.
	ConstLabels prometheus.Labels
}

// DefaultOptions contains the default configuration options for the
// collector.
var DefaultOptions = Options{
	Namespace: "art",
}

// Collector exports network operation metrics to Prometheus.
type Collector struct {
	learnDuration      *prometheus.HistogramVec
	learnTotal         *prometheus.CounterVec
	categoriesCreated  prometheus.Counter
	predictDuration    *prometheus.HistogramVec
	predictTotal       *prometheus.CounterVec
	matchTrackingSteps prometheus.Counter
	matchTrackingTries prometheus.Histogram
	optimizePasses     prometheus.Counter
	optimizePruned     prometheus.Counter
	optimizeMerged     prometheus.Counter
	optimizeDuration   prometheus.Histogram
}

// New creates a collector and registers its metrics with the given
// registerer. Pass prometheus.DefaultRegisterer for the default
// registry.
func New(reg prometheus.Registerer, optFns ...func(o *Options)) (*Collector, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &Collector{
		learnDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "learn_duration_seconds",
			Help:        "Duration of learning steps.",
			ConstLabels: opts.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"outcome"}),
		learnTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "learn_total",
			Help:        "Total learning steps by outcome.",
			ConstLabels: opts.ConstLabels,
		}, []string{"outcome"}),
		categoriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "categories_created_total",
			Help:        "Total categories created by learning.",
			ConstLabels: opts.ConstLabels,
		}),
		predictDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "predict_duration_seconds",
			Help:        "Duration of predictions.",
			ConstLabels: opts.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"outcome"}),
		predictTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "predict_total",
			Help:        "Total predictions by outcome.",
			ConstLabels: opts.ConstLabels,
		}, []string{"outcome"}),
		matchTrackingSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "match_tracking_steps_total",
			Help:        "Total supervised training steps.",
			ConstLabels: opts.ConstLabels,
		}),
		matchTrackingTries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "match_tracking_attempts",
			Help:        "Search attempts per supervised training step.",
			ConstLabels: opts.ConstLabels,
			Buckets:     prometheus.LinearBuckets(1, 1, 16),
		}),
		optimizePasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "optimize_passes_total",
			Help:        "Total optimization passes.",
			ConstLabels: opts.ConstLabels,
		}),
		optimizePruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "optimize_pruned_total",
			Help:        "Total categories pruned by optimization.",
			ConstLabels: opts.ConstLabels,
		}),
		optimizeMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "optimize_merged_total",
			Help:        "Total categories merged by optimization.",
			ConstLabels: opts.ConstLabels,
		}),
		optimizeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "optimize_duration_seconds",
			Help:        "Duration of optimization passes.",
			ConstLabels: opts.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
	}

	for _, m := range []prometheus.Collector{
		c.learnDuration, c.learnTotal, c.categoriesCreated,
		c.predictDuration, c.predictTotal,
		c.matchTrackingSteps, c.matchTrackingTries,
		c.optimizePasses, c.optimizePruned, c.optimizeMerged, c.optimizeDuration,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordLearn implements art.MetricsCollector.
func (c *Collector) RecordLearn(duration time.Duration, created bool, err error) {
	outcome := "adapted"
	switch {
	case err != nil:
		outcome = "error"
	case created:
		outcome = "created"
		c.categoriesCreated.Inc()
	}
	c.learnTotal.WithLabelValues(outcome).Inc()
	c.learnDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordPredict implements art.MetricsCollector.
func (c *Collector) RecordPredict(duration time.Duration, matched bool, err error) {
	outcome := "matched"
	switch {
	case err != nil:
		outcome = "error"
	case !matched:
		outcome = "miss"
	}
	c.predictTotal.WithLabelValues(outcome).Inc()
	c.predictDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordMatchTracking implements art.MetricsCollector.
func (c *Collector) RecordMatchTracking(attempts int) {
	c.matchTrackingSteps.Inc()
	c.matchTrackingTries.Observe(float64(attempts))
}

// RecordOptimize implements art.MetricsCollector.
func (c *Collector) RecordOptimize(pruned, merged int, duration time.Duration) {
	c.optimizePasses.Inc()
	c.optimizePruned.Add(float64(pruned))
	c.optimizeMerged.Add(float64(merged))
	c.optimizeDuration.Observe(duration.Seconds())
}
