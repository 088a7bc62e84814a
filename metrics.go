package art

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational
// metrics. Implement this interface to integrate with monitoring
// systems; the prom subpackage provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordLearn is called after each learning step.
	// created reports whether the step allocated a new category,
	// err is nil if successful.
	RecordLearn(duration time.Duration, created bool, err error)

	// RecordPredict is called after each prediction.
	// matched reports whether a category resonated.
	RecordPredict(duration time.Duration, matched bool, err error)

	// RecordMatchTracking is called after each ARTMAP learning step
	// with the number of search attempts it took to resolve.
	RecordMatchTracking(attempts int)

	// RecordOptimize is called after each optimization pass.
	RecordOptimize(pruned, merged int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLearn(time.Duration, bool, error)   {}
func (NoopMetricsCollector) RecordPredict(time.Duration, bool, error) {}
func (NoopMetricsCollector) RecordMatchTracking(int)                  {}
func (NoopMetricsCollector) RecordOptimize(int, int, time.Duration)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LearnCount           atomic.Int64
	LearnErrors          atomic.Int64
	LearnTotalNanos      atomic.Int64
	CategoriesCreated    atomic.Int64
	PredictCount         atomic.Int64
	PredictErrors        atomic.Int64
	PredictMisses        atomic.Int64
	PredictTotalNanos    atomic.Int64
	MatchTrackingSteps   atomic.Int64
	MatchTrackingRetries atomic.Int64
	OptimizeCount        atomic.Int64
	OptimizePruned       atomic.Int64
	OptimizeMerged       atomic.Int64
}

// RecordLearn implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLearn(duration time.Duration, created bool, err error) {
	b.LearnCount.Add(1)
	b.LearnTotalNanos.Add(duration.Nanoseconds())
	if created {
		b.CategoriesCreated.Add(1)
	}
	if err != nil {
		b.LearnErrors.Add(1)
	}
}

// RecordPredict implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPredict(duration time.Duration, matched bool, err error) {
	b.PredictCount.Add(1)
	b.PredictTotalNanos.Add(duration.Nanoseconds())
	if !matched {
		b.PredictMisses.Add(1)
	}
	if err != nil {
		b.PredictErrors.Add(1)
	}
}

// RecordMatchTracking implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMatchTracking(attempts int) {
	b.MatchTrackingSteps.Add(1)
	if attempts > 1 {
		b.MatchTrackingRetries.Add(int64(attempts - 1))
	}
}

// RecordOptimize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOptimize(pruned, merged int, duration time.Duration) {
	b.OptimizeCount.Add(1)
	b.OptimizePruned.Add(int64(pruned))
	b.OptimizeMerged.Add(int64(merged))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LearnCount:           b.LearnCount.Load(),
		LearnErrors:          b.LearnErrors.Load(),
		LearnAvgNanos:        avgNanos(b.LearnTotalNanos.Load(), b.LearnCount.Load()),
		CategoriesCreated:    b.CategoriesCreated.Load(),
		PredictCount:         b.PredictCount.Load(),
		PredictErrors:        b.PredictErrors.Load(),
		PredictMisses:        b.PredictMisses.Load(),
		PredictAvgNanos:      avgNanos(b.PredictTotalNanos.Load(), b.PredictCount.Load()),
		MatchTrackingSteps:   b.MatchTrackingSteps.Load(),
		MatchTrackingRetries: b.MatchTrackingRetries.Load(),
		OptimizeCount:        b.OptimizeCount.Load(),
		OptimizePruned:       b.OptimizePruned.Load(),
		OptimizeMerged:       b.OptimizeMerged.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LearnCount           int64
	LearnErrors          int64
	LearnAvgNanos        int64
	CategoriesCreated    int64
	PredictCount         int64
	PredictErrors        int64
	PredictMisses        int64
	PredictAvgNanos      int64
	MatchTrackingSteps   int64
	MatchTrackingRetries int64
	OptimizeCount        int64
	OptimizePruned       int64
	OptimizeMerged       int64
}
