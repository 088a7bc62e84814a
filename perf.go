package art

import (
	"sync/atomic"
	"time"
)

// PerformanceSnapshot is a point-in-time view of a network's operation
// counters plus derived throughput metrics. It is purely
// observational: counters are lock-free atomics sampled outside the
// category-store lock, so a snapshot is recent but not strictly
// linearized against in-flight operations.
type PerformanceSnapshot struct {
	// TotalOperations counts learn and predict calls.
	TotalOperations uint64

	// EstimatedVectorOps estimates the scalar vector work performed:
	// categories scanned times pattern dimension, summed over all
	// searches.
	EstimatedVectorOps uint64

	// AdaptationEvents counts geometry updates (resonant learns).
	AdaptationEvents uint64

	// CategoryCreations counts NoMatch fallbacks that allocated a
	// new category.
	CategoryCreations uint64

	// PruningEvents counts categories removed by Optimize.
	PruningEvents uint64

	// TopologyEvents counts category merges performed by Optimize.
	TopologyEvents uint64

	// Uptime is the time since tracking started or was last reset.
	Uptime time.Duration

	// OpsPerSecond is TotalOperations divided by Uptime.
	OpsPerSecond float64

	// AdaptationRatio is AdaptationEvents over TotalOperations.
	AdaptationRatio float64
}

// performanceTracker owns the atomic counters behind
// PerformanceSnapshot. Increments never take the store lock.
type performanceTracker struct {
	ops         atomic.Uint64
	vectorOps   atomic.Uint64
	adaptations atomic.Uint64
	creations   atomic.Uint64
	prunes      atomic.Uint64
	topology    atomic.Uint64
	startNanos  atomic.Int64
}

func newPerformanceTracker() *performanceTracker {
	t := &performanceTracker{}
	t.startNanos.Store(time.Now().UnixNano())
	return t
}

func (t *performanceTracker) recordSearch(scanned, dimension int) {
	t.ops.Add(1)
	t.vectorOps.Add(uint64(scanned) * uint64(dimension))
}

func (t *performanceTracker) recordAdaptation() { t.adaptations.Add(1) }
func (t *performanceTracker) recordCreation()   { t.creations.Add(1) }
func (t *performanceTracker) recordPrunes(n int) {
	if n > 0 {
		t.prunes.Add(uint64(n))
	}
}
func (t *performanceTracker) recordTopology(n int) {
	if n > 0 {
		t.topology.Add(uint64(n))
	}
}

func (t *performanceTracker) reset() {
	t.ops.Store(0)
	t.vectorOps.Store(0)
	t.adaptations.Store(0)
	t.creations.Store(0)
	t.prunes.Store(0)
	t.topology.Store(0)
	t.startNanos.Store(time.Now().UnixNano())
}

func (t *performanceTracker) snapshot() PerformanceSnapshot {
	ops := t.ops.Load()
	adaptations := t.adaptations.Load()
	uptime := time.Since(time.Unix(0, t.startNanos.Load()))

	snap := PerformanceSnapshot{
		TotalOperations:    ops,
		EstimatedVectorOps: t.vectorOps.Load(),
		AdaptationEvents:   adaptations,
		CategoryCreations:  t.creations.Load(),
		PruningEvents:      t.prunes.Load(),
		TopologyEvents:     t.topology.Load(),
		Uptime:             uptime,
	}
	if secs := uptime.Seconds(); secs > 0 {
		snap.OpsPerSecond = float64(ops) / secs
	}
	if ops > 0 {
		snap.AdaptationRatio = float64(adaptations) / float64(ops)
	}
	return snap
}
