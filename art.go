package art

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/time/rate"

	"github.com/hellblazer/art/blobstore"
	"github.com/hellblazer/art/engine"
	"github.com/hellblazer/art/geometry"
	"github.com/hellblazer/art/pattern"
)

// NoMatch is the category index reported when no category resonates.
const NoMatch = -1

// Result is the outcome of a learn or predict call.
type Result struct {
	// Index is the resonant category's creation index, or NoMatch.
	Index int

	// Activation is the winner's activation score. Freshly created
	// categories report zero.
	Activation float64

	// Membership is the winner's membership value, >= the vigilance
	// in effect. A freshly created category reports 1.
	Membership float64

	// Created reports whether the learning step allocated a new
	// category instead of adapting an existing one.
	Created bool
}

// Matched reports whether the result carries a resonant category.
func (r Result) Matched() bool { return r.Index >= 0 }

// Network is a single online ART clustering module: a geometry rule,
// its category store, and the vigilance matcher, behind a facade that
// adds serialization of writers, performance tracking, structured
// logging and metrics.
//
// Learning and optimization take the exclusive writer lock; prediction
// and all read accessors share the reader lock. A whole learning step
// is the atomicity unit: concurrent callers observe the store as if
// operations ran in some serial order.
type Network struct {
	mu     sync.RWMutex
	eng    *engine.Engine
	params geometry.Params

	logger  *Logger
	metrics MetricsCollector
	rng     *rand.Rand
	perf    *performanceTracker

	autoOpt     *rate.Limiter
	autoOptOpts OptimizeOptions
}

// NewNetwork creates a network for the given geometry rule and
// parameters.
func NewNetwork(rule geometry.Rule, params geometry.Params, optFns ...func(*Options)) (*Network, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	eng, err := engine.New(rule)
	if err != nil {
		return nil, translateError(err)
	}

	return &Network{
		eng:         eng,
		params:      params,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		rng:         opts.Rand,
		perf:        newPerformanceTracker(),
		autoOpt:     opts.AutoOptimize,
		autoOptOpts: opts.AutoOptimizeOptions,
	}, nil
}

// Rule returns the network's geometry rule.
func (n *Network) Rule() geometry.Rule { return n.eng.Rule() }

// Params returns the network's base parameters.
func (n *Network) Params() geometry.Params { return n.params }

// Learn presents a pattern for learning: the matcher searches for a
// resonant category and adapts it, or creates a new category when the
// search exhausts without resonance. Learn never fails to place a
// pattern; errors are limited to validation and context cancellation.
func (n *Network) Learn(ctx context.Context, p pattern.Pattern) (Result, error) {
	start := time.Now()

	n.mu.Lock()
	res, err := n.learnLocked(ctx, p, n.params)
	if err == nil && n.autoOpt != nil && n.autoOpt.Allow() {
		n.optimizeLocked(ctx, n.autoOptOpts)
	}
	n.mu.Unlock()

	n.metrics.RecordLearn(time.Since(start), res.Created, err)
	n.logger.LogLearn(ctx, res.Index, res.Created, err)
	return res, err
}

// learnLocked runs one learning step under the writer lock. The Mapper
// drives the same path with transiently raised vigilance.
func (n *Network) learnLocked(ctx context.Context, p pattern.Pattern, params geometry.Params) (Result, error) {
	res, err := n.eng.Learn(ctx, p, params)
	if err != nil {
		return Result{Index: NoMatch}, translateError(err)
	}
	n.perf.recordSearch(res.Scanned, len(p))
	if res.Created {
		n.perf.recordCreation()
	} else {
		n.perf.recordAdaptation()
	}
	return Result{
		Index:      res.Index,
		Activation: res.Activation,
		Membership: res.Membership,
		Created:    res.Created,
	}, nil
}

// Predict runs the vigilance search for p without mutating any
// category. A NoMatch result (Index == NoMatch) is a valid outcome,
// not an error.
func (n *Network) Predict(ctx context.Context, p pattern.Pattern) (Result, error) {
	start := time.Now()

	n.mu.RLock()
	res, err := n.searchLocked(ctx, p, n.params, nil)
	n.mu.RUnlock()

	n.metrics.RecordPredict(time.Since(start), res.Matched(), err)
	n.logger.LogPredict(ctx, res.Index, res.Membership, err)
	return res, err
}

// searchLocked runs the read-only vigilance search under either lock
// mode. The Mapper uses the exclude set to keep rejected winners out
// of match-tracking re-searches.
func (n *Network) searchLocked(ctx context.Context, p pattern.Pattern, params geometry.Params, exclude *roaring.Bitmap) (Result, error) {
	res, err := n.eng.Search(ctx, p, params, exclude)
	if err != nil {
		return Result{Index: NoMatch}, translateError(err)
	}
	n.perf.recordSearch(res.Scanned, len(p))
	return Result{
		Index:      res.Index,
		Activation: res.Activation,
		Membership: res.Membership,
	}, nil
}

// commitLocked adapts the category at index toward p under the writer
// lock.
func (n *Network) commitLocked(p pattern.Pattern, params geometry.Params, index int) error {
	if err := n.eng.Commit(p, params, index); err != nil {
		return translateError(err)
	}
	n.perf.recordAdaptation()
	return nil
}

// createLocked seeds a new category from p under the writer lock.
func (n *Network) createLocked(p pattern.Pattern) (Result, error) {
	res, err := n.eng.Create(p)
	if err != nil {
		return Result{Index: NoMatch}, translateError(err)
	}
	n.perf.recordCreation()
	return Result{
		Index:      res.Index,
		Membership: res.Membership,
		Created:    true,
	}, nil
}

// CategoryCount returns the number of live categories.
func (n *Network) CategoryCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.eng.Store().Len()
}

// Category returns a clone of the category at the given creation
// index. ErrCategoryNotFound is returned for out-of-range or pruned
// indices.
func (n *Network) Category(index int) (geometry.Category, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	c, ok := n.eng.Store().Get(index)
	if !ok {
		return nil, fmt.Errorf("%w: index %d", ErrCategoryNotFound, index)
	}
	return c.Clone(), nil
}

// Categories returns clones of all live categories in creation order.
func (n *Network) Categories() []geometry.Category {
	n.mu.RLock()
	defer n.mu.RUnlock()

	live := n.eng.Store().Categories()
	out := make([]geometry.Category, len(live))
	for i, c := range live {
		out[i] = c.Clone()
	}
	return out
}

// Clear removes all categories. Creation indices restart at zero.
func (n *Network) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.eng.Store().Clear()
}

// PerformanceSnapshot returns current operation counters and derived
// throughput metrics. Sampling is lock-free.
func (n *Network) PerformanceSnapshot() PerformanceSnapshot {
	return n.perf.snapshot()
}

// ResetPerformanceTracking zeroes the operation counters and restarts
// the uptime clock.
func (n *Network) ResetPerformanceTracking() {
	n.perf.reset()
}

// OptimizeOptions configures an optimization pass.
type OptimizeOptions struct {
	// MinSamples prunes categories that absorbed fewer than this many
	// patterns. Zero disables sample-count pruning.
	MinSamples int

	// MergeThreshold is the membership above which two categories are
	// considered duplicates and merged. Zero means use the network's
	// vigilance.
	MergeThreshold float64

	// SampleRate is the probability that a candidate category pair is
	// examined for merging. Values below one trade thoroughness for
	// speed on large stores. Defaults to 1.
	SampleRate float64
}

// DefaultOptimizeOptions examines every pair and prunes nothing by
// sample count.
var DefaultOptimizeOptions = OptimizeOptions{
	SampleRate: 1,
}

// WithMinSamples sets the sample-count pruning floor.
func WithMinSamples(min int) func(*OptimizeOptions) {
	return func(o *OptimizeOptions) { o.MinSamples = min }
}

// WithMergeThreshold sets the duplicate-merge membership threshold.
func WithMergeThreshold(threshold float64) func(*OptimizeOptions) {
	return func(o *OptimizeOptions) { o.MergeThreshold = threshold }
}

// WithSampleRate sets the pair-sampling probability.
func WithSampleRate(rate float64) func(*OptimizeOptions) {
	return func(o *OptimizeOptions) { o.SampleRate = rate }
}

// OptimizeReport summarizes one optimization pass.
type OptimizeReport struct {
	// Pruned is the number of categories removed for falling below
	// the sample-count floor.
	Pruned int

	// Merged is the number of categories folded into a near-duplicate
	// and removed.
	Merged int

	// Remaining is the live category count after the pass.
	Remaining int

	// Duration is the wall time of the pass.
	Duration time.Duration
}

// Optimize compacts the category store: it prunes under-sampled
// categories and merges near-duplicates. Merging folds the younger
// category's centroid into the older one and tombstones the younger,
// so surviving indices are stable. The pass holds the exclusive
// writer lock.
func (n *Network) Optimize(ctx context.Context, optFns ...func(*OptimizeOptions)) (OptimizeReport, error) {
	if err := ctx.Err(); err != nil {
		return OptimizeReport{}, err
	}

	opts := DefaultOptimizeOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	n.mu.Lock()
	report := n.optimizeLocked(ctx, opts)
	n.mu.Unlock()

	n.metrics.RecordOptimize(report.Pruned, report.Merged, report.Duration)
	n.logger.LogOptimize(ctx, report.Pruned, report.Merged, report.Remaining)
	return report, nil
}

func (n *Network) optimizeLocked(ctx context.Context, opts OptimizeOptions) OptimizeReport {
	start := time.Now()
	store := n.eng.Store()
	rule := n.eng.Rule()

	report := OptimizeReport{}
	removed := roaring.New()

	live := store.Categories()
	if opts.MinSamples > 0 {
		for _, c := range live {
			if c.SampleCount() < uint64(opts.MinSamples) {
				if store.Prune(c.Index()) {
					removed.Add(uint32(c.Index()))
					report.Pruned++
				}
			}
		}
	}

	threshold := opts.MergeThreshold
	if threshold <= 0 {
		threshold = n.params.Vigilance
	}
	sampleRate := opts.SampleRate
	if sampleRate <= 0 || sampleRate > 1 {
		sampleRate = 1
	}

	// Older category absorbs the younger so surviving indices stay
	// stable across optimization passes.
	for i, older := range live {
		if removed.Contains(uint32(older.Index())) {
			continue
		}
		for _, younger := range live[i+1:] {
			if removed.Contains(uint32(younger.Index())) {
				continue
			}
			if sampleRate < 1 && n.rng.Float64() >= sampleRate {
				continue
			}
			m := rule.Membership(pattern.Pattern(younger.Centroid()), older, n.params)
			if m < threshold {
				continue
			}
			if err := rule.Update(pattern.Pattern(younger.Centroid()), older, n.params); err != nil {
				continue
			}
			if store.Prune(younger.Index()) {
				removed.Add(uint32(younger.Index()))
				report.Merged++
			}
		}
	}

	report.Remaining = store.Len()
	report.Duration = time.Since(start)

	n.perf.recordPrunes(report.Pruned)
	n.perf.recordTopology(report.Merged)
	return report
}

// SaveSnapshot writes the category store to w as a compressed
// snapshot.
func (n *Network) SaveSnapshot(ctx context.Context, w io.Writer) error {
	n.mu.RLock()
	err := n.eng.WriteSnapshot(w)
	count := n.eng.Store().Len()
	n.mu.RUnlock()

	n.logger.LogSnapshot(ctx, "writer", count, err)
	return err
}

// LoadSnapshot replaces the category store with a snapshot previously
// written by SaveSnapshot. The snapshot must match the network's rule
// name and dimensionality.
func (n *Network) LoadSnapshot(ctx context.Context, r io.Reader) error {
	n.mu.Lock()
	hdr, err := n.eng.ReadSnapshot(r)
	count := n.eng.Store().Len()
	n.mu.Unlock()

	n.logger.LogSnapshot(ctx, hdr.ID.String(), count, err)
	return translateError(err)
}

// SaveTo writes a snapshot to the given blob store under name.
func (n *Network) SaveTo(ctx context.Context, store blobstore.Store, name string) error {
	pr, pw := io.Pipe()

	go func() {
		pw.CloseWithError(n.SaveSnapshot(ctx, pw))
	}()

	if err := store.Put(ctx, name, pr); err != nil {
		pr.CloseWithError(err)
		return fmt.Errorf("art: failed to store snapshot %q: %w", name, err)
	}
	return nil
}

// LoadFrom reads a snapshot from the given blob store under name.
func (n *Network) LoadFrom(ctx context.Context, store blobstore.Store, name string) error {
	rc, err := store.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("art: failed to fetch snapshot %q: %w", name, err)
	}
	defer rc.Close()

	return n.LoadSnapshot(ctx, rc)
}
