// Package engine implements the vigilance matcher at the heart of an
// ART module: activation-ranked candidate search with the resonance
// test, category creation on search exhaustion, and the category
// store the matcher operates on.
//
// The engine performs no locking. Callers (the art.Network facade and
// the ARTMAP mapper) serialize writers and share readers through a
// single RWMutex per module.
package engine

import (
	"context"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hellblazer/art/geometry"
	"github.com/hellblazer/art/pattern"
)

// parallelThreshold is the minimum live category count before
// activation scoring fans out across workers. Below it the goroutine
// overhead dominates the dot products.
const parallelThreshold = 256

// Result is the outcome of one match attempt. Index is -1 when the
// search exhausted all candidates without resonance (NoMatch).
type Result struct {
	// Index is the winning category's creation index, or -1.
	Index int

	// Activation is the winner's activation score.
	Activation float64

	// Membership is the winner's membership value, always >= the
	// vigilance in effect when it won.
	Membership float64

	// Created reports whether the winner was newly created by the
	// learning path's NoMatch fallback.
	Created bool

	// Scanned is the number of categories whose activation was
	// computed during the search.
	Scanned int
}

// Matched reports whether the result carries a resonant category.
func (r Result) Matched() bool { return r.Index >= 0 }

// candidate pairs a creation index with its activation for ranking.
type candidate struct {
	index      int
	activation float64
}

// Engine couples a geometry rule with a category store and runs the
// canonical ART search: rank all candidates by activation, then accept
// the first one in rank order whose membership meets the vigilance.
type Engine struct {
	rule  geometry.Rule
	store *Store
}

// New creates an engine for the given rule with an empty store.
func New(rule geometry.Rule) (*Engine, error) {
	if rule == nil {
		return nil, ErrNilRule
	}
	return &Engine{
		rule:  rule,
		store: NewStore(),
	}, nil
}

// Rule returns the engine's geometry rule.
func (e *Engine) Rule() geometry.Rule { return e.rule }

// Store returns the engine's category store.
func (e *Engine) Store() *Store { return e.store }

// CheckPattern validates p against the configured dimensionality.
// It is called before any mutation so a mismatch never leaves a
// partially updated store.
func (e *Engine) CheckPattern(p pattern.Pattern) error {
	if len(p) == 0 {
		return ErrEmptyPattern
	}
	if len(p) != e.rule.Dimension() {
		return &ErrDimensionMismatch{Expected: e.rule.Dimension(), Actual: len(p)}
	}
	return nil
}

// Search runs the ordered vigilance scan for p and returns the first
// resonant category, or a NoMatch result if none passes. It never
// mutates the store. Categories whose creation index is in exclude are
// skipped entirely; match tracking uses this to keep rejected winners
// out of the re-search.
//
// Candidates are ranked by activation descending with ties broken by
// lowest creation index, so the scan order is deterministic. The
// highest-activation candidate can fail vigilance while a lower one
// passes; that is the point of the ordered scan, and why this is not a
// nearest-neighbor shortcut.
func (e *Engine) Search(ctx context.Context, p pattern.Pattern, params geometry.Params, exclude *roaring.Bitmap) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := e.CheckPattern(p); err != nil {
		return Result{}, err
	}

	candidates, err := e.score(ctx, p, params, exclude)
	if err != nil {
		return Result{}, err
	}
	if len(candidates) == 0 {
		return Result{Index: -1, Scanned: 0}, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].activation != candidates[j].activation {
			return candidates[i].activation > candidates[j].activation
		}
		return candidates[i].index < candidates[j].index
	})

	for _, cand := range candidates {
		c, ok := e.store.Get(cand.index)
		if !ok {
			continue
		}
		m := e.rule.Membership(p, c, params)
		if m >= params.Vigilance {
			return Result{
				Index:      cand.index,
				Activation: cand.activation,
				Membership: m,
				Scanned:    len(candidates),
			}, nil
		}
	}

	return Result{Index: -1, Scanned: len(candidates)}, nil
}

// score computes activations for all live, non-excluded categories.
// With a Workers hint above one and enough categories, scoring fans
// out across an errgroup; results are positionally assigned so the
// outcome is identical to the serial path.
func (e *Engine) score(ctx context.Context, p pattern.Pattern, params geometry.Params, exclude *roaring.Bitmap) ([]candidate, error) {
	cats := e.store.Categories()
	if exclude != nil && !exclude.IsEmpty() {
		kept := cats[:0]
		for _, c := range cats {
			if !exclude.Contains(uint32(c.Index())) {
				kept = append(kept, c)
			}
		}
		cats = kept
	}
	if len(cats) == 0 {
		return nil, nil
	}

	out := make([]candidate, len(cats))

	if params.Workers <= 1 || len(cats) < parallelThreshold {
		for i, c := range cats {
			out[i] = candidate{index: c.Index(), activation: e.rule.Activation(p, c, params)}
		}
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(cats) + params.Workers - 1) / params.Workers
	for lo := 0; lo < len(cats); lo += chunk {
		hi := min(lo+chunk, len(cats))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				c := cats[i]
				out[i] = candidate{index: c.Index(), activation: e.rule.Activation(p, c, params)}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Commit applies the rule's update step to the category that won the
// search. Callers hold the writer lock.
func (e *Engine) Commit(p pattern.Pattern, params geometry.Params, index int) error {
	c, ok := e.store.Get(index)
	if !ok {
		return &ErrCategoryNotFound{Index: index}
	}
	return e.rule.Update(p, c, params)
}

// Create seeds a new category from p and appends it to the store.
// A freshly seeded category sits exactly on p, so its membership is 1
// by construction. Callers hold the writer lock.
func (e *Engine) Create(p pattern.Pattern) (Result, error) {
	if err := e.CheckPattern(p); err != nil {
		return Result{}, err
	}
	c := e.rule.Seed(e.store.NextIndex(), p)
	idx := e.store.Create(c)
	return Result{
		Index:      idx,
		Activation: 0,
		Membership: 1,
		Created:    true,
	}, nil
}

// Learn runs one full learning step: search, then either commit the
// winner's update or create a new category on NoMatch. Callers hold
// the writer lock.
func (e *Engine) Learn(ctx context.Context, p pattern.Pattern, params geometry.Params) (Result, error) {
	res, err := e.Search(ctx, p, params, nil)
	if err != nil {
		return Result{}, err
	}
	if !res.Matched() {
		created, err := e.Create(p)
		if err != nil {
			return Result{}, err
		}
		created.Scanned = res.Scanned
		return created, nil
	}
	if err := e.Commit(p, params, res.Index); err != nil {
		return Result{}, err
	}
	return res, nil
}
