package engine

import (
	"context"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellblazer/art/geometry"
	"github.com/hellblazer/art/geometry/gaussian"
	"github.com/hellblazer/art/pattern"
	"github.com/hellblazer/art/testutil"
)

func TestNewEngine(t *testing.T) {
	t.Run("requires a rule", func(t *testing.T) {
		_, err := New(nil)
		require.ErrorIs(t, err, ErrNilRule)
	})
}

func TestCheckPattern(t *testing.T) {
	eng, err := New(newTestRule(t, 2))
	require.NoError(t, err)

	t.Run("rejects empty patterns", func(t *testing.T) {
		require.ErrorIs(t, eng.CheckPattern(nil), ErrEmptyPattern)
	})

	t.Run("rejects dimension mismatches", func(t *testing.T) {
		err := eng.CheckPattern(pattern.New(0.1, 0.2, 0.3))

		var dim *ErrDimensionMismatch
		require.ErrorAs(t, err, &dim)
		assert.Equal(t, 2, dim.Expected)
		assert.Equal(t, 3, dim.Actual)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	params := geometry.DefaultParams

	t.Run("empty store yields no match", func(t *testing.T) {
		eng, err := New(newTestRule(t, 2))
		require.NoError(t, err)

		res, err := eng.Search(ctx, pattern.New(0.1, 0.1), params, nil)

		require.NoError(t, err)
		assert.False(t, res.Matched())
		assert.Equal(t, -1, res.Index)
		assert.Equal(t, 0, res.Scanned)
	})

	t.Run("does not mutate the store", func(t *testing.T) {
		eng, err := New(newTestRule(t, 2))
		require.NoError(t, err)
		_, err = eng.Create(pattern.New(0.5, 0.5))
		require.NoError(t, err)

		before := eng.Store().Categories()[0].SampleCount()
		_, err = eng.Search(ctx, pattern.New(0.5, 0.5), params, nil)

		require.NoError(t, err)
		assert.Equal(t, before, eng.Store().Categories()[0].SampleCount())
	})

	t.Run("winner membership meets the vigilance", func(t *testing.T) {
		eng, err := New(newTestRule(t, 2))
		require.NoError(t, err)
		_, err = eng.Create(pattern.New(0.5, 0.5))
		require.NoError(t, err)

		tight := params.WithVigilance(0.9)
		res, err := eng.Search(ctx, pattern.New(0.51, 0.5), tight, nil)

		require.NoError(t, err)
		require.True(t, res.Matched())
		assert.GreaterOrEqual(t, res.Membership, 0.9)

		res, err = eng.Search(ctx, pattern.New(0.9, 0.9), tight, nil)
		require.NoError(t, err)
		assert.False(t, res.Matched())
		assert.Equal(t, 1, res.Scanned)
	})

	t.Run("ties break toward the lowest index", func(t *testing.T) {
		eng, err := New(newTestRule(t, 2))
		require.NoError(t, err)
		_, err = eng.Create(pattern.New(0.5, 0.5))
		require.NoError(t, err)
		_, err = eng.Create(pattern.New(0.5, 0.5))
		require.NoError(t, err)

		res, err := eng.Search(ctx, pattern.New(0.5, 0.5), params, nil)

		require.NoError(t, err)
		assert.Equal(t, 0, res.Index)
	})

	t.Run("excluded categories are skipped", func(t *testing.T) {
		eng, err := New(newTestRule(t, 2))
		require.NoError(t, err)
		_, err = eng.Create(pattern.New(0.5, 0.5))
		require.NoError(t, err)
		_, err = eng.Create(pattern.New(0.5, 0.5))
		require.NoError(t, err)

		exclude := roaring.New()
		exclude.Add(0)
		res, err := eng.Search(ctx, pattern.New(0.5, 0.5), params, exclude)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Index)
		assert.Equal(t, 1, res.Scanned)
	})

	t.Run("top activation can lose to a lower-ranked candidate", func(t *testing.T) {
		rule, err := gaussian.New(func(o *gaussian.Options) {
			o.Dimension = 1
		})
		require.NoError(t, err)
		eng, err := New(rule)
		require.NoError(t, err)

		// Category 0 is mature and broad: top activation, but its
		// membership misses a tight vigilance. Category 1 is a fresh
		// seed at the query point.
		_, err = eng.Create(pattern.New(0.0))
		require.NoError(t, err)
		broad, _ := eng.Store().Get(0)
		broad.(*gaussian.Category).Variance[0] = 1.0
		broad.(*gaussian.Category).Samples = 1000

		_, err = eng.Create(pattern.New(0.5))
		require.NoError(t, err)

		p := pattern.New(0.5)
		require.Greater(t,
			rule.Activation(p, mustGet(t, eng, 0), params),
			rule.Activation(p, mustGet(t, eng, 1), params))

		res, err := eng.Search(ctx, p, params.WithVigilance(0.95), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Index)
		assert.Equal(t, 2, res.Scanned)
	})

	t.Run("parallel scoring matches serial", func(t *testing.T) {
		serialEng, err := New(newTestRule(t, 4))
		require.NoError(t, err)
		parallelEng, err := New(newTestRule(t, 4))
		require.NoError(t, err)

		rng := testutil.NewRNG(42)
		for _, p := range rng.Patterns(600, 4) {
			_, err := serialEng.Create(p)
			require.NoError(t, err)
			_, err = parallelEng.Create(p)
			require.NoError(t, err)
		}

		parallel := params.WithWorkers(4)
		for _, q := range rng.Patterns(25, 4) {
			want, err := serialEng.Search(ctx, q, params, nil)
			require.NoError(t, err)
			got, err := parallelEng.Search(ctx, q, parallel, nil)
			require.NoError(t, err)

			assert.Equal(t, want.Index, got.Index)
			assert.InDelta(t, want.Membership, got.Membership, 1e-12)
		}
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		eng, err := New(newTestRule(t, 2))
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err = eng.Search(cancelled, pattern.New(0.1, 0.1), params, nil)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestLearn(t *testing.T) {
	ctx := context.Background()
	params := geometry.DefaultParams

	t.Run("creates on no match and resonates after", func(t *testing.T) {
		eng, err := New(newTestRule(t, 2))
		require.NoError(t, err)

		p := pattern.New(0.5, 0.5)
		res, err := eng.Learn(ctx, p, params)

		require.NoError(t, err)
		assert.True(t, res.Created)
		assert.Equal(t, 0, res.Index)
		assert.Equal(t, 1.0, res.Membership)

		res, err = eng.Learn(ctx, p, params)

		require.NoError(t, err)
		assert.False(t, res.Created)
		assert.Equal(t, 0, res.Index)
		assert.Equal(t, 1, eng.Store().Len())
	})

	t.Run("tighter vigilance forms more categories", func(t *testing.T) {
		rng := testutil.NewRNG(7)
		centers := []pattern.Pattern{
			pattern.New(0.2, 0.2),
			pattern.New(0.8, 0.8),
		}
		var patterns []pattern.Pattern
		for _, c := range centers {
			patterns = append(patterns, rng.Cluster(c, 0.03, 20)...)
		}
		rng.Shuffle(patterns)

		counts := make(map[float64]int)
		for _, rho := range []float64{0.3, 0.95} {
			eng, err := New(newTestRule(t, 2))
			require.NoError(t, err)
			for _, p := range patterns {
				_, err := eng.Learn(ctx, p, params.WithVigilance(rho))
				require.NoError(t, err)
			}
			counts[rho] = eng.Store().Len()
		}

		assert.LessOrEqual(t, counts[0.3], counts[0.95])
		assert.GreaterOrEqual(t, counts[0.3], 2)
	})

	t.Run("commit rejects unknown categories", func(t *testing.T) {
		eng, err := New(newTestRule(t, 2))
		require.NoError(t, err)

		var notFound *ErrCategoryNotFound
		require.ErrorAs(t, eng.Commit(pattern.New(0.1, 0.1), params, 3), &notFound)
	})
}

func mustGet(t *testing.T, eng *Engine, index int) geometry.Category {
	t.Helper()

	c, ok := eng.Store().Get(index)
	require.True(t, ok)
	return c
}
