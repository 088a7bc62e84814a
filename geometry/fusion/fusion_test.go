package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellblazer/art/geometry"
	"github.com/hellblazer/art/geometry/ellipsoid"
	"github.com/hellblazer/art/geometry/gaussian"
	"github.com/hellblazer/art/pattern"
)

func newChannels(t *testing.T) []geometry.Rule {
	t.Helper()

	pos, err := ellipsoid.New(func(o *ellipsoid.Options) {
		o.Dimension = 2
		o.InitialRadius = 0.1
	})
	require.NoError(t, err)

	color, err := gaussian.New(func(o *gaussian.Options) {
		o.Dimension = 3
	})
	require.NoError(t, err)

	return []geometry.Rule{pos, color}
}

func TestNew(t *testing.T) {
	t.Run("requires at least one channel", func(t *testing.T) {
		_, err := New(nil)
		assert.Error(t, err)
	})

	t.Run("rejects weight count mismatch", func(t *testing.T) {
		_, err := New(newChannels(t), func(o *Options) {
			o.Weights = []float64{1}
		})
		assert.Error(t, err)
	})

	t.Run("rejects non-positive weights", func(t *testing.T) {
		_, err := New(newChannels(t), func(o *Options) {
			o.Weights = []float64{1, -1}
		})
		assert.Error(t, err)
	})

	t.Run("rejects nil channels", func(t *testing.T) {
		_, err := New([]geometry.Rule{nil})
		assert.Error(t, err)
	})

	t.Run("dimension is the channel sum", func(t *testing.T) {
		rule, err := New(newChannels(t))

		require.NoError(t, err)
		assert.Equal(t, 5, rule.Dimension())
		assert.Equal(t, "Fusion", rule.Name())
	})
}

func TestMembership(t *testing.T) {
	params := geometry.DefaultParams

	t.Run("is one at the seed point", func(t *testing.T) {
		rule, err := New(newChannels(t))
		require.NoError(t, err)

		p := pattern.New(0.1, 0.2, 0.3, 0.4, 0.5)
		c := rule.Seed(0, p)

		assert.InDelta(t, 1.0, rule.Membership(p, c, params), 1e-12)
	})

	t.Run("weights bias the blend", func(t *testing.T) {
		// Nearly all mass on the position channel: a bad color match
		// barely dents the membership.
		rule, err := New(newChannels(t), func(o *Options) {
			o.Weights = []float64{199, 1}
		})
		require.NoError(t, err)

		c := rule.Seed(0, pattern.New(0.5, 0.5, 0.5, 0.5, 0.5))
		m := rule.Membership(pattern.New(0.5, 0.5, 0.9, 0.9, 0.9), c, params)

		assert.Greater(t, m, 0.9)
	})

	t.Run("rejects foreign categories", func(t *testing.T) {
		rule, err := New(newChannels(t))
		require.NoError(t, err)

		other := &Category{Idx: 0}

		assert.Equal(t, 0.0, rule.Membership(pattern.New(0.1, 0.2, 0.3, 0.4, 0.5), other, params))
		require.Error(t, rule.Update(pattern.New(0.1, 0.2, 0.3, 0.4, 0.5), other, params))
	})
}

func TestUpdate(t *testing.T) {
	params := geometry.DefaultParams

	t.Run("updates every channel", func(t *testing.T) {
		rule, err := New(newChannels(t))
		require.NoError(t, err)

		c := rule.Seed(0, pattern.New(0.1, 0.1, 0.5, 0.5, 0.5))
		require.NoError(t, rule.Update(pattern.New(0.2, 0.2, 0.6, 0.6, 0.6), c, params))

		fc := c.(*Category)
		assert.Equal(t, uint64(2), fc.Samples)
		for _, part := range fc.Parts {
			assert.Equal(t, uint64(2), part.SampleCount())
		}
	})

	t.Run("weight mass stays at the reference", func(t *testing.T) {
		rule, err := New(newChannels(t))
		require.NoError(t, err)

		c := rule.Seed(0, pattern.New(0.1, 0.1, 0.5, 0.5, 0.5))
		for range 10 {
			require.NoError(t, rule.Update(pattern.New(0.15, 0.15, 0.9, 0.1, 0.9), c, params))
		}

		fc := c.(*Category)
		var mass float64
		for _, w := range fc.Weights {
			mass += w
		}
		assert.InDelta(t, 2.0, mass, 1e-9)
	})

	t.Run("weight adaptation favors matching channels", func(t *testing.T) {
		rule, err := New(newChannels(t))
		require.NoError(t, err)

		// Position stays coherent, color jumps around.
		c := rule.Seed(0, pattern.New(0.5, 0.5, 0.1, 0.1, 0.1))
		for i := range 20 {
			color := 0.9
			if i%2 == 0 {
				color = 0.1
			}
			require.NoError(t, rule.Update(pattern.New(0.5, 0.5, color, color, color), c, params))
		}

		fc := c.(*Category)
		assert.Greater(t, fc.Weights[0], fc.Weights[1])
	})

	t.Run("disabled adaptation keeps the weights", func(t *testing.T) {
		rule, err := New(newChannels(t), func(o *Options) {
			o.AdaptWeights = false
		})
		require.NoError(t, err)

		c := rule.Seed(0, pattern.New(0.5, 0.5, 0.1, 0.1, 0.1))
		require.NoError(t, rule.Update(pattern.New(0.9, 0.9, 0.9, 0.9, 0.9), c, params))

		assert.Equal(t, []float64{1, 1}, c.(*Category).Weights)
	})
}
