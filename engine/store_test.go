package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellblazer/art/geometry"
	"github.com/hellblazer/art/geometry/ellipsoid"
	"github.com/hellblazer/art/pattern"
)

func newTestRule(t *testing.T, dim int) *ellipsoid.Rule {
	t.Helper()

	rule, err := ellipsoid.New(func(o *ellipsoid.Options) {
		o.Dimension = dim
		o.InitialRadius = 0.1
	})
	require.NoError(t, err)
	return rule
}

func TestStore(t *testing.T) {
	rule := newTestRule(t, 2)

	t.Run("create assigns indices in order", func(t *testing.T) {
		s := NewStore()

		assert.Equal(t, 0, s.NextIndex())
		idx := s.Create(rule.Seed(0, pattern.New(0.1, 0.1)))
		assert.Equal(t, 0, idx)
		assert.Equal(t, 1, s.NextIndex())
		assert.Equal(t, 1, s.Len())
	})

	t.Run("create panics on index mismatch", func(t *testing.T) {
		s := NewStore()

		assert.Panics(t, func() {
			s.Create(rule.Seed(5, pattern.New(0.1, 0.1)))
		})
	})

	t.Run("get returns live categories only", func(t *testing.T) {
		s := NewStore()
		s.Create(rule.Seed(0, pattern.New(0.1, 0.1)))

		c, ok := s.Get(0)
		require.True(t, ok)
		assert.Equal(t, 0, c.Index())

		_, ok = s.Get(1)
		assert.False(t, ok)
		_, ok = s.Get(-1)
		assert.False(t, ok)
	})

	t.Run("prune tombstones without reusing the index", func(t *testing.T) {
		s := NewStore()
		s.Create(rule.Seed(0, pattern.New(0.1, 0.1)))
		s.Create(rule.Seed(1, pattern.New(0.9, 0.9)))

		require.True(t, s.Prune(0))
		assert.Equal(t, 1, s.Len())
		assert.Equal(t, 2, s.Slots())
		assert.Equal(t, 2, s.NextIndex())

		_, ok := s.Get(0)
		assert.False(t, ok)
		assert.False(t, s.Prune(0))
	})

	t.Run("categories preserves creation order across prunes", func(t *testing.T) {
		s := NewStore()
		for i := range 4 {
			s.Create(rule.Seed(i, pattern.New(float64(i)*0.1, 0.5)))
		}
		s.Prune(1)

		cats := s.Categories()
		require.Len(t, cats, 3)
		assert.Equal(t, 0, cats[0].Index())
		assert.Equal(t, 2, cats[1].Index())
		assert.Equal(t, 3, cats[2].Index())

		seen := 0
		s.Each(func(geometry.Category) { seen++ })
		assert.Equal(t, 3, seen)
	})

	t.Run("clear restarts indices", func(t *testing.T) {
		s := NewStore()
		s.Create(rule.Seed(0, pattern.New(0.1, 0.1)))
		s.Clear()

		assert.Equal(t, 0, s.Len())
		assert.Equal(t, 0, s.NextIndex())
	})
}
