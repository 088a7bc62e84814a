package salience

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellblazer/art/geometry"
	"github.com/hellblazer/art/pattern"
)

func TestNew(t *testing.T) {
	t.Run("requires dimension", func(t *testing.T) {
		_, err := New()
		assert.Error(t, err)
	})

	t.Run("validates decay and tolerance", func(t *testing.T) {
		_, err := New(func(o *Options) {
			o.Dimension = 2
			o.Decay = 0
		})
		assert.Error(t, err)

		_, err = New(func(o *Options) {
			o.Dimension = 2
			o.Decay = 1.5
		})
		assert.Error(t, err)

		_, err = New(func(o *Options) {
			o.Dimension = 2
			o.Tolerance = 0
		})
		assert.Error(t, err)
	})
}

func TestMembership(t *testing.T) {
	rule, err := New(func(o *Options) {
		o.Dimension = 2
	})
	require.NoError(t, err)

	params := geometry.DefaultParams

	t.Run("is one at the center", func(t *testing.T) {
		p := pattern.New(0.3, 0.7)
		c := rule.Seed(0, p)

		assert.Equal(t, 1.0, rule.Membership(p, c, params))
	})

	t.Run("discounts irrelevant features", func(t *testing.T) {
		full := rule.Seed(0, pattern.New(0.5, 0.5)).(*Category)
		faded := full.Clone().(*Category)
		faded.Salience[1] = params.Epsilon

		// Same deviation on feature 1 hurts the fully salient
		// category more than the one that learned to ignore it.
		p := pattern.New(0.5, 0.9)
		assert.Greater(t, rule.Membership(p, faded, params), rule.Membership(p, full, params))
	})

	t.Run("rejects foreign categories", func(t *testing.T) {
		assert.Equal(t, 0.0, rule.Membership(pattern.New(0.5, 0.5), fakeCategory{}, params))
		assert.Equal(t, 0.0, rule.Activation(pattern.New(0.5, 0.5), fakeCategory{}, params))
	})
}

func TestUpdate(t *testing.T) {
	rule, err := New(func(o *Options) {
		o.Dimension = 2
		o.Decay = 0.2
	})
	require.NoError(t, err)

	params := geometry.DefaultParams

	t.Run("seeds with full salience", func(t *testing.T) {
		c := rule.Seed(0, pattern.New(0.5, 0.5)).(*Category)
		assert.Equal(t, []float64{1, 1}, c.Salience)
	})

	t.Run("deviating features lose salience", func(t *testing.T) {
		c := rule.Seed(0, pattern.New(0.5, 0.2)).(*Category)

		// Feature 0 stays put, feature 1 alternates wildly.
		for i := range 20 {
			v := 0.9
			if i%2 == 0 {
				v = 0.1
			}
			require.NoError(t, rule.Update(pattern.New(0.5, v), c, params))
		}

		assert.Less(t, c.Salience[1], c.Salience[0])
		assert.Greater(t, c.Salience[1], 0.0)
	})

	t.Run("agreeing features keep salience near one", func(t *testing.T) {
		p := pattern.New(0.5, 0.5)
		c := rule.Seed(0, p).(*Category)
		for range 20 {
			require.NoError(t, rule.Update(p, c, params))
		}

		assert.InDelta(t, 1.0, c.Salience[0], 1e-9)
		assert.Equal(t, uint64(21), c.Samples)
	})

	t.Run("rejects foreign categories", func(t *testing.T) {
		var shapeErr *geometry.ErrCategoryShape
		require.ErrorAs(t, rule.Update(pattern.New(0.5, 0.5), fakeCategory{}, params), &shapeErr)
	})
}

// fakeCategory implements geometry.Category with a foreign shape.
type fakeCategory struct{}

func (fakeCategory) Index() int               { return 0 }
func (fakeCategory) Dimension() int           { return 2 }
func (fakeCategory) Centroid() []float64      { return []float64{0, 0} }
func (fakeCategory) SampleCount() uint64      { return 1 }
func (fakeCategory) Clone() geometry.Category { return fakeCategory{} }
