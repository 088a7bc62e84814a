package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParams(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		p, err := NewParams()

		require.NoError(t, err)
		assert.Equal(t, DefaultParams, p)
	})

	t.Run("overrides apply", func(t *testing.T) {
		p, err := NewParams(func(p *Params) {
			p.Vigilance = 0.9
			p.Workers = 4
		})

		require.NoError(t, err)
		assert.Equal(t, 0.9, p.Vigilance)
		assert.Equal(t, 4, p.Workers)
		assert.Equal(t, DefaultParams.LearningRate, p.LearningRate)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		invalid := []func(p *Params){
			func(p *Params) { p.Vigilance = 1.5 },
			func(p *Params) { p.Vigilance = -0.1 },
			func(p *Params) { p.LearningRate = 0 },
			func(p *Params) { p.LearningRate = 1.5 },
			func(p *Params) { p.Epsilon = 0 },
			func(p *Params) { p.Choice = -1 },
			func(p *Params) { p.Workers = -1 },
		}
		for _, fn := range invalid {
			_, err := NewParams(fn)
			assert.Error(t, err)
		}
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var p Params
		assert.Error(t, p.Validate())
	})
}

func TestParamsOverrides(t *testing.T) {
	t.Run("with vigilance copies", func(t *testing.T) {
		base := DefaultParams
		raised := base.WithVigilance(0.95)

		assert.Equal(t, 0.95, raised.Vigilance)
		assert.Equal(t, DefaultParams.Vigilance, base.Vigilance)
	})

	t.Run("with vigilance caps at one", func(t *testing.T) {
		raised := DefaultParams.WithVigilance(1.7)
		assert.Equal(t, 1.0, raised.Vigilance)
	})

	t.Run("with learning rate and workers copy", func(t *testing.T) {
		base := DefaultParams

		assert.Equal(t, 0.1, base.WithLearningRate(0.1).LearningRate)
		assert.Equal(t, 8, base.WithWorkers(8).Workers)
		assert.Equal(t, DefaultParams, base)
	})
}
