package engine

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellblazer/art/geometry"
	"github.com/hellblazer/art/geometry/gaussian"
	"github.com/hellblazer/art/pattern"
)

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	params := geometry.DefaultParams

	t.Run("round trips the category store", func(t *testing.T) {
		src, err := New(newTestRule(t, 2))
		require.NoError(t, err)
		for _, p := range []pattern.Pattern{
			pattern.New(0.1, 0.1),
			pattern.New(0.9, 0.9),
			pattern.New(0.5, 0.1),
		} {
			_, err := src.Learn(ctx, p, params.WithVigilance(0.99))
			require.NoError(t, err)
		}

		var buf bytes.Buffer
		require.NoError(t, src.WriteSnapshot(&buf))

		dst, err := New(newTestRule(t, 2))
		require.NoError(t, err)
		hdr, err := dst.ReadSnapshot(&buf)

		require.NoError(t, err)
		assert.Equal(t, "Ellipsoid", hdr.Rule)
		assert.Equal(t, 2, hdr.Dimension)
		assert.Equal(t, 3, hdr.Slots)
		require.Equal(t, 3, dst.Store().Len())

		for i := range 3 {
			want, ok := src.Store().Get(i)
			require.True(t, ok)
			got, ok := dst.Store().Get(i)
			require.True(t, ok)
			assert.Equal(t, want.Centroid(), got.Centroid())
			assert.Equal(t, want.SampleCount(), got.SampleCount())
		}
	})

	t.Run("preserves pruned slots", func(t *testing.T) {
		src, err := New(newTestRule(t, 2))
		require.NoError(t, err)
		_, err = src.Create(pattern.New(0.1, 0.1))
		require.NoError(t, err)
		_, err = src.Create(pattern.New(0.9, 0.9))
		require.NoError(t, err)
		require.True(t, src.Store().Prune(0))

		var buf bytes.Buffer
		require.NoError(t, src.WriteSnapshot(&buf))

		dst, err := New(newTestRule(t, 2))
		require.NoError(t, err)
		_, err = dst.ReadSnapshot(&buf)

		require.NoError(t, err)
		assert.Equal(t, 1, dst.Store().Len())
		assert.Equal(t, 2, dst.Store().Slots())
		_, ok := dst.Store().Get(0)
		assert.False(t, ok)
	})

	t.Run("rejects rule mismatch", func(t *testing.T) {
		src, err := New(newTestRule(t, 2))
		require.NoError(t, err)
		_, err = src.Create(pattern.New(0.1, 0.1))
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, src.WriteSnapshot(&buf))

		other, err := gaussian.New(func(o *gaussian.Options) {
			o.Dimension = 2
		})
		require.NoError(t, err)
		dst, err := New(other)
		require.NoError(t, err)

		_, err = dst.ReadSnapshot(&buf)

		var mismatch *ErrSnapshotMismatch
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "Gaussian", mismatch.WantRule)
		assert.Equal(t, "Ellipsoid", mismatch.GotRule)
		assert.Equal(t, 0, dst.Store().Len())
	})

	t.Run("rejects dimension mismatch", func(t *testing.T) {
		src, err := New(newTestRule(t, 2))
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, src.WriteSnapshot(&buf))

		dst, err := New(newTestRule(t, 3))
		require.NoError(t, err)

		_, err = dst.ReadSnapshot(&buf)

		var mismatch *ErrSnapshotMismatch
		require.ErrorAs(t, err, &mismatch)
	})

	t.Run("rejects garbage input", func(t *testing.T) {
		dst, err := New(newTestRule(t, 2))
		require.NoError(t, err)

		_, err = dst.ReadSnapshot(bytes.NewReader([]byte("not a snapshot")))
		require.Error(t, err)
	})
}
