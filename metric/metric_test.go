package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical direction", func(t *testing.T) {
		sim, err := CosineSimilarity([]float32{1, 0}, []float32{2, 0})
		assert.NoError(t, err)
		assert.InDelta(t, 1.0, sim, 1e-6)
	})

	t.Run("orthogonal", func(t *testing.T) {
		sim, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
		assert.NoError(t, err)
		assert.InDelta(t, 0.0, sim, 1e-6)
	})

	t.Run("opposite", func(t *testing.T) {
		sim, err := CosineSimilarity([]float32{1, 0}, []float32{-1, 0})
		assert.NoError(t, err)
		assert.InDelta(t, -1.0, sim, 1e-6)
	})

	t.Run("zero vector", func(t *testing.T) {
		sim, err := CosineSimilarity([]float32{0, 0}, []float32{1, 0})
		assert.NoError(t, err)
		assert.Equal(t, float32(0), sim)
	})

	t.Run("size mismatch", func(t *testing.T) {
		_, err := CosineSimilarity([]float32{1, 0}, []float32{1})
		assert.ErrorIs(t, err, ErrVectorSizeMismatch)
	})
}

func TestCosineDistance(t *testing.T) {
	// Distance is 1 - similarity, so the range is [0, 2].
	d1, err := CosineDistance([]float32{1, 0}, []float32{1, 0})
	assert.NoError(t, err)
	assert.InDelta(t, 0.0, d1, 1e-6)

	d2, err := CosineDistance([]float32{1, 0}, []float32{-1, 0})
	assert.NoError(t, err)
	assert.InDelta(t, 2.0, d2, 1e-6)

	// Closer directions yield smaller distances.
	near, err := CosineDistance([]float32{1, 0}, []float32{0.9, 0.1})
	assert.NoError(t, err)
	far, err := CosineDistance([]float32{1, 0}, []float32{0, 1})
	assert.NoError(t, err)
	assert.Less(t, near, far)
}

func TestSquaredL2(t *testing.T) {
	d, err := SquaredL2([]float32{1, 2}, []float32{4, 6})
	assert.NoError(t, err)
	assert.InDelta(t, 25.0, d, 1e-6)

	_, err = SquaredL2([]float32{1}, []float32{1, 2})
	assert.ErrorIs(t, err, ErrVectorSizeMismatch)
}
