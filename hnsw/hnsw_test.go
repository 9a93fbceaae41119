package hnsw

import (
	"bytes"
	"encoding/gob"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T, dimension int, optFns ...func(o *Options)) *HNSW {
	t.Helper()

	seed := int64(42)
	h, err := New(dimension, append([]func(o *Options){func(o *Options) {
		o.RandomSeed = &seed
	}}, optFns...)...)
	require.NoError(t, err)

	return h
}

func randomVectors(seed int64, n, dimension int) [][]float32 {
	rng := rand.New(rand.NewSource(seed)) // nolint gosec

	vectors := make([][]float32, n)
	for i := range vectors {
		vectors[i] = make([]float32, dimension)
		for j := range vectors[i] {
			vectors[i][j] = rng.Float32()
		}
	}

	return vectors
}

func TestNew(t *testing.T) {
	h, err := New(16, func(o *Options) {
		o.M = 8
		o.EF = 200
	})
	require.NoError(t, err)

	assert.Equal(t, 8, h.opts.M)
	assert.Equal(t, 8, h.maxConnectionsPerLayer)
	assert.Equal(t, 16, h.maxConnectionsLayer0)
	assert.Equal(t, 200, h.opts.EF)
	assert.Equal(t, 0, h.Len())
}

func TestNewInvalidDimension(t *testing.T) {
	_, err := New(0)

	var ed *ErrInvalidDimension
	require.ErrorAs(t, err, &ed)
	assert.Equal(t, 0, ed.Dimension)
}

func TestInsertDimensionMismatch(t *testing.T) {
	h := seeded(t, 4)

	err := h.Insert(1, []float32{1, 2})

	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 4, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
}

func TestInsertExistingKey(t *testing.T) {
	h := seeded(t, 2)
	require.NoError(t, h.Insert(7, []float32{1, 0}))

	err := h.Insert(7, []float32{0, 1})

	var ke *ErrKeyExists
	require.ErrorAs(t, err, &ke)
	assert.Equal(t, uint64(7), ke.Key)
	assert.Equal(t, 1, h.Len())
}

func TestSearchOrdering(t *testing.T) {
	h := seeded(t, 2)

	require.NoError(t, h.Insert(1, []float32{1, 0}))
	require.NoError(t, h.Insert(2, []float32{0, 1}))
	require.NoError(t, h.Insert(3, []float32{0.9, 0.1}))

	results, err := h.KNNSearch([]float32{1, 0}, 2, 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, uint64(1), results[0].Key)
	assert.Equal(t, uint64(3), results[1].Key)
	assert.Less(t, results[0].Distance, results[1].Distance)
}

func TestSearchEmptyGraph(t *testing.T) {
	h := seeded(t, 2)

	results, err := h.KNNSearch([]float32{1, 0}, 5, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchFilter(t *testing.T) {
	h := seeded(t, 2)

	require.NoError(t, h.Insert(1, []float32{1, 0}))
	require.NoError(t, h.Insert(2, []float32{0.99, 0.01}))
	require.NoError(t, h.Insert(3, []float32{0, 1}))

	// The closest matches are excluded; only key 3 may surface.
	results, err := h.KNNSearch([]float32{1, 0}, 3, 10, func(key uint64) bool {
		return key == 3
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(3), results[0].Key)
}

func TestRemove(t *testing.T) {
	h := seeded(t, 2)

	require.NoError(t, h.Insert(1, []float32{1, 0}))
	require.NoError(t, h.Insert(2, []float32{0, 1}))

	assert.True(t, h.Remove(1))
	assert.False(t, h.Remove(1), "second remove is a no-op")
	assert.False(t, h.Contains(1))
	assert.Equal(t, 1, h.Len())

	results, err := h.KNNSearch([]float32{1, 0}, 2, 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(2), results[0].Key)
}

func TestReinsertAfterRemove(t *testing.T) {
	h := seeded(t, 2)

	require.NoError(t, h.Insert(1, []float32{1, 0}))
	assert.True(t, h.Remove(1))
	require.NoError(t, h.Insert(1, []float32{0, 1}))

	results, err := h.KNNSearch([]float32{0, 1}, 1, 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(1), results[0].Key)
	assert.InDelta(t, 0.0, results[0].Distance, 1e-5)
}

func TestRecallAgainstBruteSearch(t *testing.T) {
	const (
		size      = 1000
		dimension = 16
		k         = 10
		queries   = 50
	)

	h := seeded(t, dimension)

	vectors := randomVectors(1, size, dimension)
	for i, v := range vectors {
		require.NoError(t, h.Insert(uint64(i+1), v))
	}

	queryVectors := randomVectors(2, queries, dimension)

	var hits, total int
	for _, q := range queryVectors {
		exact, err := h.BruteSearch(q, k, nil)
		require.NoError(t, err)

		approx, err := h.KNNSearch(q, k, 200, nil)
		require.NoError(t, err)

		exactKeys := make(map[uint64]struct{}, len(exact))
		for _, r := range exact {
			exactKeys[r.Key] = struct{}{}
		}

		for _, r := range approx {
			if _, ok := exactKeys[r.Key]; ok {
				hits++
			}
		}
		total += len(exact)
	}

	recall := float64(hits) / float64(total)
	assert.Greater(t, recall, 0.95, "recall %f below threshold", recall)
}

func TestGobRoundTrip(t *testing.T) {
	h := seeded(t, 8)

	vectors := randomVectors(3, 100, 8)
	for i, v := range vectors {
		require.NoError(t, h.Insert(uint64(i), v))
	}
	assert.True(t, h.Remove(13))

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(h))

	restored, err := New(8)
	require.NoError(t, err)
	require.NoError(t, gob.NewDecoder(&buf).Decode(restored))

	assert.Equal(t, h.Len(), restored.Len())
	assert.Equal(t, h.Dimension(), restored.Dimension())
	assert.False(t, restored.Contains(13))

	// Both graphs answer identically for a fixed query.
	q := randomVectors(4, 1, 8)[0]
	want, err := h.KNNSearch(q, 5, 100, nil)
	require.NoError(t, err)
	got, err := restored.KNNSearch(q, 5, 100, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestKeys(t *testing.T) {
	h := seeded(t, 2)
	require.NoError(t, h.Insert(10, []float32{1, 0}))
	require.NoError(t, h.Insert(20, []float32{0, 1}))

	assert.ElementsMatch(t, []uint64{10, 20}, h.Keys())
}
