package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sawt/hnsw"
)

func openSeeded(t *testing.T, path string, dimension int) *Manager {
	t.Helper()

	seed := int64(42)
	m, err := Open(path, dimension, func(o *Options) {
		o.RandomSeed = &seed
	})
	require.NoError(t, err)

	return m
}

func TestOpenEmpty(t *testing.T) {
	m := openSeeded(t, filepath.Join(t.TempDir(), "index.bin"), 4)
	assert.Equal(t, 0, m.Len())
}

func TestFlushAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")

	m := openSeeded(t, path, 2)
	require.NoError(t, m.Insert(1, []float32{1, 0}))
	require.NoError(t, m.Insert(2, []float32{0, 1}))
	require.NoError(t, m.Flush())

	reopened := openSeeded(t, path, 2)
	assert.Equal(t, 2, reopened.Len())
	assert.True(t, reopened.Contains(1))
	assert.True(t, reopened.Contains(2))

	results, err := reopened.Search([]float32{1, 0}, 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(1), results[0].Key)
}

func TestFlushOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")

	m := openSeeded(t, path, 2)
	require.NoError(t, m.Insert(1, []float32{1, 0}))
	require.NoError(t, m.Flush())

	m.Remove(1)
	require.NoError(t, m.Flush())

	reopened := openSeeded(t, path, 2)
	assert.Equal(t, 0, reopened.Len())
}

func TestOpenCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	require.NoError(t, os.WriteFile(path, []byte("not an index artifact"), 0o644))

	_, err := Open(path, 2)

	var corrupt *ErrCorrupt
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, path, corrupt.Path)
}

func TestOpenCorruptPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	artifact := append(append([]byte{}, magic...), []byte{0xde, 0xad, 0xbe, 0xef}...)
	require.NoError(t, os.WriteFile(path, artifact, 0o644))

	_, err := Open(path, 2)

	var corrupt *ErrCorrupt
	assert.ErrorAs(t, err, &corrupt)
}

func TestOpenDimensionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")

	m := openSeeded(t, path, 2)
	require.NoError(t, m.Insert(1, []float32{1, 0}))
	require.NoError(t, m.Flush())

	_, err := Open(path, 3)

	var dm *hnsw.ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 3, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
}

func TestInsertExistingKeyIsCallerError(t *testing.T) {
	m := openSeeded(t, filepath.Join(t.TempDir(), "index.bin"), 2)
	require.NoError(t, m.Insert(1, []float32{1, 0}))

	err := m.Insert(1, []float32{0, 1})

	var ke *hnsw.ErrKeyExists
	assert.ErrorAs(t, err, &ke)
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	m := openSeeded(t, filepath.Join(t.TempDir(), "index.bin"), 2)
	m.Remove(99)
	assert.Equal(t, 0, m.Len())
}

func TestSearchFilter(t *testing.T) {
	m := openSeeded(t, filepath.Join(t.TempDir(), "index.bin"), 2)
	require.NoError(t, m.Insert(1, []float32{1, 0}))
	require.NoError(t, m.Insert(2, []float32{0.9, 0.1}))

	results, err := m.Search([]float32{1, 0}, 2, func(key uint64) bool { return key == 2 })
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(2), results[0].Key)
}
