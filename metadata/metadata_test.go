package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sawt/model"
)

func record(videoID string, idx int, start, end float64, text string) model.StoredSegment {
	return model.StoredSegment{
		VideoID:      videoID,
		SegmentIndex: idx,
		Start:        start,
		End:          end,
		Text:         text,
	}
}

func TestPutGetRemove(t *testing.T) {
	tbl, err := Open(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)

	tbl.Put(1, record("v1", 0, 0, 5, "hello"))

	rec, err := tbl.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "hello", rec.Text)
	assert.Equal(t, uint64(1), rec.Key)

	tbl.Remove(1)
	_, err = tbl.Get(1)
	assert.ErrorIs(t, err, ErrNotFound)

	// Removing an absent key is a no-op.
	tbl.Remove(1)
	assert.Equal(t, 0, tbl.Len())
}

func TestPutOverwrites(t *testing.T) {
	tbl, err := Open(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)

	tbl.Put(1, record("v1", 0, 0, 5, "A"))
	tbl.Put(1, record("v1", 0, 0, 5, "B"))

	assert.Equal(t, 1, tbl.Len())
	rec, err := tbl.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "B", rec.Text)
}

func TestListByVideoOrdering(t *testing.T) {
	tbl, err := Open(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)

	tbl.Put(3, record("v1", 2, 10, 15, "third"))
	tbl.Put(1, record("v1", 0, 0, 5, "first"))
	tbl.Put(2, record("v1", 1, 5, 10, "second"))
	tbl.Put(4, record("v2", 0, 0, 5, "other video"))

	segments := tbl.ListByVideo("v1")
	require.Len(t, segments, 3)
	assert.Equal(t, "first", segments[0].Text)
	assert.Equal(t, "second", segments[1].Text)
	assert.Equal(t, "third", segments[2].Text)

	assert.Empty(t, tbl.ListByVideo("unknown"))
}

func TestVideoIDs(t *testing.T) {
	tbl, err := Open(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)

	tbl.Put(1, record("v1", 0, 0, 5, "a"))
	tbl.Put(2, record("v2", 0, 0, 5, "b"))
	tbl.Put(3, record("v1", 1, 5, 9, "c"))

	assert.ElementsMatch(t, []string{"v1", "v2"}, tbl.VideoIDs())
	assert.ElementsMatch(t, []uint64{1, 3}, tbl.KeysByVideo("v1"))
	assert.True(t, tbl.HasVideo("v2"))
	assert.False(t, tbl.HasVideo("v3"))
	assert.True(t, tbl.InVideo("v1", 3))
	assert.False(t, tbl.InVideo("v1", 2))
	assert.False(t, tbl.InVideo("v3", 1))
}

func TestVideoBitmapShrinks(t *testing.T) {
	tbl, err := Open(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)

	tbl.Put(1, record("v1", 0, 0, 5, "a"))
	tbl.Remove(1)

	assert.False(t, tbl.HasVideo("v1"))
	assert.Empty(t, tbl.VideoIDs())
}

func TestFlushAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")

	tbl, err := Open(path)
	require.NoError(t, err)
	tbl.Put(12345, record("v1", 0, 1.5, 4.25, "persisted"))
	require.NoError(t, tbl.Flush())

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Len())

	rec, err := reopened.Get(12345)
	require.NoError(t, err)
	assert.Equal(t, "persisted", rec.Text)
	assert.Equal(t, uint64(12345), rec.Key, "key is rebuilt from the map key")
	assert.Equal(t, 1.5, rec.Start)
	assert.ElementsMatch(t, []uint64{12345}, reopened.KeysByVideo("v1"))
}

func TestArtifactShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")

	tbl, err := Open(path)
	require.NoError(t, err)
	tbl.Put(7, record("v1", 0, 0, 2, "shape"))
	require.NoError(t, tbl.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Decimal string keys mapping to record objects.
	assert.Contains(t, string(data), `"7"`)
	assert.Contains(t, string(data), `"video_id"`)
	assert.Contains(t, string(data), `"segment_index"`)
	assert.NotContains(t, string(data), `"Key"`)
}

func TestOpenCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := Open(path)

	var corrupt *ErrCorrupt
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, path, corrupt.Path)
}

func TestOpenBadKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not-a-number":{"video_id":"v1"}}`), 0o644))

	_, err := Open(path)

	var corrupt *ErrCorrupt
	assert.ErrorAs(t, err, &corrupt)
}
