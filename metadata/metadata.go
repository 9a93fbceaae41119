// Package metadata maintains the mapping from segment key to stored
// segment, persisted as a single JSON artifact keyed by the decimal
// representation of the key.
//
// Alongside the record map the table keeps a Roaring bitmap of keys per
// video ID, so video-scoped filtering during search does not scan the
// whole table.
package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/sawt/codec"
	sawtfs "github.com/hupe1980/sawt/internal/fs"
	"github.com/hupe1980/sawt/model"
)

// ErrNotFound is returned when a requested key has no record.
var ErrNotFound = errors.New("segment not found")

// ErrCorrupt indicates that the persisted artifact exists but cannot
// be parsed. It carries the offending path for the operator.
type ErrCorrupt struct {
	Path  string
	cause error
}

func (e *ErrCorrupt) Error() string {
	return fmt.Sprintf("metadata corrupt: %s: %v", e.Path, e.cause)
}

func (e *ErrCorrupt) Unwrap() error { return e.cause }

// Options configures the table.
type Options struct {
	// Codec serializes the artifact. Defaults to codec.Default.
	Codec codec.Codec

	// FS is the filesystem used for flushing. Nil means the local
	// filesystem; tests inject failures here.
	FS sawtfs.FileSystem
}

// Table maps segment keys to stored segments. It is not safe for
// concurrent use; the store serializes access.
type Table struct {
	path    string
	codec   codec.Codec
	fsys    sawtfs.FileSystem
	records map[uint64]model.StoredSegment
	byVideo map[string]*roaring64.Bitmap
}

// Open loads the table at path, or starts empty when no artifact
// exists. An unreadable artifact fails with ErrCorrupt.
func Open(path string, optFns ...func(o *Options)) (*Table, error) {
	opts := Options{Codec: codec.Default}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}

	t := &Table{
		path:    path,
		codec:   opts.Codec,
		fsys:    opts.FS,
		records: make(map[uint64]model.StoredSegment),
		byVideo: make(map[string]*roaring64.Bitmap),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata %s: %w", path, err)
	}

	raw := make(map[string]model.StoredSegment)
	if err := t.codec.Unmarshal(data, &raw); err != nil {
		return nil, &ErrCorrupt{Path: path, cause: err}
	}

	for keyStr, rec := range raw {
		key, err := strconv.ParseUint(keyStr, 10, 64)
		if err != nil {
			return nil, &ErrCorrupt{Path: path, cause: fmt.Errorf("bad key %q: %w", keyStr, err)}
		}
		rec.Key = key
		t.put(key, rec)
	}

	return t, nil
}

// Path returns the artifact path.
func (t *Table) Path() string { return t.path }

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// Put inserts or overwrites the record for key.
func (t *Table) Put(key uint64, rec model.StoredSegment) {
	rec.Key = key
	t.put(key, rec)
}

func (t *Table) put(key uint64, rec model.StoredSegment) {
	if prev, ok := t.records[key]; ok && prev.VideoID != rec.VideoID {
		t.dropFromVideo(prev.VideoID, key)
	}

	t.records[key] = rec

	bm, ok := t.byVideo[rec.VideoID]
	if !ok {
		bm = roaring64.New()
		t.byVideo[rec.VideoID] = bm
	}
	bm.Add(key)
}

// Remove deletes the record for key; removing an absent key is a
// no-op, not an error.
func (t *Table) Remove(key uint64) {
	rec, ok := t.records[key]
	if !ok {
		return
	}

	delete(t.records, key)
	t.dropFromVideo(rec.VideoID, key)
}

func (t *Table) dropFromVideo(videoID string, key uint64) {
	bm, ok := t.byVideo[videoID]
	if !ok {
		return
	}

	bm.Remove(key)
	if bm.IsEmpty() {
		delete(t.byVideo, videoID)
	}
}

// Get returns the record for key or ErrNotFound.
func (t *Table) Get(key uint64) (model.StoredSegment, error) {
	rec, ok := t.records[key]
	if !ok {
		return model.StoredSegment{}, fmt.Errorf("%w: key %d", ErrNotFound, key)
	}

	return rec, nil
}

// Contains reports whether key has a record.
func (t *Table) Contains(key uint64) bool {
	_, ok := t.records[key]
	return ok
}

// ListByVideo returns all records for videoID ordered by ascending
// start time. The result is empty (not an error) for unknown videos.
func (t *Table) ListByVideo(videoID string) []model.StoredSegment {
	bm, ok := t.byVideo[videoID]
	if !ok {
		return nil
	}

	segments := make([]model.StoredSegment, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		segments = append(segments, t.records[it.Next()])
	}

	slices.SortFunc(segments, func(a, b model.StoredSegment) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})

	return segments
}

// KeysByVideo returns the keys of all records for videoID.
func (t *Table) KeysByVideo(videoID string) []uint64 {
	bm, ok := t.byVideo[videoID]
	if !ok {
		return nil
	}

	return bm.ToArray()
}

// InVideo reports whether key belongs to videoID. It is the fast path
// for video-scoped search filtering.
func (t *Table) InVideo(videoID string, key uint64) bool {
	bm, ok := t.byVideo[videoID]
	return ok && bm.Contains(key)
}

// HasVideo reports whether any record for videoID exists.
func (t *Table) HasVideo(videoID string) bool {
	_, ok := t.byVideo[videoID]
	return ok
}

// VideoIDs returns the distinct video IDs present, in unspecified
// order.
func (t *Table) VideoIDs() []string {
	ids := make([]string, 0, len(t.byVideo))
	for id := range t.byVideo {
		ids = append(ids, id)
	}

	return ids
}

// Keys returns all keys present, in unspecified order.
func (t *Table) Keys() []uint64 {
	keys := make([]uint64, 0, len(t.records))
	for k := range t.records {
		keys = append(keys, k)
	}

	return keys
}

// Flush persists the whole table to its path, overwriting the prior
// artifact atomically.
func (t *Table) Flush() error {
	raw := make(map[string]model.StoredSegment, len(t.records))
	for key, rec := range t.records {
		raw[strconv.FormatUint(key, 10)] = rec
	}

	data, err := t.codec.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	if err := sawtfs.WriteFileAtomic(t.fsys, t.path, data, 0o644); err != nil {
		return fmt.Errorf("flush metadata %s: %w", t.path, err)
	}

	return nil
}
