package sawt

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/hupe1980/sawt/codec"
	"github.com/hupe1980/sawt/hnsw"
	"github.com/hupe1980/sawt/index"
	"github.com/hupe1980/sawt/metadata"
	"github.com/hupe1980/sawt/model"
)

// SegmentEmbedding pairs a transcript segment with its embedding.
type SegmentEmbedding struct {
	Segment   model.Segment
	Embedding []float32
}

// Store is the segment vector store: the only component permitted to
// address the ANN index and the metadata table together. It owns the
// invariant that the key sets of both artifacts are equal whenever no
// mutation is in flight.
//
// All operations are serialized behind a single exclusive lock; the
// store is built for a single process with a single writer.
type Store struct {
	mu     sync.Mutex
	index  *index.Manager
	table  *metadata.Table
	logger *Logger
}

// Open creates or loads a store under dir for embeddings of the given
// dimensionality. Unparsable artifacts fail with ErrCorrupt; an index
// artifact recorded with a different dimensionality fails with
// ErrDimensionMismatch.
//
// The graph construction parameters (WithM, WithEFConstruction)
// recorded in an existing index artifact take precedence over the
// configured options; a mismatch is logged, not an error. WithEFSearch
// applies at query time and always takes effect.
func Open(dir string, dimension int, optFns ...Option) (*Store, error) {
	opts := options{
		logger:         NoopLogger(),
		codec:          codec.Default,
		m:              index.DefaultOptions.M,
		efConstruction: index.DefaultOptions.EFConstruction,
		efSearch:       index.DefaultOptions.EFSearch,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	idx, err := index.Open(filepath.Join(dir, IndexFile), dimension, func(o *index.Options) {
		o.M = opts.m
		o.EFConstruction = opts.efConstruction
		o.EFSearch = opts.efSearch
		o.RandomSeed = opts.randomSeed
		o.FS = opts.fileSystem
	})
	if err != nil {
		return nil, translateError(err)
	}

	if stats := idx.Stats(); stats.M != opts.m || stats.EF != opts.efConstruction {
		opts.logger.Warn("index artifact was built with different graph parameters; persisted parameters win",
			"m", stats.M,
			"requested_m", opts.m,
			"ef_construction", stats.EF,
			"requested_ef_construction", opts.efConstruction,
		)
	}

	tbl, err := metadata.Open(filepath.Join(dir, MetadataFile), func(o *metadata.Options) {
		o.Codec = opts.codec
		o.FS = opts.fileSystem
	})
	if err != nil {
		return nil, translateError(err)
	}

	return &Store{
		index:  idx,
		table:  tbl,
		logger: opts.logger,
	}, nil
}

// StoreTranscript ingests the segments of one video. Each pair gets a
// key derived from the video ID and its position; keys already present
// are removed from both artifacts first, so re-ingestion is an upsert,
// never a duplicate. After all pairs are applied the index is flushed
// first and the metadata table second (see the package documentation
// for why this order). It returns the number of segments stored.
func (s *Store) StoreTranscript(videoID string, pairs []SegmentEmbedding) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(pairs) == 0 {
		return 0, nil
	}

	for i, pair := range pairs {
		key := model.SegmentKey(videoID, i)

		if s.table.Contains(key) {
			s.index.Remove(key)
			s.table.Remove(key)
		}

		if err := s.index.Insert(key, pair.Embedding); err != nil {
			return 0, translateError(err)
		}

		s.table.Put(key, model.StoredSegment{
			VideoID:      videoID,
			SegmentIndex: i,
			Start:        pair.Segment.Start,
			End:          pair.Segment.End,
			Text:         pair.Segment.Text,
			Key:          key,
		})
	}

	if err := s.flushBoth(); err != nil {
		return 0, err
	}

	s.logger.WithVideoID(videoID).Debug("transcript stored", "segments", len(pairs))

	return len(pairs), nil
}

// Search returns up to limit segments in ascending cosine distance to
// the query embedding. When videoIDFilter is non-empty only segments
// of that video are considered, even if closer matches exist
// elsewhere. Index hits with no metadata record, possible after a
// crash between the two flushes, are dropped and logged rather than
// escalated: they are missing visibility, not wrong visibility.
func (s *Store) Search(query []float32, limit int, videoIDFilter string) ([]model.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	if s.index.Len() == 0 {
		return nil, nil
	}

	var filter func(key uint64) bool
	if videoIDFilter != "" {
		filter = func(key uint64) bool {
			return s.table.InVideo(videoIDFilter, key)
		}
	}

	hits, err := s.index.Search(query, limit, filter)
	if err != nil {
		return nil, translateError(err)
	}

	results := make([]model.SearchResult, 0, len(hits))
	for _, hit := range hits {
		rec, err := s.table.Get(hit.Key)
		if err != nil {
			if errors.Is(err, metadata.ErrNotFound) {
				s.logger.LogOrphanKey(hit.Key)
				continue
			}
			return nil, translateError(err)
		}

		results = append(results, model.SearchResult{
			StoredSegment: rec,
			Distance:      hit.Distance,
		})
	}

	return results, nil
}

// GetSegment returns the stored segment at segmentIndex of videoID.
// It fails with ErrNotFound when no such segment exists.
func (s *Store) GetSegment(videoID string, segmentIndex int) (model.StoredSegment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.table.Get(model.SegmentKey(videoID, segmentIndex))
	if err != nil {
		return model.StoredSegment{}, translateError(err)
	}

	return rec, nil
}

// GetSegments returns all stored segments for videoID ordered by
// ascending start time. The result is empty for unknown videos.
func (s *Store) GetSegments(videoID string) []model.StoredSegment {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.table.ListByVideo(videoID)
}

// VideoIDs returns the distinct video IDs present, sorted.
func (s *Store) VideoIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.table.VideoIDs()
	slices.Sort(ids)

	return ids
}

// DeleteVideo removes all segments of videoID from both artifacts and
// flushes them. It fails with ErrVideoNotFound, leaving the store
// unchanged, when no segments match, and otherwise returns the number
// of segments removed.
func (s *Store) DeleteVideo(videoID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.table.KeysByVideo(videoID)
	if len(keys) == 0 {
		return 0, &ErrVideoNotFound{VideoID: videoID}
	}

	// Index first, table second, symmetric with ingestion, so the
	// only crash window again produces invisible extra data.
	for _, key := range keys {
		s.index.Remove(key)
	}
	for _, key := range keys {
		s.table.Remove(key)
	}

	if err := s.flushBoth(); err != nil {
		return 0, err
	}

	s.logger.WithVideoID(videoID).Debug("video deleted", "segments", len(keys))

	return len(keys), nil
}

// Len returns the number of stored segments.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.table.Len()
}

// Stats returns statistics about the underlying ANN graph.
func (s *Store) Stats() hnsw.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.index.Stats()
}

// flushBoth persists the index and then the metadata table. A failed
// flush aborts the mutating call and names the artifact that failed;
// the in-memory state stays consistent with whichever artifact last
// succeeded.
func (s *Store) flushBoth() error {
	if err := s.index.Flush(); err != nil {
		s.logger.LogFlush("index", err)
		return fmt.Errorf("index artifact: %w", err)
	}
	s.logger.LogFlush("index", nil)

	if err := s.table.Flush(); err != nil {
		s.logger.LogFlush("metadata", err)
		return fmt.Errorf("metadata artifact: %w", err)
	}
	s.logger.LogFlush("metadata", nil)

	return nil
}
