// Package index manages the lifecycle of the persisted ANN index: it
// opens, mutates, searches and flushes an HNSW graph whose artifact is
// an s2-compressed gob blob behind a small magic header.
//
// The artifact is owned entirely by this package and treated as a
// black box by the rest of the system.
package index

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/klauspost/compress/s2"

	"github.com/hupe1980/sawt/hnsw"
	sawtfs "github.com/hupe1980/sawt/internal/fs"
)

// magic identifies the artifact format; the trailing byte is the
// format version.
var magic = []byte{'S', 'A', 'W', 'T', 'I', 'X', 0x01}

// ErrCorrupt indicates that the persisted artifact exists but cannot
// be parsed. It carries the offending path for the operator.
type ErrCorrupt struct {
	Path  string
	cause error
}

func (e *ErrCorrupt) Error() string {
	return fmt.Sprintf("index corrupt: %s: %v", e.Path, e.cause)
}

func (e *ErrCorrupt) Unwrap() error { return e.cause }

// Options configures the index manager and the graph it builds.
type Options struct {
	// M is the maximum number of neighbours per graph node.
	M int

	// EFConstruction is the beam width used while inserting.
	EFConstruction int

	// EFSearch is the beam width used while searching.
	EFSearch int

	// RandomSeed fixes layer assignment for reproducible graphs.
	RandomSeed *int64

	// FS is the filesystem used for flushing. Nil means the local
	// filesystem; tests inject failures here.
	FS sawtfs.FileSystem
}

// DefaultOptions match the graph defaults: sufficient for collections
// up to the low millions of vectors at >95% recall.
var DefaultOptions = Options{
	M:              16,
	EFConstruction: 128,
	EFSearch:       128,
}

// Manager owns the mapping from segment key to embedding. It is not
// safe for concurrent use; the store serializes access.
type Manager struct {
	path  string
	graph *hnsw.HNSW
	opts  Options
}

// Open loads the index artifact at path, or creates an empty index
// configured for vectors of the given dimension when no artifact
// exists. An unparsable artifact fails with ErrCorrupt; an artifact
// recorded with a different dimensionality fails with
// hnsw.ErrDimensionMismatch.
//
// The graph construction parameters (M, EFConstruction) recorded in an
// existing artifact take precedence over the requested options: links
// already built with the old parameters cannot be rebuilt to new ones.
// EFSearch is query-time only and always honors the options.
func Open(path string, dimension int, optFns ...func(o *Options)) (*Manager, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	graphOpts := func(o *hnsw.Options) {
		o.M = opts.M
		o.EF = opts.EFConstruction
		o.RandomSeed = opts.RandomSeed
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		graph, err := hnsw.New(dimension, graphOpts)
		if err != nil {
			return nil, err
		}
		return &Manager{path: path, graph: graph, opts: opts}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}

	if len(data) < len(magic) || !bytes.Equal(data[:len(magic)], magic) {
		return nil, &ErrCorrupt{Path: path, cause: errors.New("bad magic")}
	}

	payload, err := s2.Decode(nil, data[len(magic):])
	if err != nil {
		return nil, &ErrCorrupt{Path: path, cause: err}
	}

	graph, err := hnsw.New(dimension, graphOpts)
	if err != nil {
		return nil, err
	}

	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(graph); err != nil {
		return nil, &ErrCorrupt{Path: path, cause: err}
	}

	if graph.Dimension() != dimension {
		return nil, &hnsw.ErrDimensionMismatch{Expected: dimension, Actual: graph.Dimension()}
	}

	return &Manager{path: path, graph: graph, opts: opts}, nil
}

// Path returns the artifact path.
func (m *Manager) Path() string { return m.path }

// Len returns the number of live entries.
func (m *Manager) Len() int { return m.graph.Len() }

// Contains reports whether key is present.
func (m *Manager) Contains(key uint64) bool { return m.graph.Contains(key) }

// Keys returns all live keys in unspecified order.
func (m *Manager) Keys() []uint64 { return m.graph.Keys() }

// Stats returns graph statistics.
func (m *Manager) Stats() hnsw.Stats { return m.graph.Stats() }

// Insert adds a new entry. The vector length must equal the configured
// dimensionality. Inserting an existing key is a caller error: the
// caller owns the upsert policy and must Remove first.
func (m *Manager) Insert(key uint64, vector []float32) error {
	return m.graph.Insert(key, vector)
}

// Remove deletes the entry for key if present; removing an absent key
// is a no-op, not an error.
func (m *Manager) Remove(key uint64) {
	m.graph.Remove(key)
}

// Search returns up to k (key, distance) pairs in ascending cosine
// distance order, restricted to keys accepted by filter when filter is
// non-nil. Exact ties may appear in either order.
func (m *Manager) Search(query []float32, k int, filter func(key uint64) bool) ([]hnsw.SearchResult, error) {
	return m.graph.KNNSearch(query, k, m.opts.EFSearch, filter)
}

// Flush persists the index to its path, overwriting the prior artifact
// atomically.
func (m *Manager) Flush() error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(m.graph); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	compressed := s2.Encode(nil, payload.Bytes())

	artifact := make([]byte, 0, len(magic)+len(compressed))
	artifact = append(artifact, magic...)
	artifact = append(artifact, compressed...)

	if err := sawtfs.WriteFileAtomic(m.opts.FS, m.path, artifact, 0o644); err != nil {
		return fmt.Errorf("flush index %s: %w", m.path, err)
	}

	return nil
}
