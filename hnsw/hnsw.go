// Package hnsw implements a Hierarchical Navigable Small World graph
// for approximate nearest neighbor search over keyed vectors.
//
// Entries are addressed by caller-supplied uint64 keys. Removal is
// implemented with tombstones: a removed node stays in the graph as a
// routing point but can never appear in a search result.
package hnsw

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/sawt/internal/queue"
	"github.com/hupe1980/sawt/metric"
)

// ErrDimensionMismatch is a named error type for dimension mismatch.
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrKeyExists is returned when Insert is called with a key that is
// already present. Callers own the upsert policy and must Remove first.
type ErrKeyExists struct {
	Key uint64
}

func (e *ErrKeyExists) Error() string {
	return fmt.Sprintf("key already exists: %d", e.Key)
}

// ErrInvalidDimension indicates an invalid configured dimension.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

// DistanceFunc represents a function for calculating the distance
// between two vectors.
type DistanceFunc func(v1, v2 []float32) (float32, error)

// DistanceType selects the distance function used by the graph.
type DistanceType int

const (
	// DistanceTypeCosine is cosine distance (1 - cosine similarity), in [0, 2].
	DistanceTypeCosine DistanceType = iota

	// DistanceTypeSquaredL2 is the squared euclidean distance.
	DistanceTypeSquaredL2
)

// Func returns the distance function for the type, or nil if unknown.
func (dt DistanceType) Func() DistanceFunc {
	switch dt {
	case DistanceTypeCosine:
		return metric.CosineDistance
	case DistanceTypeSquaredL2:
		return metric.SquaredL2
	default:
		return nil
	}
}

// String returns a string representation of the DistanceType.
func (dt DistanceType) String() string {
	switch dt {
	case DistanceTypeCosine:
		return "Cosine"
	case DistanceTypeSquaredL2:
		return "SquaredL2"
	default:
		return "Unknown"
	}
}

// SearchResult is a single match: the entry's key and its distance to
// the query (lower = more similar).
type SearchResult struct {
	Key      uint64
	Distance float32
}

// Node represents a node in the HNSW graph. Fields are exported for
// gob encoding only; the type is not part of the public API surface.
type Node struct {
	Connections [][]uint32 // Links to other nodes, indexed by layer
	Vector      []float32
	Layer       int
	Key         uint64
	Deleted     bool
}

// Options represents the options for configuring HNSW.
type Options struct {
	// M specifies the number of established connections for every new
	// element during construction. The range 12-48 works for most use
	// cases; higher M suits high-dimensional data and high recall.
	M int

	// EF specifies the size of the dynamic candidate list during
	// construction. Larger values improve graph quality at the cost of
	// slower inserts.
	EF int

	// Heuristic selects the neighbour-selection heuristic from the HNSW
	// paper instead of naive closest-first selection.
	Heuristic bool

	// DistanceType selects the distance function.
	DistanceType DistanceType

	// RandomSeed fixes the layer-assignment RNG for reproducible graphs.
	// Nil seeds from the clock.
	RandomSeed *int64
}

// DefaultOptions are tuned for embedding-sized vectors (hundreds of
// dimensions) at collection sizes up to the low millions.
var DefaultOptions = Options{
	M:            16,
	EF:           128,
	Heuristic:    true,
	DistanceType: DistanceTypeCosine,
}

// HNSW represents the Hierarchical Navigable Small World graph.
type HNSW struct {
	dimension              int
	maxConnectionsPerLayer int     // mmax
	maxConnectionsLayer0   int     // 2 * mmax for layer 0
	layerMultiplier        float64 // normalization factor for level generation
	entryPoint             uint32
	maxLevel               int

	nodes []*Node
	keys  map[uint64]uint32 // live key -> node id
	live  int

	distanceFunc DistanceFunc
	rng          *rand.Rand

	opts Options

	mu sync.RWMutex
}

// New creates a new HNSW graph for vectors of the given dimension.
func New(dimension int, optFns ...func(o *Options)) (*HNSW, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if dimension < 1 {
		return nil, &ErrInvalidDimension{Dimension: dimension}
	}

	if opts.M < 2 {
		// M == 1 would make the layer multiplier 1/log(1) undefined
		opts.M = 2
	}

	distanceFunc := opts.DistanceType.Func()
	if distanceFunc == nil {
		return nil, fmt.Errorf("unknown distance type: %d", opts.DistanceType)
	}

	var rng *rand.Rand
	if opts.RandomSeed != nil {
		rng = rand.New(rand.NewSource(*opts.RandomSeed)) // nolint gosec
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) // nolint gosec
	}

	h := &HNSW{
		dimension:              dimension,
		maxConnectionsPerLayer: opts.M,
		maxConnectionsLayer0:   2 * opts.M,
		layerMultiplier:        1 / math.Log(float64(opts.M)),
		distanceFunc:           distanceFunc,
		rng:                    rng,
		keys:                   make(map[uint64]uint32),
		opts:                   opts,
	}

	// Node 0 is a tombstoned sentinel so the graph is never empty and
	// searches always have an entry point.
	h.nodes = []*Node{{
		Connections: make([][]uint32, 1),
		Vector:      make([]float32, dimension),
		Deleted:     true,
	}}

	return h, nil
}

// Dimension returns the configured vector dimensionality.
func (h *HNSW) Dimension() int { return h.dimension }

// Len returns the number of live entries.
func (h *HNSW) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.live
}

// Contains reports whether key has a live entry.
func (h *HNSW) Contains(key uint64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.keys[key]

	return ok
}

// Keys returns the set of live keys in unspecified order.
func (h *HNSW) Keys() []uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	keys := make([]uint64, 0, len(h.keys))
	for k := range h.keys {
		keys = append(keys, k)
	}

	return keys
}

// Insert adds a new keyed vector to the graph. Inserting a key that is
// already present is a caller error and fails with ErrKeyExists.
func (h *HNSW) Insert(key uint64, v []float32) error {
	if len(v) != h.dimension {
		return &ErrDimensionMismatch{Expected: h.dimension, Actual: len(v)}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.keys[key]; ok {
		return &ErrKeyExists{Key: key}
	}

	// Copy so later caller mutations cannot reach into the graph.
	vector := make([]float32, len(v))
	copy(vector, v)

	layer := h.randomLayer()

	id := uint32(len(h.nodes))
	node := &Node{
		Connections: make([][]uint32, layer+1),
		Vector:      vector,
		Layer:       layer,
		Key:         key,
	}

	currID, currDist, err := h.greedyDescend(vector, h.maxLevel, min(layer, h.maxLevel))
	if err != nil {
		return err
	}

	for level := min(layer, h.maxLevel); level >= 0; level-- {
		candidates, err := h.searchLayer(vector, currID, currDist, h.opts.EF, level, anyNode)
		if err != nil {
			return err
		}

		neighbours := h.selectNeighbours(candidates, h.opts.M)
		node.Connections[level] = neighbours

		// The closest neighbour becomes the entry point for the level below.
		if len(neighbours) > 0 {
			currID = neighbours[0]
			if currDist, err = h.distanceFunc(h.nodes[currID].Vector, vector); err != nil {
				return err
			}
		}
	}

	h.nodes = append(h.nodes, node)
	h.keys[key] = id
	h.live++

	// Backlink the neighbours, making the node visible.
	for level := min(layer, h.maxLevel); level >= 0; level-- {
		for _, neighbour := range node.Connections[level] {
			h.link(neighbour, id, level)
		}
	}

	if layer > h.maxLevel {
		h.entryPoint = id
		h.maxLevel = layer
	}

	return nil
}

// Remove tombstones the entry for key. It reports whether the key was
// present; removing an absent key is not an error.
func (h *HNSW) Remove(key uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	id, ok := h.keys[key]
	if !ok {
		return false
	}

	delete(h.keys, key)
	h.nodes[id].Deleted = true
	h.live--

	// A tombstoned entry point keeps routing; it just cannot surface
	// in results.

	return true
}

// KNNSearch performs a k-nearest neighbour search, returning up to k
// results in ascending distance order. efSearch bounds the dynamic
// candidate list (values below k are raised to k). When filter is
// non-nil only keys it accepts are returned.
func (h *HNSW) KNNSearch(q []float32, k int, efSearch int, filter func(key uint64) bool) ([]SearchResult, error) {
	if len(q) != h.dimension {
		return nil, &ErrDimensionMismatch{Expected: h.dimension, Actual: len(q)}
	}

	if k < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.live == 0 {
		return nil, nil
	}

	ef := max(efSearch, k)

	currID, currDist, err := h.greedyDescend(q, h.maxLevel, 0)
	if err != nil {
		return nil, err
	}

	eligible := func(n *Node) bool {
		if n.Deleted {
			return false
		}
		return filter == nil || filter(n.Key)
	}

	results, err := h.searchLayer(q, currID, currDist, ef, 0, eligible)
	if err != nil {
		return nil, err
	}

	return h.collect(results, k), nil
}

// BruteSearch performs an exact linear scan. It exists for recall
// testing and tiny collections.
func (h *HNSW) BruteSearch(q []float32, k int, filter func(key uint64) bool) ([]SearchResult, error) {
	if len(q) != h.dimension {
		return nil, &ErrDimensionMismatch{Expected: h.dimension, Actual: len(q)}
	}

	if k < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	results := queue.NewMax(k + 1)

	for id, node := range h.nodes {
		if node.Deleted || (filter != nil && !filter(node.Key)) {
			continue
		}

		d, err := h.distanceFunc(q, node.Vector)
		if err != nil {
			return nil, err
		}

		results.Push(queue.Item{ID: uint32(id), Distance: d})
		if results.Len() > k {
			results.Pop()
		}
	}

	return h.collect(results, k), nil
}

// collect drains a max-heap of candidates into up to k results ordered
// by ascending distance.
func (h *HNSW) collect(results *queue.PriorityQueue, k int) []SearchResult {
	for results.Len() > k {
		results.Pop()
	}

	out := make([]SearchResult, results.Len())
	for i := results.Len() - 1; i >= 0; i-- {
		item, _ := results.Pop()
		out[i] = SearchResult{Key: h.nodes[item.ID].Key, Distance: item.Distance}
	}

	return out
}

// randomLayer draws a layer from the exponentially decaying level
// distribution.
func (h *HNSW) randomLayer() int {
	r := h.rng.Float64()
	if r == 0 {
		r = math.SmallestNonzeroFloat64
	}
	return int(math.Floor(-math.Log(r) * h.layerMultiplier))
}

// greedyDescend walks the single shortest path from the entry point
// down to toLevel (exclusive of layers <= toLevel) and returns the
// closest node found together with its distance.
func (h *HNSW) greedyDescend(v []float32, fromLevel, toLevel int) (uint32, float32, error) {
	currID := h.entryPoint

	currDist, err := h.distanceFunc(h.nodes[currID].Vector, v)
	if err != nil {
		return 0, 0, err
	}

	for level := fromLevel; level > toLevel; level-- {
		changed := true
		for changed {
			changed = false

			curr := h.nodes[currID]
			if level >= len(curr.Connections) {
				continue
			}

			for _, id := range curr.Connections[level] {
				d, err := h.distanceFunc(h.nodes[id].Vector, v)
				if err != nil {
					return 0, 0, err
				}

				if d < currDist {
					currID = id
					currDist = d
					changed = true
				}
			}
		}
	}

	return currID, currDist, nil
}

// anyNode is the eligibility predicate used during construction.
// Tombstoned nodes stay linkable so the graph never loses connectivity
// to its entry point; query-time filtering keeps them out of results.
func anyNode(*Node) bool { return true }

// searchLayer runs a beam search in one layer. It returns a max-heap
// of up to ef eligible nodes; traversal routes through ineligible
// (tombstoned or filtered-out) nodes without admitting them as results.
func (h *HNSW) searchLayer(q []float32, entryID uint32, entryDist float32, ef int, level int, eligible func(n *Node) bool) (*queue.PriorityQueue, error) {
	visited := bitset.New(uint(len(h.nodes)))
	visited.Set(uint(entryID))

	candidates := queue.NewMin(ef)
	candidates.Push(queue.Item{ID: entryID, Distance: entryDist})

	results := queue.NewMax(ef + 1)
	if eligible(h.nodes[entryID]) {
		results.Push(queue.Item{ID: entryID, Distance: entryDist})
	}

	for candidates.Len() > 0 {
		candidate, _ := candidates.Pop()

		if results.Len() >= ef {
			if worst, _ := results.Top(); candidate.Distance > worst.Distance {
				break
			}
		}

		node := h.nodes[candidate.ID]
		if level >= len(node.Connections) {
			continue
		}

		for _, id := range node.Connections[level] {
			if visited.Test(uint(id)) {
				continue
			}
			visited.Set(uint(id))

			d, err := h.distanceFunc(q, h.nodes[id].Vector)
			if err != nil {
				return nil, err
			}

			admit := results.Len() < ef
			if !admit {
				worst, _ := results.Top()
				admit = d < worst.Distance
			}
			if !admit {
				continue
			}

			candidates.Push(queue.Item{ID: id, Distance: d})

			if eligible(h.nodes[id]) {
				results.Push(queue.Item{ID: id, Distance: d})
				if results.Len() > ef {
					results.Pop()
				}
			}
		}
	}

	return results, nil
}

// selectNeighbours reduces a max-heap of candidates to at most m
// neighbour ids, closest first.
func (h *HNSW) selectNeighbours(candidates *queue.PriorityQueue, m int) []uint32 {
	// Drain into ascending distance order.
	asc := make([]queue.Item, candidates.Len())
	for i := candidates.Len() - 1; i >= 0; i-- {
		asc[i], _ = candidates.Pop()
	}

	if !h.opts.Heuristic {
		if len(asc) > m {
			asc = asc[:m]
		}
		ids := make([]uint32, len(asc))
		for i, item := range asc {
			ids[i] = item.ID
		}
		return ids
	}

	// Heuristic from the HNSW paper: keep a candidate only if it is
	// closer to the query than to every neighbour already kept. This
	// spreads links across clusters instead of bunching them.
	kept := make([]queue.Item, 0, m)
	discarded := make([]queue.Item, 0, len(asc))

	for _, item := range asc {
		if len(kept) >= m {
			break
		}

		closerToKept := false
		for _, other := range kept {
			d, err := h.distanceFunc(h.nodes[item.ID].Vector, h.nodes[other.ID].Vector)
			if err == nil && d < item.Distance {
				closerToKept = true
				break
			}
		}

		if closerToKept {
			discarded = append(discarded, item)
		} else {
			kept = append(kept, item)
		}
	}

	for _, item := range discarded {
		if len(kept) >= m {
			break
		}
		kept = append(kept, item)
	}

	ids := make([]uint32, len(kept))
	for i, item := range kept {
		ids[i] = item.ID
	}

	return ids
}

// link connects from -> to at the given level, pruning back to the
// connection budget when the node overflows.
func (h *HNSW) link(from, to uint32, level int) {
	maxConnections := h.maxConnectionsPerLayer
	if level == 0 {
		// HNSW allows double the connections on the bottom layer.
		maxConnections = h.maxConnectionsLayer0
	}

	node := h.nodes[from]
	if level >= len(node.Connections) {
		return
	}

	node.Connections[level] = append(node.Connections[level], to)

	if len(node.Connections[level]) <= maxConnections {
		return
	}

	candidates := queue.NewMax(len(node.Connections[level]))
	for _, id := range node.Connections[level] {
		d, err := h.distanceFunc(node.Vector, h.nodes[id].Vector)
		if err != nil {
			continue
		}
		candidates.Push(queue.Item{ID: id, Distance: d})
	}

	node.Connections[level] = h.selectNeighbours(candidates, maxConnections)
}
