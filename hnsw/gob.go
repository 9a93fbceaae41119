package hnsw

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Compile time checks to ensure HNSW satisfies the gob interfaces.
var (
	_ gob.GobEncoder = (*HNSW)(nil)
	_ gob.GobDecoder = (*HNSW)(nil)
)

// persistedOptions holds the serializable subset of Options. The
// distance function is reconstructed from its type on decode; the RNG
// is reseeded, which only affects layer assignment of future inserts.
type persistedOptions struct {
	M            int
	EF           int
	Heuristic    bool
	DistanceType DistanceType
}

// GobEncode serializes the full graph state.
func (h *HNSW) GobEncode() ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)

	for _, v := range []any{
		h.dimension,
		h.entryPoint,
		h.maxLevel,
		h.live,
		h.nodes,
		h.keys,
		persistedOptions{
			M:            h.opts.M,
			EF:           h.opts.EF,
			Heuristic:    h.opts.Heuristic,
			DistanceType: h.opts.DistanceType,
		},
	} {
		if err := encoder.Encode(v); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// GobDecode restores a graph previously encoded with GobEncode.
func (h *HNSW) GobDecode(data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	decoder := gob.NewDecoder(bytes.NewBuffer(data))

	var popts persistedOptions
	for _, v := range []any{
		&h.dimension,
		&h.entryPoint,
		&h.maxLevel,
		&h.live,
		&h.nodes,
		&h.keys,
		&popts,
	} {
		if err := decoder.Decode(v); err != nil {
			return err
		}
	}

	h.opts = Options{
		M:            popts.M,
		EF:           popts.EF,
		Heuristic:    popts.Heuristic,
		DistanceType: popts.DistanceType,
	}
	h.maxConnectionsPerLayer = h.opts.M
	h.maxConnectionsLayer0 = 2 * h.opts.M
	h.layerMultiplier = 1 / math.Log(float64(h.opts.M))

	h.distanceFunc = h.opts.DistanceType.Func()
	if h.distanceFunc == nil {
		return fmt.Errorf("unknown distance type: %d", h.opts.DistanceType)
	}
	h.rng = rand.New(rand.NewSource(time.Now().UnixNano())) // nolint gosec

	if h.keys == nil {
		h.keys = make(map[uint64]uint32)
	}

	return nil
}
