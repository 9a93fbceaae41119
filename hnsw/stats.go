package hnsw

// Stats summarizes the state of the graph.
type Stats struct {
	Dimension  int
	Live       int
	Tombstones int
	MaxLevel   int
	M          int
	EF         int
}

// Stats returns a snapshot of graph statistics.
func (h *HNSW) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// len(h.nodes)-1 excludes the sentinel; live entries are the rest.
	return Stats{
		Dimension:  h.dimension,
		Live:       h.live,
		Tombstones: len(h.nodes) - 1 - h.live,
		MaxLevel:   h.maxLevel,
		M:          h.opts.M,
		EF:         h.opts.EF,
	}
}
