package model

// Segment is one unit of transcribed speech as produced by the
// transcriber: a half-open time range in seconds and the spoken text.
// Segments are immutable; re-ingestion replaces them wholesale.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// StoredSegment is the persisted record for a segment. It pairs the
// descriptive fields with the derived key but not the embedding,
// which lives only in the ANN index.
//
// The Key field is redundant with the map key in the metadata artifact
// and is rebuilt on load rather than serialized.
type StoredSegment struct {
	VideoID      string  `json:"video_id"`
	SegmentIndex int     `json:"segment_index"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
	Key          uint64  `json:"-"`
}

// SearchResult is a single search hit: the stored segment and its
// cosine distance to the query (lower is more similar).
type SearchResult struct {
	StoredSegment
	Distance float32
}
