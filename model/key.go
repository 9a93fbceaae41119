package model

import (
	"hash/fnv"
	"strconv"
)

// SegmentKey derives the stable 64-bit key for a segment from its
// video ID and zero-based position, using FNV-1a over
// "{videoID}_{segmentIndex}".
//
// The same pair always yields the same key, which is what makes
// re-ingestion an upsert instead of a duplicate. Distinct pairs
// collide only with the (accepted) probability of the FNV-1a family.
func SegmentKey(videoID string, segmentIndex int) uint64 {
	h := fnv.New64a()
	h.Write([]byte(videoID))
	h.Write([]byte{'_'})
	h.Write([]byte(strconv.Itoa(segmentIndex)))
	return h.Sum64()
}
