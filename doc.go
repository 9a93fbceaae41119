// Package sawt turns spoken audio into semantically searchable text.
//
// The core of the package is the [Store]: it pairs an approximate
// nearest neighbor index (an HNSW graph of segment embeddings) with a
// metadata table (the segment texts and timestamps) and keeps the two
// consistent across ingestion, search and deletion.
//
// # Consistency model
//
// The store persists two artifacts: the index (availability-critical)
// and the metadata table (correctness-critical). Every mutating call
// flushes the index first and the table second. A crash between the
// two flushes can therefore leave an orphan index entry with no
// metadata (invisible extra data that search filters out and logs),
// but never a metadata record without a backing vector, which would
// surface hits that cannot be rendered.
//
// # Quick start
//
//	store, err := sawt.Open("store_data", 768)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	n, err := store.StoreTranscript("dQw4w9WgXcQ", pairs)
//
//	results, err := store.Search(queryEmbedding, 5, "")
//
// The store is designed for a single process and a single writer; all
// operations are serialized behind one exclusive lock.
package sawt
