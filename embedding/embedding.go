// Package embedding turns segment text into dense vectors using an
// OpenAI-compatible embeddings endpoint, by default a local Ollama
// server.
package embedding

import (
	"context"
	"fmt"
)

// Embedder produces dense vectors for text.
type Embedder interface {
	// Embed returns the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one embedding per input text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector dimension this embedder produces.
	Dimension() int
}

// ErrUnavailable indicates the embedding endpoint could not be reached.
type ErrUnavailable struct {
	BaseURL string
	Err     error
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("embedding service unavailable at %s (is ollama running? try: ollama serve): %v", e.BaseURL, e.Err)
}

func (e *ErrUnavailable) Unwrap() error {
	return e.Err
}

// ErrDimensionMismatch indicates the service returned vectors of an
// unexpected dimension.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
