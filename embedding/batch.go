package embedding

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of texts sent per request by EmbedAll.
const DefaultBatchSize = 32

// EmbedAll embeds texts in batches of batchSize, running up to
// concurrency requests in parallel. Results are returned in input
// order. A batchSize or concurrency below one falls back to a sane
// default.
func EmbedAll(ctx context.Context, embedder Embedder, texts []string, batchSize, concurrency int) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	if concurrency < 1 {
		concurrency = 1
	}

	vectors := make([][]float32, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))

		g.Go(func() error {
			batch, err := embedder.EmbedBatch(ctx, texts[start:end])
			if err != nil {
				return err
			}

			copy(vectors[start:end], batch)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return vectors, nil
}
