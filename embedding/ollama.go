package embedding

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the OpenAI-compatible endpoint of a local
	// Ollama server.
	DefaultBaseURL = "http://localhost:11434/v1"

	// DefaultModel is the embedding model pulled via
	// "ollama pull nomic-embed-text".
	DefaultModel = "nomic-embed-text"

	// DefaultDimension is the output dimension of nomic-embed-text.
	DefaultDimension = 768
)

// Options configures an OllamaEmbedder.
type Options struct {
	// BaseURL is the OpenAI-compatible API root.
	BaseURL string

	// Model is the embedding model name.
	Model string

	// Dimension is the expected output dimension. Responses with a
	// different dimension are rejected.
	Dimension int

	// MaxRequestsPerSecond throttles calls to the endpoint.
	// Zero means no throttling.
	MaxRequestsPerSecond float64

	// MaxRetries bounds retry attempts on transient failures.
	MaxRetries uint64

	// HTTPClient overrides the underlying HTTP client.
	HTTPClient openai.HTTPDoer
}

// DefaultOptions are the options used unless overridden.
var DefaultOptions = Options{
	BaseURL:    DefaultBaseURL,
	Model:      DefaultModel,
	Dimension:  DefaultDimension,
	MaxRetries: 3,
}

// OllamaEmbedder embeds text through an OpenAI-compatible embeddings
// endpoint. It is safe for concurrent use.
type OllamaEmbedder struct {
	client  *openai.Client
	opts    Options
	limiter *rate.Limiter
}

var _ Embedder = (*OllamaEmbedder)(nil)

// NewOllama creates an embedder backed by an Ollama server.
func NewOllama(optFns ...func(o *Options)) *OllamaEmbedder {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	// Ollama ignores the key but the client requires one.
	cfg := openai.DefaultConfig("ollama")
	cfg.BaseURL = opts.BaseURL

	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	e := &OllamaEmbedder{
		client: openai.NewClientWithConfig(cfg),
		opts:   opts,
	}

	if opts.MaxRequestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(opts.MaxRequestsPerSecond), 1)
	}

	return e
}

// Dimension returns the expected vector dimension.
func (e *OllamaEmbedder) Dimension() int {
	return e.opts.Dimension
}

// Embed returns the embedding for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return vectors[0], nil
}

// EmbedBatch returns one embedding per input text, in order.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var resp openai.EmbeddingResponse

	b := retry.NewFibonacci(1 * time.Second)

	err := retry.Do(ctx, retry.WithMaxRetries(e.opts.MaxRetries, b), func(ctx context.Context) error {
		var err error

		resp, err = e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(e.opts.Model),
			Input: texts,
		})
		if err != nil {
			if isConnectionError(err) {
				return retry.RetryableError(&ErrUnavailable{BaseURL: e.opts.BaseURL, Err: err})
			}

			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))

	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding response index %d out of range", item.Index)
		}

		if len(item.Embedding) != e.opts.Dimension {
			return nil, &ErrDimensionMismatch{Expected: e.opts.Dimension, Actual: len(item.Embedding)}
		}

		vectors[item.Index] = item.Embedding
	}

	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("embedding response missing vector for input %d", i)
		}
	}

	return vectors, nil
}

func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}
