// Package config holds the runtime configuration, loadable from
// SAWT_* environment variables.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config is the full pipeline configuration. Defaults match a local
// setup with Ollama and whisper.cpp installed.
type Config struct {
	// DataDir holds the index and metadata artifacts.
	DataDir string `envconfig:"DATA_DIR" default:"store_data"`

	// DownloadDir receives downloaded WAV files.
	DownloadDir string `envconfig:"DOWNLOAD_DIR" default:"downloads"`

	// OllamaBaseURL is the OpenAI-compatible embeddings endpoint.
	OllamaBaseURL string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434/v1"`

	// EmbeddingModel is the Ollama embedding model name.
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"nomic-embed-text"`

	// EmbeddingDimension is the vector dimension of the model.
	EmbeddingDimension int `envconfig:"EMBEDDING_DIMENSION" default:"768"`

	// EmbeddingBatchSize is the number of texts sent per request.
	EmbeddingBatchSize int `envconfig:"EMBEDDING_BATCH_SIZE" default:"32"`

	// EmbeddingConcurrency caps parallel embedding requests.
	EmbeddingConcurrency int `envconfig:"EMBEDDING_CONCURRENCY" default:"4"`

	// WhisperBin is the whisper.cpp CLI binary.
	WhisperBin string `envconfig:"WHISPER_BIN" default:"whisper-cli"`

	// WhisperModel is the ggml model file for whisper.cpp.
	WhisperModel string `envconfig:"WHISPER_MODEL" default:"models/whisper-large-v3-turbo.bin"`

	// M is the HNSW connectivity parameter.
	M int `envconfig:"HNSW_M" default:"16"`

	// EFConstruction is the HNSW build-time beam width.
	EFConstruction int `envconfig:"HNSW_EF_CONSTRUCTION" default:"128"`

	// EFSearch is the HNSW query-time beam width.
	EFSearch int `envconfig:"HNSW_EF_SEARCH" default:"128"`
}

// Load reads the configuration from SAWT_* environment variables,
// filling unset fields with defaults.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("SAWT", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
