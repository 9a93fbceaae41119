package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "store_data", cfg.DataDir)
	assert.Equal(t, "downloads", cfg.DownloadDir)
	assert.Equal(t, "http://localhost:11434/v1", cfg.OllamaBaseURL)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, 768, cfg.EmbeddingDimension)
	assert.Equal(t, 16, cfg.M)
	assert.Equal(t, 128, cfg.EFConstruction)
	assert.Equal(t, 128, cfg.EFSearch)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SAWT_DATA_DIR", "/tmp/elsewhere")
	t.Setenv("SAWT_EMBEDDING_DIMENSION", "384")
	t.Setenv("SAWT_HNSW_M", "32")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/elsewhere", cfg.DataDir)
	assert.Equal(t, 384, cfg.EmbeddingDimension)
	assert.Equal(t, 32, cfg.M)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("SAWT_EMBEDDING_DIMENSION", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
