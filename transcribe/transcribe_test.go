package transcribe

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutput(t *testing.T) {
	data := []byte(`{
		"transcription": [
			{"offsets": {"from": 0, "to": 4520}, "text": " Hello world."},
			{"offsets": {"from": 4520, "to": 9100}, "text": " Second segment. "},
			{"offsets": {"from": 9100, "to": 9300}, "text": "   "}
		]
	}`)

	segments, err := ParseOutput(data)
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 4.52, segments[0].End)
	assert.Equal(t, "Hello world.", segments[0].Text)

	assert.Equal(t, 4.52, segments[1].Start)
	assert.Equal(t, 9.1, segments[1].End)
	assert.Equal(t, "Second segment.", segments[1].Text)
}

func TestParseOutputEmpty(t *testing.T) {
	segments, err := ParseOutput([]byte(`{"transcription": []}`))
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestParseOutputInvalid(t *testing.T) {
	_, err := ParseOutput([]byte(`{not json`))
	assert.Error(t, err)
}

func TestTranscribeMissingWAV(t *testing.T) {
	tr := New()

	_, err := tr.Transcribe(context.Background(), "does/not/exist.wav")

	var notFound *ErrFileNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "does/not/exist.wav", notFound.Path)
}

func TestTranscribeMissingModel(t *testing.T) {
	wav := t.TempDir() + "/audio.wav"
	require.NoError(t, writeEmpty(wav))

	tr := New(func(o *Options) {
		o.ModelPath = "does/not/exist.bin"
	})

	_, err := tr.Transcribe(context.Background(), wav)

	var notFound *ErrModelNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, notFound.Error(), "download a ggml model")
}

func writeEmpty(path string) error {
	return os.WriteFile(path, []byte("RIFF"), 0o644)
}
