// Package transcribe runs whisper.cpp over a WAV file and parses the
// resulting segments with timestamps.
package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/hupe1980/sawt/model"
)

const (
	// DefaultBin is the whisper.cpp CLI binary.
	DefaultBin = "whisper-cli"

	// DefaultModelPath is the ggml model used unless overridden.
	DefaultModelPath = "models/whisper-large-v3-turbo.bin"

	// beamSize matches the beam search width used for decoding.
	beamSize = 5
)

// ErrFileNotFound indicates the input WAV does not exist.
type ErrFileNotFound struct {
	Path string
}

func (e *ErrFileNotFound) Error() string {
	return fmt.Sprintf("WAV file not found: %s", e.Path)
}

// ErrModelNotFound indicates the ggml model file does not exist.
type ErrModelNotFound struct {
	Path string
}

func (e *ErrModelNotFound) Error() string {
	return fmt.Sprintf("model file not found: %s (download a ggml model from https://github.com/ggml-org/whisper.cpp)", e.Path)
}

// ErrWhisperFailed wraps a non-zero whisper.cpp exit.
type ErrWhisperFailed struct {
	Stderr string
}

func (e *ErrWhisperFailed) Error() string {
	return fmt.Sprintf("whisper failed: %s", e.Stderr)
}

// Options configures a Transcriber.
type Options struct {
	// Bin is the whisper.cpp CLI binary name or path.
	Bin string

	// ModelPath is the ggml model file.
	ModelPath string

	// Language is an optional language code such as "en" or "it".
	// Empty means auto-detection.
	Language string
}

// DefaultOptions are the options used unless overridden.
var DefaultOptions = Options{
	Bin:       DefaultBin,
	ModelPath: DefaultModelPath,
}

// Transcriber shells out to the whisper.cpp CLI.
type Transcriber struct {
	opts Options
}

// New creates a Transcriber.
func New(optFns ...func(o *Options)) *Transcriber {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Transcriber{opts: opts}
}

// whisperOutput mirrors the JSON emitted by whisper.cpp with -oj.
type whisperOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// Transcribe runs whisper.cpp over wavPath and returns the spoken
// segments in order. Empty segments are dropped.
func (t *Transcriber) Transcribe(ctx context.Context, wavPath string) ([]model.Segment, error) {
	if _, err := os.Stat(wavPath); err != nil {
		return nil, &ErrFileNotFound{Path: wavPath}
	}

	if _, err := os.Stat(t.opts.ModelPath); err != nil {
		return nil, &ErrModelNotFound{Path: t.opts.ModelPath}
	}

	if _, err := exec.LookPath(t.opts.Bin); err != nil {
		return nil, fmt.Errorf("%s not found on PATH. Install whisper.cpp: https://github.com/ggml-org/whisper.cpp", t.opts.Bin)
	}

	tmpDir, err := os.MkdirTemp("", "sawt-whisper-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	outPrefix := filepath.Join(tmpDir, "transcript")

	args := []string{
		"-m", t.opts.ModelPath,
		"-f", wavPath,
		"-bs", fmt.Sprintf("%d", beamSize),
		"-oj",
		"-of", outPrefix,
		"--no-prints",
	}

	if t.opts.Language != "" {
		args = append(args, "-l", t.opts.Language)
	}

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, t.opts.Bin, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, &ErrWhisperFailed{Stderr: strings.TrimSpace(stderr.String())}
	}

	data, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, &ErrWhisperFailed{Stderr: "transcription succeeded but JSON output not found"}
	}

	return ParseOutput(data)
}

// ParseOutput decodes whisper.cpp JSON output into segments.
// Offsets are milliseconds and become seconds.
func ParseOutput(data []byte) ([]model.Segment, error) {
	var out whisperOutput

	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode whisper output: %w", err)
	}

	segments := make([]model.Segment, 0, len(out.Transcription))

	for _, item := range out.Transcription {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}

		segments = append(segments, model.Segment{
			Start: float64(item.Offsets.From) / 1000.0,
			End:   float64(item.Offsets.To) / 1000.0,
			Text:  text,
		})
	}

	return segments, nil
}
