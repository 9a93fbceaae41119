// Package download fetches YouTube audio as 16 kHz mono WAV using
// yt-dlp with an ffmpeg postprocessor.
package download

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrDependencyMissing indicates a required external tool is not on
// PATH.
type ErrDependencyMissing struct {
	Tool string
	Hint string
}

func (e *ErrDependencyMissing) Error() string {
	return fmt.Sprintf("%s not found. Install it: %s", e.Tool, e.Hint)
}

// ErrInvalidURL indicates no video ID could be extracted.
type ErrInvalidURL struct {
	URL string
}

func (e *ErrInvalidURL) Error() string {
	return fmt.Sprintf("could not extract video ID from: %s", e.URL)
}

// ErrDownloadFailed wraps a non-zero yt-dlp exit.
type ErrDownloadFailed struct {
	Stderr string
}

func (e *ErrDownloadFailed) Error() string {
	return fmt.Sprintf("yt-dlp failed: %s", e.Stderr)
}

// ExtractVideoID pulls the video ID out of a YouTube URL. A bare ID
// (no slashes, no dots) passes through unchanged.
func ExtractVideoID(url string) (string, error) {
	if !strings.ContainsAny(url, "/.") {
		return url, nil
	}

	if _, after, ok := strings.Cut(url, "v="); ok {
		id := splitAny(after, "&#")
		if id != "" {
			return id, nil
		}
	}

	if _, after, ok := strings.Cut(url, "youtu.be/"); ok {
		id := splitAny(after, "?&#")
		if id != "" {
			return id, nil
		}
	}

	return "", &ErrInvalidURL{URL: url}
}

func splitAny(s, cutset string) string {
	if i := strings.IndexAny(s, cutset); i >= 0 {
		return s[:i]
	}

	return s
}

// fullURL builds a watch URL from a bare video ID.
func fullURL(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}

	return "https://www.youtube.com/watch?v=" + url
}

func checkDependency(tool, hint string) error {
	if _, err := exec.LookPath(tool); err != nil {
		return &ErrDependencyMissing{Tool: tool, Hint: hint}
	}

	return nil
}

// Download fetches the audio track of a YouTube video into outputDir
// as <videoID>.wav, 16 kHz mono as whisper.cpp expects. It returns the
// path to the WAV file.
func Download(ctx context.Context, url, outputDir string) (string, error) {
	if err := checkDependency("yt-dlp", "https://github.com/yt-dlp/yt-dlp"); err != nil {
		return "", err
	}

	if err := checkDependency("ffmpeg", "https://ffmpeg.org"); err != nil {
		return "", err
	}

	videoID, err := ExtractVideoID(url)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}

	outputTemplate := filepath.Join(outputDir, videoID+".%(ext)s")
	wavPath := filepath.Join(outputDir, videoID+".wav")

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, "yt-dlp",
		"--extract-audio",
		"--audio-format", "wav",
		"--postprocessor-args", "ffmpeg:-ar 16000 -ac 1",
		"--output", outputTemplate,
		fullURL(url),
	)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		return "", &ErrDownloadFailed{Stderr: strings.TrimSpace(stderr.String())}
	}

	if _, err := os.Stat(wavPath); err != nil {
		return "", &ErrDownloadFailed{Stderr: "download succeeded but WAV file not found"}
	}

	return wavPath, nil
}
