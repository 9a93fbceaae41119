package download

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "bare id", url: "dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "watch url", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "watch url with extra params", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", want: "dQw4w9WgXcQ"},
		{name: "watch url with fragment", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ#top", want: "dQw4w9WgXcQ"},
		{name: "short link", url: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "short link with query", url: "https://youtu.be/dQw4w9WgXcQ?t=42", want: "dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractVideoIDInvalid(t *testing.T) {
	for _, url := range []string{
		"https://www.youtube.com/",
		"https://example.com/video",
		"https://www.youtube.com/watch?v=",
	} {
		_, err := ExtractVideoID(url)

		var invalid *ErrInvalidURL
		require.ErrorAs(t, err, &invalid, url)
		assert.Equal(t, url, invalid.URL)
	}
}

func TestFullURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", fullURL("abc123"))
	assert.Equal(t, "https://youtu.be/abc123", fullURL("https://youtu.be/abc123"))
	assert.Equal(t, "http://example.com/x", fullURL("http://example.com/x"))
}

func TestCheckDependencyMissing(t *testing.T) {
	err := checkDependency("definitely-not-a-real-tool-xyz", "https://example.com")

	var missing *ErrDependencyMissing
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "definitely-not-a-real-tool-xyz", missing.Tool)
	assert.Contains(t, missing.Error(), "Install it")
}
