package sawt

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with store-specific context. It provides
// structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler. A nil handler
// falls back to a text handler on stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs
// at the given minimum level.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))}
}

// WithVideoID tags the logger with a video ID.
func (l *Logger) WithVideoID(videoID string) *Logger {
	return &Logger{Logger: l.Logger.With("video_id", videoID)}
}

// LogOrphanKey logs a search hit whose key has no metadata record.
// This is the recoverable crash-between-flushes inconsistency; the hit
// is dropped, not escalated.
func (l *Logger) LogOrphanKey(key uint64) {
	l.Warn("dropping index hit with no metadata record",
		"key", key,
	)
}

// LogFlush logs the outcome of an artifact flush.
func (l *Logger) LogFlush(artifact string, err error) {
	if err != nil {
		l.Error("flush failed",
			"artifact", artifact,
			"error", err,
		)
	} else {
		l.Debug("flush completed",
			"artifact", artifact,
		)
	}
}
