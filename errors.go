package sawt

import (
	"errors"
	"fmt"

	"github.com/hupe1980/sawt/hnsw"
	"github.com/hupe1980/sawt/index"
	"github.com/hupe1980/sawt/metadata"
)

var (
	// ErrNotFound is returned when a requested segment is absent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidLimit is returned when a search limit is not positive.
	ErrInvalidLimit = errors.New("limit must be positive")
)

// ErrVideoNotFound indicates that no segments exist for the requested
// video ID.
type ErrVideoNotFound struct {
	VideoID string
}

func (e *ErrVideoNotFound) Error() string {
	return fmt.Sprintf("video not found: %s", e.VideoID)
}

// ErrDimensionMismatch indicates a vector/query dimensionality
// mismatch. It is fatal to the single call, not to the process.
//
// The original underlying error (if any) can be accessed via
// errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrCorrupt indicates that a persisted artifact could not be parsed
// at open time. It is fatal at startup and names the offending path.
type ErrCorrupt struct {
	Path  string
	cause error
}

func (e *ErrCorrupt) Error() string {
	return fmt.Sprintf("corrupt artifact: %s: %v", e.Path, e.cause)
}

func (e *ErrCorrupt) Unwrap() error { return e.cause }

// translateError normalizes subsystem errors into the package taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, metadata.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var dm *hnsw.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}

	var ic *index.ErrCorrupt
	if errors.As(err, &ic) {
		return &ErrCorrupt{Path: ic.Path, cause: err}
	}

	var mc *metadata.ErrCorrupt
	if errors.As(err, &mc) {
		return &ErrCorrupt{Path: mc.Path, cause: err}
	}

	return err
}
