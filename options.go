package sawt

import (
	"github.com/hupe1980/sawt/codec"
	"github.com/hupe1980/sawt/internal/fs"
)

const (
	// IndexFile is the file name of the ANN index artifact inside the
	// store directory.
	IndexFile = "index.bin"

	// MetadataFile is the file name of the metadata artifact inside
	// the store directory.
	MetadataFile = "metadata.json"
)

type options struct {
	logger         *Logger
	codec          codec.Codec
	fileSystem     fs.FileSystem
	m              int
	efConstruction int
	efSearch       int
	randomSeed     *int64
}

// Option configures the store at open time.
type Option func(*options)

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCodec sets the codec for the metadata artifact. Changing the
// codec of an existing store is a breaking change.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithM sets the maximum number of neighbours per node in the ANN
// graph.
func WithM(m int) Option {
	return func(o *options) {
		o.m = m
	}
}

// WithEFConstruction sets the insertion beam width of the ANN graph.
func WithEFConstruction(ef int) Option {
	return func(o *options) {
		o.efConstruction = ef
	}
}

// WithEFSearch sets the search beam width of the ANN graph.
func WithEFSearch(ef int) Option {
	return func(o *options) {
		o.efSearch = ef
	}
}

// WithRandomSeed fixes the graph's layer-assignment RNG, making index
// construction reproducible. Intended for tests.
func WithRandomSeed(seed int64) Option {
	return func(o *options) {
		o.randomSeed = &seed
	}
}
