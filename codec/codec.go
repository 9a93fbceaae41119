// Package codec centralizes the serialization of the metadata artifact.
//
// Changing the codec of an existing store is a breaking change: bytes
// written by one codec are only guaranteed to decode with the same one.
// Both built-in codecs emit plain JSON and are interchangeable today.
package codec

// Codec encodes and decodes values. Implementations must be safe for
// concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}
