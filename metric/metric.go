// Package metric provides the distance functions used by the vector
// index.
package metric

import (
	"errors"
	"math"
)

// ErrVectorSizeMismatch is returned when the two vectors of a distance
// calculation have different lengths.
var ErrVectorSizeMismatch = errors.New("vector sizes do not match")

// Dot calculates the dot product of two float32 slices.
// The slices must have the same length (caller's responsibility).
func Dot(v1, v2 []float32) float32 {
	var sum float32
	for i := range v1 {
		sum += v1[i] * v2[i]
	}
	return sum
}

// Magnitude calculates the magnitude (length) of a float32 slice.
func Magnitude(v []float32) float32 {
	return float32(math.Sqrt(float64(Dot(v, v))))
}

// CosineSimilarity calculates the cosine similarity between two float32
// slices. A zero vector has similarity 0 to everything.
func CosineSimilarity(v1, v2 []float32) (float32, error) {
	if len(v1) != len(v2) {
		return 0, ErrVectorSizeMismatch
	}

	magnitudeA := Magnitude(v1)
	magnitudeB := Magnitude(v2)

	// Avoid division by zero
	if magnitudeA == 0 || magnitudeB == 0 {
		return 0, nil
	}

	return Dot(v1, v2) / (magnitudeA * magnitudeB), nil
}

// CosineDistance calculates 1 - cosine similarity, in [0, 2]:
// 0 means identical direction, 2 means opposite.
func CosineDistance(v1, v2 []float32) (float32, error) {
	sim, err := CosineSimilarity(v1, v2)
	if err != nil {
		return 0, err
	}

	return 1 - sim, nil
}

// SquaredL2 calculates the squared L2 distance between two float32
// slices.
func SquaredL2(v1, v2 []float32) (float32, error) {
	if len(v1) != len(v2) {
		return 0, ErrVectorSizeMismatch
	}

	var sum float32
	for i := range v1 {
		d := v1[i] - v2[i]
		sum += d * d
	}

	return sum, nil
}
