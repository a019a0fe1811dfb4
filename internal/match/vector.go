// Package match provides the in-memory job index and the hybrid scoring
// engine that matches candidate profiles against job postings.
package match

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Vector is a fixed-length dense embedding produced by an external provider.
type Vector []float32

// Cosine returns the cosine similarity between a and b, clamped to [0, 1].
// Zero-norm or mismatched inputs yield 0 rather than an error; a degenerate
// embedding must never abort a scoring sweep.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		// Guard against float rounding slightly above 1.
		return 1
	}
	return sim
}

// IsZero reports whether the vector is empty or all-zero.
func (v Vector) IsZero() bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}

// EncodeVector serializes a vector as little-endian float32 bytes for BYTEA
// storage.
func EncodeVector(v Vector) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeVector deserializes a vector previously written by EncodeVector.
func DecodeVector(data []byte) (Vector, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector blob length %d", len(data))
	}
	v := make(Vector, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v, nil
}
