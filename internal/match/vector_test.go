package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
	}{
		{"identical", Vector{1, 2, 3}, Vector{1, 2, 3}, 1.0},
		{"orthogonal", Vector{1, 0}, Vector{0, 1}, 0.0},
		{"opposite clamped to zero", Vector{1, 0}, Vector{-1, 0}, 0.0},
		{"zero vector", Vector{0, 0, 0}, Vector{1, 2, 3}, 0.0},
		{"both zero", Vector{0, 0}, Vector{0, 0}, 0.0},
		{"empty", Vector{}, Vector{}, 0.0},
		{"mismatched lengths", Vector{1, 2}, Vector{1, 2, 3}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosine_ScaleInvariant(t *testing.T) {
	a := Vector{0.5, 1.5, -0.3}
	b := Vector{5, 15, -3}
	assert.InDelta(t, 1.0, Cosine(a, b), 1e-6)
}

func TestVectorRoundTrip(t *testing.T) {
	original := Vector{0.1, -2.5, 3.75, 0}

	decoded, err := DecodeVector(EncodeVector(original))
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDecodeVector_BadLength(t *testing.T) {
	_, err := DecodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDecodeVector_Empty(t *testing.T) {
	decoded, err := DecodeVector(nil)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestVectorIsZero(t *testing.T) {
	assert.True(t, Vector{}.IsZero())
	assert.True(t, Vector{0, 0}.IsZero())
	assert.False(t, Vector{0, 0.01}.IsZero())
}
