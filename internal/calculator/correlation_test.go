package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPearson_CoMovingScenario(t *testing.T) {
	r, n, err := Pearson(floats(100, 100, 110, 120), floats(10, 10, 11, 12))
	require.NoError(t, err)

	assert.Equal(t, 4, n)
	assert.InDelta(t, 1.0, r, 1e-12)
}

func TestPearson_Properties(t *testing.T) {
	a := floats(2431.7, 2580.2, 2399.9, 2755.1, 2612.0, 2480.4, 2501.3)
	b := floats(1812.4, 1790.0, 1855.5, 1901.2, 1888.8, 1840.1, 1876.9)

	ab, _, err := Pearson(a, b)
	require.NoError(t, err)
	ba, _, err := Pearson(b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba, "symmetric")

	self, _, err := Pearson(a, a)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, self, 1e-12, "self correlation")

	na, err := Normalize(a)
	require.NoError(t, err)
	nb, err := Normalize(b)
	require.NoError(t, err)
	normed, _, err := Pearson(na, nb)
	require.NoError(t, err)
	assert.InDelta(t, ab, normed, 1e-9, "invariant under positive affine rescaling")

	assert.GreaterOrEqual(t, ab, -1.0)
	assert.LessOrEqual(t, ab, 1.0)
}

func TestPearson_Inverse(t *testing.T) {
	r, _, err := Pearson(floats(1, 2, 3, 4), floats(8, 6, 4, 2))
	require.NoError(t, err)
	assert.InDelta(t, -1.0, r, 1e-12)
}

func TestPearson_PairwiseComplete(t *testing.T) {
	r, n, err := Pearson(floats(1, nan, 3, 4, 5), floats(2, 4, nan, 8, 10))
	require.NoError(t, err)

	assert.Equal(t, 3, n)
	assert.InDelta(t, 1.0, r, 1e-12)
}

func TestPearson_ExtremeMagnitudes(t *testing.T) {
	want, _, err := Pearson(floats(1, 2, 4), floats(1, 2, 3))
	require.NoError(t, err)

	tests := []struct {
		name  string
		scale float64
	}{
		{"huge", 1e160},
		{"tiny", 1e-170},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.scale
			r, n, err := Pearson(floats(1*s, 2*s, 4*s), floats(1*s, 2*s, 3*s))
			require.NoError(t, err)
			assert.Equal(t, 3, n)
			assert.False(t, math.IsNaN(r))
			assert.InDelta(t, want, r, 1e-12)
		})
	}
}

func TestPearson_Failures(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want error
	}{
		{"no pairs", []float64{nan, nan}, []float64{1, 2}, ErrInsufficientData},
		{"one pair", []float64{1, nan}, []float64{3, 4}, ErrInsufficientData},
		{"empty", nil, nil, ErrInsufficientData},
		{"constant left", []float64{5, 5, 5}, []float64{1, 2, 3}, ErrZeroVariance},
		{"constant right", []float64{1, 2, 3}, []float64{7, 7, 7}, ErrZeroVariance},
		{"constant over pairs only", []float64{1, 2, 2}, []float64{nan, 4, 5}, ErrZeroVariance},
		{"length mismatch", []float64{1, 2, 3}, []float64{1, 2}, ErrLengthMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Pearson(floats(tt.a...), floats(tt.b...))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
