package calculator

import (
	"fmt"
	"math"

	"github.com/guregu/null/v6"
)

// Pearson computes the product-moment correlation of two index-aligned series
// using pairwise-complete cases: a row is used only when both sides are present.
// It returns the coefficient and the number of pairs used.
func Pearson(a, b []null.Float) (float64, int, error) {
	if len(a) != len(b) {
		return 0, 0, fmt.Errorf("pearson: %w (%d vs %d)", ErrLengthMismatch, len(a), len(b))
	}

	xs := make([]float64, 0, len(a))
	ys := make([]float64, 0, len(b))
	for i := range a {
		if a[i].Valid && b[i].Valid {
			xs = append(xs, a[i].Float64)
			ys = append(ys, b[i].Float64)
		}
	}
	n := len(xs)
	if n < 2 {
		return 0, n, fmt.Errorf("pearson: %w (%d paired observations, need 2)", ErrInsufficientData, n)
	}
	if constant(xs) || constant(ys) {
		return 0, n, fmt.Errorf("pearson: %w", ErrZeroVariance)
	}

	// deviations are scaled to at most 1 in magnitude so the sums of
	// squares stay finite and non-zero for very large or very small prices
	dxs, dys := deviations(xs), deviations(ys)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		sxy += dxs[i] * dys[i]
		sxx += dxs[i] * dxs[i]
		syy += dys[i] * dys[i]
	}
	r := sxy / (math.Sqrt(sxx) * math.Sqrt(syy))
	return math.Max(-1, math.Min(1, r)), n, nil
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

// deviations returns xs minus its mean, divided by the largest absolute deviation.
func deviations(xs []float64) []float64 {
	m := mean(xs)
	out := make([]float64, len(xs))
	scale := 0.0
	for i, x := range xs {
		out[i] = x - m
		scale = math.Max(scale, math.Abs(out[i]))
	}
	if scale > 0 {
		for i := range out {
			out[i] /= scale
		}
	}
	return out
}
