package calculator

import (
	"fmt"

	"github.com/guregu/null/v6"
)

// Normalize rescales a series to [0,1] using its own observed min and max.
// Missing values stay missing. A constant series returns ErrZeroVariance and a
// series without observations returns ErrInsufficientData.
func Normalize(values []null.Float) ([]null.Float, error) {
	low, high, n := Extremes(values)
	if n == 0 {
		return nil, fmt.Errorf("normalize: %w", ErrInsufficientData)
	}
	if high == low {
		return nil, fmt.Errorf("normalize: %w (all %d values equal %g)", ErrZeroVariance, n, low)
	}

	span := high - low
	out := make([]null.Float, len(values))
	for i, v := range values {
		if !v.Valid {
			continue
		}
		pos := (v.Float64 - low) / span
		// guard rounding at the edges so the extremes land exactly on 0 and 1
		switch v.Float64 {
		case low:
			pos = 0
		case high:
			pos = 1
		}
		out[i] = null.FloatFrom(pos)
	}
	return out, nil
}
