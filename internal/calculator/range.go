package calculator

import (
	"math"

	"github.com/guregu/null/v6"
)

// Extremes scans values and returns the min and max over non-missing entries
// along with how many entries were considered.
func Extremes(values []null.Float) (low, high float64, n int) {
	low = math.Inf(1)
	high = math.Inf(-1)
	for _, v := range values {
		if !v.Valid {
			continue
		}
		n++
		if v.Float64 > high {
			high = v.Float64
		}
		if v.Float64 < low {
			low = v.Float64
		}
	}
	if n == 0 {
		return 0, 0, 0
	}
	return low, high, n
}
