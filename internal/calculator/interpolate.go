package calculator

import (
	"MarketLens/internal/model"

	"github.com/guregu/null/v6"
)

// Interpolate fills interior missing values by linear interpolation on elapsed
// time between the nearest valid neighbours. Missing values at either end have
// no neighbour on the open side and are left missing. The input is not modified.
func Interpolate(s model.TimeSeries) model.TimeSeries {
	out := s.Clone()
	pts := out.Points

	prev := -1
	for i := range pts {
		if !pts[i].Value.Valid {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			fillGap(pts, prev, i)
		}
		prev = i
	}
	return out
}

// fillGap interpolates pts strictly between the valid anchors lo and hi.
func fillGap(pts []model.Point, lo, hi int) {
	t0, v0 := pts[lo].Time, pts[lo].Value.Float64
	t1, v1 := pts[hi].Time, pts[hi].Value.Float64
	span := float64(t1.Sub(t0))
	for k := lo + 1; k < hi; k++ {
		frac := float64(pts[k].Time.Sub(t0)) / span
		pts[k].Value = null.FloatFrom(v0 + (v1-v0)*frac)
	}
}
