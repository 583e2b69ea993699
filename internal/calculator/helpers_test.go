package calculator

import (
	"math"
	"time"

	"MarketLens/internal/model"

	"github.com/guregu/null/v6"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// floats builds a value slice; NaN marks a missing entry.
func floats(vals ...float64) []null.Float {
	out := make([]null.Float, len(vals))
	for i, v := range vals {
		if !math.IsNaN(v) {
			out[i] = null.FloatFrom(v)
		}
	}
	return out
}

func series(name string, times []time.Time, vals ...float64) model.TimeSeries {
	s := model.TimeSeries{Name: name, Ticker: name}
	for i, v := range floats(vals...) {
		s.Points = append(s.Points, model.Point{Time: times[i], Value: v})
	}
	return s
}

var nan = math.NaN()
