package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// Point is a single dated observation. An invalid Value marks a missing quote.
type Point struct {
	Time  time.Time
	Value null.Float
}

// TimeSeries holds one instrument's observed closing prices.
// Points are ordered by strictly increasing Time.
type TimeSeries struct {
	Name   string
	Ticker string
	Points []Point
}

// Len returns the number of points.
func (s TimeSeries) Len() int { return len(s.Points) }

// Observed returns the number of non-missing points.
func (s TimeSeries) Observed() int {
	n := 0
	for _, p := range s.Points {
		if p.Value.Valid {
			n++
		}
	}
	return n
}

// Clone returns a deep copy whose Points can be modified independently.
func (s TimeSeries) Clone() TimeSeries {
	out := s
	if s.Points != nil {
		out.Points = make([]Point, len(s.Points))
		copy(out.Points, s.Points)
	}
	return out
}

// Values returns the point values in order.
func (s TimeSeries) Values() []null.Float {
	vals := make([]null.Float, len(s.Points))
	for i, p := range s.Points {
		vals[i] = p.Value
	}
	return vals
}

// Date truncates t to its calendar date at UTC midnight.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
