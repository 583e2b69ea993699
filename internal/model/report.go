package model

import (
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// SeriesResult is the pipeline output for one instrument.
type SeriesResult struct {
	Instrument   Instrument
	Observations int // fetched daily points
	Missing      int // fetched daily points without a close
	Monthly      []null.Float
	Normalized   []null.Float
	NormalizeErr error
	Err          error // fetch-level failure; Monthly and Normalized are nil
}

// OK reports whether the instrument made it into the monthly table.
func (r SeriesResult) OK() bool { return r.Err == nil }

// CorrelationResult is the Pearson coefficient between the index and one commodity.
type CorrelationResult struct {
	Index     string
	Commodity string
	Start     time.Time
	End       time.Time
	Value     null.Float
	Pairs     int
	Err       error
}

// Display renders the coefficient rounded to two decimals, or "n/a" when undefined.
func (c CorrelationResult) Display() string {
	if !c.Value.Valid {
		return "n/a"
	}
	return decimal.NewFromFloat(c.Value.Float64).StringFixed(2)
}

// Report bundles everything one analysis run produces.
type Report struct {
	RunID        string
	Start        time.Time
	End          time.Time
	Months       []time.Time
	Index        SeriesResult
	Commodities  []SeriesResult
	Correlations []CorrelationResult
	GeneratedAt  time.Time
}

// Correlation returns the result for the named commodity.
func (r *Report) Correlation(commodity string) (CorrelationResult, bool) {
	for _, c := range r.Correlations {
		if c.Commodity == commodity {
			return c, true
		}
	}
	return CorrelationResult{}, false
}
