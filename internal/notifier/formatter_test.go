package notifier

import (
	"errors"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"

	"MarketLens/internal/model"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
}

func testReport() *model.Report {
	return &model.Report{
		RunID:  "run-1",
		Start:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		Months: []time.Time{month(2023, 1), month(2023, 2)},
		Index: model.SeriesResult{
			Instrument:   model.Instrument{Name: "KOSPI", Ticker: "^KS11"},
			Observations: 40,
			Missing:      1,
			Monthly:      []null.Float{null.FloatFrom(2350.5), null.FloatFrom(2430.25)},
			Normalized:   []null.Float{null.FloatFrom(0), null.FloatFrom(1)},
		},
		Commodities: []model.SeriesResult{
			{
				Instrument:   model.Instrument{Name: "Gold", Ticker: "GC=F"},
				Observations: 40,
				Monthly:      []null.Float{null.FloatFrom(1900), null.FloatFrom(1850)},
				Normalized:   []null.Float{null.FloatFrom(1), null.FloatFrom(0)},
			},
			{
				Instrument: model.Instrument{Name: "Oats", Ticker: "ZO=F"},
				Err:        errors.New("data unavailable"),
			},
		},
		Correlations: []model.CorrelationResult{
			{Index: "KOSPI", Commodity: "Gold", Value: null.FloatFrom(-1), Pairs: 2},
			{Index: "KOSPI", Commodity: "Oats", Err: errors.New("data unavailable")},
		},
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t,
		"KOSPI and Gold, Oats Long-term Trend (2023-01-01 - 2023-02-28, Normalized)",
		Title(testReport()))
}

func TestFormatReport(t *testing.T) {
	out := FormatReport(testReport())

	assert.Contains(t, out, "KOSPI (^KS11): 40 daily closes, 1 missing, monthly mean 2,350.5 to 2,430.25")
	assert.Contains(t, out, "Oats (ZO=F): unavailable: data unavailable")
	assert.Contains(t, out, "-1.00  over 2 months")
	assert.Contains(t, out, "n/a  (data unavailable)")
	assert.Contains(t, out, "Normalized monthly overlay:")
	assert.Regexp(t, `2023-01\s+0\.000\s+1\.000\s+-`, out)
	assert.Regexp(t, `2023-02\s+1\.000\s+0\.000\s+-`, out)
}

func TestFormatReport_NoMonths(t *testing.T) {
	r := testReport()
	r.Months = nil
	assert.Contains(t, FormatReport(r), "No monthly data in range.")
}

func TestFormatSummary(t *testing.T) {
	r := testReport()
	r.Commodities[0].Instrument.Name = "Gold & Co"
	r.Correlations[0].Commodity = "Gold & Co"

	out := FormatSummary(r)
	assert.Contains(t, out, "<b>KOSPI and Gold &amp; Co, Oats Long-term Trend")
	assert.Contains(t, out, "KOSPI vs Gold &amp; Co: <b>-1.00</b>")
	assert.Contains(t, out, "KOSPI vs Oats: <b>n/a</b> <i>(data unavailable)</i>")
}
