// Package analysis runs the index versus commodity correlation pipeline.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"

	"MarketLens/internal/calculator"
	"MarketLens/internal/collector"
	"MarketLens/internal/logger"
	"MarketLens/internal/model"
	"MarketLens/internal/recorder"
)

// ErrInvalidRequest is returned for requests that cannot be run at all.
var ErrInvalidRequest = errors.New("invalid request")

// Request selects the date range and commodities for one run.
type Request struct {
	Start    time.Time
	End      time.Time
	Selected []string
}

// Validate checks the request before any data is fetched.
func (r Request) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidRequest)
	}
	if model.Date(r.Start).After(model.Date(r.End)) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRequest,
			r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	}
	if len(r.Selected) == 0 {
		return fmt.Errorf("%w: no commodity selected", ErrInvalidRequest)
	}
	return nil
}

// Analyzer turns a Request into a Report. It holds no per-run state.
type Analyzer struct {
	fetcher     collector.Fetcher
	instruments model.InstrumentSet
	recorder    recorder.Recorder
	log         *logger.Entry
	now         func() time.Time
}

// NewAnalyzer creates an Analyzer. A nil recorder disables the run journal and
// a nil log uses the process logger.
func NewAnalyzer(fetcher collector.Fetcher, instruments model.InstrumentSet, rec recorder.Recorder, log *logger.Entry) *Analyzer {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if log == nil {
		log = logger.GetLogger().WithComponent("analysis")
	}
	return &Analyzer{
		fetcher:     fetcher,
		instruments: instruments,
		recorder:    rec,
		log:         log,
		now:         time.Now,
	}
}

// Run fetches, aligns and correlates the index with each selected commodity.
// Per-instrument failures are carried on the report; only an invalid request
// returns an error.
func (a *Analyzer) Run(ctx context.Context, req Request) (*model.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start, end := model.Date(req.Start), model.Date(req.End)

	report := &model.Report{
		RunID:       uuid.NewString(),
		Start:       start,
		End:         end,
		GeneratedAt: a.now(),
	}
	log := a.log.WithFields(logger.Fields{
		"run_id": report.RunID,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	})

	var loaded []model.TimeSeries
	index, series := a.load(ctx, log, a.instruments.Index, start, end)
	report.Index = index
	if index.OK() {
		loaded = append(loaded, series)
	}

	for _, name := range dedupe(req.Selected) {
		in, ok := a.instruments.Lookup(name)
		if !ok {
			err := fmt.Errorf("%w: %q is not a configured instrument", collector.ErrDataUnavailable, name)
			log.WithFields(logger.Fields{"commodity": name}).Warn(err.Error())
			report.Commodities = append(report.Commodities, model.SeriesResult{
				Instrument: model.Instrument{Name: name},
				Err:        err,
			})
			continue
		}
		res, s := a.load(ctx, log, in, start, end)
		report.Commodities = append(report.Commodities, res)
		if res.OK() {
			loaded = append(loaded, s)
		}
	}

	monthly := calculator.ResampleMonthly(calculator.Join(loaded...))
	report.Months = monthly.Index

	a.fillMonthly(log, &report.Index, monthly)
	for i := range report.Commodities {
		a.fillMonthly(log, &report.Commodities[i], monthly)
	}

	for _, c := range report.Commodities {
		report.Correlations = append(report.Correlations, correlate(report, c))
	}

	if err := a.recorder.RecordRun(report); err != nil {
		log.WithError(err).Warn("failed to record run")
	}

	log.WithFields(logger.Fields{
		"months":      len(report.Months),
		"commodities": len(report.Commodities),
	}).Info("analysis complete")
	return report, nil
}

// load fetches one instrument and interpolates interior gaps.
func (a *Analyzer) load(ctx context.Context, log *logger.Entry, in model.Instrument, start, end time.Time) (model.SeriesResult, model.TimeSeries) {
	res := model.SeriesResult{Instrument: in}
	entry := log.WithFields(logger.Fields{"instrument": in.Name, "ticker": in.Ticker})

	raw, err := a.fetcher.FetchCloseSeries(ctx, in.Ticker, start, end)
	if err != nil {
		entry.WithError(err).Warn("fetch failed")
		res.Err = err
		return res, model.TimeSeries{}
	}
	raw.Name = in.Name
	if raw.Ticker == "" {
		raw.Ticker = in.Ticker
	}
	res.Observations = raw.Len()
	res.Missing = raw.Len() - raw.Observed()
	entry.WithFields(logger.Fields{"points": res.Observations, "missing": res.Missing}).Debug("fetched")

	return res, calculator.Interpolate(raw)
}

// fillMonthly copies the resampled column onto the result and normalizes it.
func (a *Analyzer) fillMonthly(log *logger.Entry, res *model.SeriesResult, monthly *model.Table) {
	if !res.OK() {
		return
	}
	col, ok := monthly.Column(res.Instrument.Name)
	if !ok {
		col = make([]null.Float, monthly.Len())
	}
	res.Monthly = col
	res.Normalized, res.NormalizeErr = calculator.Normalize(col)
	if res.NormalizeErr != nil {
		log.WithFields(logger.Fields{"instrument": res.Instrument.Name}).
			WithError(res.NormalizeErr).Info("series not normalized")
		res.Normalized = make([]null.Float, len(col))
	}
}

// correlate computes Pearson on the pre-normalization monthly means.
func correlate(report *model.Report, c model.SeriesResult) model.CorrelationResult {
	out := model.CorrelationResult{
		Index:     report.Index.Instrument.Name,
		Commodity: c.Instrument.Name,
		Start:     report.Start,
		End:       report.End,
	}
	switch {
	case report.Index.Err != nil:
		out.Err = fmt.Errorf("index %s: %w", report.Index.Instrument.Name, report.Index.Err)
	case c.Err != nil:
		out.Err = c.Err
	default:
		r, n, err := calculator.Pearson(report.Index.Monthly, c.Monthly)
		out.Pairs = n
		if err != nil {
			out.Err = err
		} else {
			out.Value = null.FloatFrom(r)
		}
	}
	return out
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
