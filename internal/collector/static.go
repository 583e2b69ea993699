package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"MarketLens/internal/model"
)

// StaticFetcher serves fixed series keyed by ticker. Used for offline runs
// and tests.
type StaticFetcher struct {
	Series map[string]model.TimeSeries
	Errs   map[string]error

	mu    sync.Mutex
	calls map[string]int
}

func (s *StaticFetcher) Name() string { return "static" }

func (s *StaticFetcher) FetchCloseSeries(_ context.Context, ticker string, start, end time.Time) (model.TimeSeries, error) {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[ticker]++
	s.mu.Unlock()

	if err, ok := s.Errs[ticker]; ok {
		return model.TimeSeries{Ticker: ticker}, err
	}
	src, ok := s.Series[ticker]
	if !ok {
		return model.TimeSeries{Ticker: ticker}, fmt.Errorf("%w: static %s", ErrDataUnavailable, ticker)
	}
	out := src.Clone()
	out.Ticker = ticker
	out.Points = cleanPoints(out.Points, model.Date(start), model.Date(end))
	return out, nil
}

// Calls reports how many times ticker was requested.
func (s *StaticFetcher) Calls(ticker string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[ticker]
}
