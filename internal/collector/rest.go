package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"golang.org/x/time/rate"

	"MarketLens/internal/model"
)

// RESTFetcher implements Fetcher against a self-hosted bars API:
//
//	GET {base}/api/v1/bars/daily?symbol=..&from=YYYY-MM-DD&to=YYYY-MM-DD
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration, rps float64) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
		Limiter: newLimiter(rps),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bars API. A null close marks
// a session without a print.
type restBar struct {
	Timestamp int64    `json:"timestamp"`
	Close     *float64 `json:"close"`
}

func (f *RESTFetcher) FetchCloseSeries(ctx context.Context, ticker string, start, end time.Time) (model.TimeSeries, error) {
	start, end = model.Date(start), model.Date(end)
	series := model.TimeSeries{Ticker: ticker}

	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return series, fmt.Errorf("%w: rest %s: %w", ErrFetch, ticker, err)
		}
	}

	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("from", start.Format("2006-01-02"))
	q.Set("to", end.Format("2006-01-02"))
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return series, fmt.Errorf("%w: rest %s: %w", ErrFetch, ticker, err)
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return series, fmt.Errorf("%w: rest %s: %w", ErrFetch, ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return series, fmt.Errorf("%w: rest %s read body: %w", ErrFetch, ticker, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return series, fmt.Errorf("%w: rest %s", ErrDataUnavailable, ticker)
	case resp.StatusCode != http.StatusOK:
		return series, fmt.Errorf("%w: rest %s: status %d, body: %s", ErrFetch, ticker, resp.StatusCode, string(body))
	}

	var bars []restBar
	if err := json.Unmarshal(body, &bars); err != nil {
		return series, fmt.Errorf("%w: rest %s decode: %w", ErrFetch, ticker, err)
	}

	pts := make([]model.Point, len(bars))
	for i, b := range bars {
		pts[i] = model.Point{
			Time:  model.Date(time.Unix(b.Timestamp, 0).UTC()),
			Value: null.FloatFromPtr(b.Close),
		}
	}
	series.Points = cleanPoints(pts, start, end)
	return series, nil
}
