package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/guregu/null/v6"
	"golang.org/x/time/rate"

	"MarketLens/internal/model"
)

const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string, timeout time.Duration, rps float64) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: DefaultYahooBaseURL,
		Client:  newHTTPClient(proxyURL, timeout),
		Limiter: newLimiter(rps),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string `json:"symbol"`
				GMTOffset            int64  `json:"gmtoffset"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchCloseSeries returns daily closes for ticker between start and end
// inclusive. Each bar is dated by the exchange's local calendar day, using
// the UTC offset in force on that day.
func (f *YahooFetcher) FetchCloseSeries(ctx context.Context, ticker string, start, end time.Time) (model.TimeSeries, error) {
	start, end = model.Date(start), model.Date(end)
	series := model.TimeSeries{Ticker: ticker}

	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return series, fmt.Errorf("%w: yahoo %s: %w", ErrFetch, ticker, err)
		}
	}

	q := url.Values{}
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "history")
	q.Set("includePrePost", "false")
	base := f.BaseURL
	if base == "" {
		base = DefaultYahooBaseURL
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", base, url.PathEscape(ticker), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return series, fmt.Errorf("%w: yahoo %s: %w", ErrFetch, ticker, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return series, fmt.Errorf("%w: yahoo %s: %w", ErrFetch, ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return series, fmt.Errorf("%w: yahoo %s read body: %w", ErrFetch, ticker, err)
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(body, &chart)
	if resp.StatusCode == http.StatusNotFound ||
		(decodeErr == nil && chart.Chart.Error != nil && chart.Chart.Error.Code == "Not Found") {
		return series, fmt.Errorf("%w: yahoo %s", ErrDataUnavailable, ticker)
	}
	if resp.StatusCode != http.StatusOK {
		return series, fmt.Errorf("%w: yahoo %s: status %d", ErrFetch, ticker, resp.StatusCode)
	}
	if decodeErr != nil {
		return series, fmt.Errorf("%w: yahoo %s decode: %w", ErrFetch, ticker, decodeErr)
	}
	if chart.Chart.Error != nil {
		return series, fmt.Errorf("%w: yahoo %s: %s", ErrFetch, ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return series, nil
	}

	result := chart.Chart.Result[0]
	var closes []*float64
	if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}
	loc := exchangeLocation(result.Meta.ExchangeTimezoneName, result.Meta.GMTOffset)
	pts := make([]model.Point, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		p := model.Point{Time: model.Date(time.Unix(ts, 0).In(loc))}
		if i < len(closes) {
			p.Value = null.FloatFromPtr(closes[i])
		}
		pts = append(pts, p)
	}
	series.Points = cleanPoints(pts, start, end)
	return series, nil
}

// exchangeLocation resolves the exchange's IANA zone. gmtoffset is the offset
// at fetch time only, so it is used when the zone name is absent or unknown.
func exchangeLocation(name string, gmtOffset int64) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.FixedZone("", int(gmtOffset))
}
