package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"MarketLens/internal/model"
)

var (
	// ErrDataUnavailable means the source does not know the instrument.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrFetch covers transport failures and malformed responses.
	ErrFetch = errors.New("fetch failed")
)

// Fetcher retrieves daily closing prices for one ticker over an inclusive
// date range.
type Fetcher interface {
	FetchCloseSeries(ctx context.Context, ticker string, start, end time.Time) (model.TimeSeries, error)
	Name() string
}

// newHTTPClient builds a client with optional proxy and a cookie jar.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
	if jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}); err == nil {
		client.Jar = jar
	}
	return client
}

// newLimiter returns nil (unlimited) when rps <= 0.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// cleanPoints sorts by date, drops points outside [start, end] and collapses
// same-day duplicates, keeping the last observed value.
func cleanPoints(pts []model.Point, start, end time.Time) []model.Point {
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time.Before(pts[j].Time) })
	out := make([]model.Point, 0, len(pts))
	for _, p := range pts {
		if p.Time.Before(start) || p.Time.After(end) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Time.Equal(p.Time) {
			if p.Value.Valid || !out[n-1].Value.Valid {
				out[n-1] = p
			}
			continue
		}
		out = append(out, p)
	}
	return out
}
