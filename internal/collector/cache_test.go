package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketLens/internal/model"
)

func staticGold() *StaticFetcher {
	return &StaticFetcher{
		Series: map[string]model.TimeSeries{
			"GC=F": {Ticker: "GC=F", Points: []model.Point{
				{Time: day(2024, 1, 2), Value: null.FloatFrom(2064.4)},
				{Time: day(2024, 1, 3), Value: null.FloatFrom(2034.2)},
				{Time: day(2024, 2, 1), Value: null.FloatFrom(2050.0)},
			}},
			"SI=F": {Ticker: "SI=F"},
			"PL=F": {Ticker: "PL=F"},
		},
		Errs: map[string]error{"CL=F": ErrFetch},
	}
}

func TestStaticFetcher_RangeAndUnknown(t *testing.T) {
	t.Parallel()
	f := staticGold()

	s, err := f.FetchCloseSeries(context.Background(), "GC=F", day(2024, 1, 1), day(2024, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	_, err = f.FetchCloseSeries(context.Background(), "ZZ=F", day(2024, 1, 1), day(2024, 1, 31))
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestCachingFetcher_HitReturnsIndependentCopy(t *testing.T) {
	t.Parallel()
	inner := staticGold()
	c := NewCachingFetcher(inner, 0, 8)
	ctx := context.Background()

	first, err := c.FetchCloseSeries(ctx, "GC=F", day(2024, 1, 1), day(2024, 3, 1))
	require.NoError(t, err)
	first.Points[0].Value = null.Float{}

	second, err := c.FetchCloseSeries(ctx, "GC=F", day(2024, 1, 1), day(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, inner.Calls("GC=F"))
	assert.True(t, second.Points[0].Value.Valid)
	assert.Equal(t, 2064.4, second.Points[0].Value.Float64)
	assert.Equal(t, "static", c.Name())
}

func TestCachingFetcher_KeyIncludesRange(t *testing.T) {
	t.Parallel()
	inner := staticGold()
	c := NewCachingFetcher(inner, 0, 8)
	ctx := context.Background()

	_, err := c.FetchCloseSeries(ctx, "GC=F", day(2024, 1, 1), day(2024, 1, 31))
	require.NoError(t, err)
	s, err := c.FetchCloseSeries(ctx, "GC=F", day(2024, 1, 1), day(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, inner.Calls("GC=F"))
	assert.Equal(t, 3, s.Len())
}

func TestCachingFetcher_ErrorsNotCached(t *testing.T) {
	t.Parallel()
	inner := staticGold()
	c := NewCachingFetcher(inner, 0, 8)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.FetchCloseSeries(ctx, "CL=F", day(2024, 1, 1), day(2024, 1, 31))
		assert.True(t, errors.Is(err, ErrFetch))
	}
	assert.Equal(t, 2, inner.Calls("CL=F"))
	assert.Equal(t, 0, c.Len())
}

func TestCachingFetcher_EvictsOldestWhenFull(t *testing.T) {
	t.Parallel()
	inner := staticGold()
	c := NewCachingFetcher(inner, 0, 2)
	ctx := context.Background()
	start, end := day(2024, 1, 1), day(2024, 1, 31)

	for _, ticker := range []string{"GC=F", "SI=F", "PL=F"} {
		_, err := c.FetchCloseSeries(ctx, ticker, start, end)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())

	// GC=F was evicted; SI=F and PL=F still hit.
	for _, ticker := range []string{"SI=F", "PL=F", "GC=F"} {
		_, err := c.FetchCloseSeries(ctx, ticker, start, end)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, inner.Calls("GC=F"))
	assert.Equal(t, 1, inner.Calls("SI=F"))
	assert.Equal(t, 1, inner.Calls("PL=F"))
}

func TestCachingFetcher_TTLExpiry(t *testing.T) {
	t.Parallel()
	inner := staticGold()
	c := NewCachingFetcher(inner, 20*time.Millisecond, 8)
	ctx := context.Background()
	start, end := day(2024, 1, 1), day(2024, 1, 31)

	_, err := c.FetchCloseSeries(ctx, "GC=F", start, end)
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	_, err = c.FetchCloseSeries(ctx, "GC=F", start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.Calls("GC=F"))
}

func TestCachingFetcher_Flush(t *testing.T) {
	t.Parallel()
	inner := staticGold()
	c := NewCachingFetcher(inner, 0, 8)
	_, err := c.FetchCloseSeries(context.Background(), "GC=F", day(2024, 1, 1), day(2024, 1, 31))
	require.NoError(t, err)
	c.Flush()
	assert.Equal(t, 0, c.Len())
}
