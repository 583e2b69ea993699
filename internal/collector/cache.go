package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"MarketLens/internal/logger"
	"MarketLens/internal/model"
)

const DefaultCacheEntries = 64

// CachingFetcher memoizes successful fetches for the life of the process.
// Entries are keyed by (source, ticker, start, end); failures are never
// stored. When full, the oldest entry is evicted.
type CachingFetcher struct {
	inner      Fetcher
	store      *cache.Cache
	maxEntries int
	log        *logger.Entry

	mu  sync.Mutex
	seq uint64
}

type cacheEntry struct {
	series model.TimeSeries
	seq    uint64
}

// NewCachingFetcher wraps inner. ttl <= 0 keeps entries until eviction.
func NewCachingFetcher(inner Fetcher, ttl time.Duration, maxEntries int) *CachingFetcher {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	var store *cache.Cache
	if ttl > 0 {
		store = cache.New(ttl, ttl)
	} else {
		store = cache.New(cache.NoExpiration, 0)
	}
	return &CachingFetcher{
		inner:      inner,
		store:      store,
		maxEntries: maxEntries,
		log:        logger.GetLogger().WithComponent("cache"),
	}
}

func (c *CachingFetcher) Name() string { return c.inner.Name() }

func cacheKey(source, ticker string, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%s", source, ticker,
		model.Date(start).Format("2006-01-02"), model.Date(end).Format("2006-01-02"))
}

// FetchCloseSeries returns a copy of the cached series, fetching on miss.
func (c *CachingFetcher) FetchCloseSeries(ctx context.Context, ticker string, start, end time.Time) (model.TimeSeries, error) {
	key := cacheKey(c.inner.Name(), ticker, start, end)
	if v, ok := c.store.Get(key); ok {
		c.log.WithFields(logger.Fields{"ticker": ticker}).Debug("cache hit")
		return v.(cacheEntry).series.Clone(), nil
	}

	s, err := c.inner.FetchCloseSeries(ctx, ticker, start, end)
	if err != nil {
		return s, err
	}
	c.put(key, s.Clone())
	c.log.WithFields(logger.Fields{"ticker": ticker, "points": s.Len()}).Debug("cache miss, stored")
	return s, nil
}

func (c *CachingFetcher) put(key string, s model.TimeSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.store.Get(key); !ok && c.store.ItemCount() >= c.maxEntries {
		c.evictOldest()
	}
	c.seq++
	c.store.Set(key, cacheEntry{series: s, seq: c.seq}, cache.DefaultExpiration)
}

func (c *CachingFetcher) evictOldest() {
	var (
		oldestKey string
		oldestSeq uint64
	)
	for k, item := range c.store.Items() {
		e := item.Object.(cacheEntry)
		if oldestKey == "" || e.seq < oldestSeq {
			oldestKey, oldestSeq = k, e.seq
		}
	}
	if oldestKey != "" {
		c.store.Delete(oldestKey)
		c.log.WithFields(logger.Fields{"key": oldestKey}).Debug("evicted")
	}
}

// Len returns the number of live entries.
func (c *CachingFetcher) Len() int { return c.store.ItemCount() }

// Flush drops every entry.
func (c *CachingFetcher) Flush() { c.store.Flush() }
