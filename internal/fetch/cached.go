package fetch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is how long a fetched job posting is reused.
const DefaultCacheTTL = time.Hour

// JobFetcher retrieves the description text of a job posting.
type JobFetcher interface {
	JobPosting(ctx context.Context, urlStr string) (*Result, error)
}

type cacheEntry struct {
	result  Result
	expires time.Time
}

// CachedFetcher wraps a JobFetcher with an in-memory TTL cache. Concurrent
// requests for the same URL share one fetch.
type CachedFetcher struct {
	fetcher JobFetcher
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

// NewCachedFetcher creates a cache around fetcher. A zero ttl uses DefaultCacheTTL.
func NewCachedFetcher(fetcher JobFetcher, ttl time.Duration) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedFetcher{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// JobPosting returns a cached result when one is fresh, otherwise fetches and
// caches it. Failures are not cached.
func (c *CachedFetcher) JobPosting(ctx context.Context, urlStr string) (*Result, error) {
	if cached, ok := c.lookup(urlStr); ok {
		return cached, nil
	}

	v, err, _ := c.group.Do(urlStr, func() (interface{}, error) {
		result, err := c.fetcher.JobPosting(ctx, urlStr)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[urlStr] = cacheEntry{result: *result, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

// Invalidate drops the cached entry for urlStr.
func (c *CachedFetcher) Invalidate(urlStr string) {
	c.mu.Lock()
	delete(c.entries, urlStr)
	c.mu.Unlock()
}

func (c *CachedFetcher) lookup(urlStr string) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[urlStr]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expires) {
		delete(c.entries, urlStr)
		return nil, false
	}
	result := entry.result
	result.FromCache = true
	return &result, true
}
