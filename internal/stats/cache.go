// Package stats implements the dashboard-facing query engine (C12): an
// in-process, per-key memoized wrapper around the store's hybrid
// rollup/live query stack, plus the background aggregator (C13) that
// keeps the daily rollup table caught up.
package stats

import (
    "sync"
    "time"

    "github.com/hamzaKhattat/honeypot/internal/metrics"
)

// ttlCache is a single-flight-per-key, expire-on-read cache. It replaces
// the distributed cache the teacher built on Redis: since this system is
// explicitly single-node, an in-process sync.Map with a per-key
// sync.RWMutex is enough to collapse concurrent cache misses into one
// underlying query without needing a shared cache service.
type ttlCache struct {
    ttl     time.Duration
    entries sync.Map // key -> *cacheEntry
}

type cacheEntry struct {
    mu       sync.RWMutex
    value    interface{}
    err      error
    expires  time.Time
    computed bool
}

func newTTLCache(ttl time.Duration) *ttlCache {
    return &ttlCache{ttl: ttl}
}

// getOrLoad returns the cached value for key if it hasn't expired,
// otherwise calls load exactly once (for concurrent callers sharing the
// same stale/missing key) and caches the result.
func (c *ttlCache) getOrLoad(key string, load func() (interface{}, error)) (interface{}, error) {
    actual, _ := c.entries.LoadOrStore(key, &cacheEntry{})
    entry := actual.(*cacheEntry)

    entry.mu.RLock()
    if entry.computed && time.Now().Before(entry.expires) {
        v, e := entry.value, entry.err
        entry.mu.RUnlock()
        metrics.Inc("cache_lookups_total", map[string]string{"outcome": "hit"})
        return v, e
    }
    entry.mu.RUnlock()

    entry.mu.Lock()
    if entry.computed && time.Now().Before(entry.expires) {
        v, e := entry.value, entry.err
        entry.mu.Unlock()
        metrics.Inc("cache_lookups_total", map[string]string{"outcome": "hit"})
        return v, e
    }
    metrics.Inc("cache_lookups_total", map[string]string{"outcome": "miss"})
    v, e := load()
    entry.value = v
    entry.err = e
    entry.expires = time.Now().Add(c.ttl)
    entry.computed = true
    entry.mu.Unlock()

    return v, e
}
