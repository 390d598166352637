package stats

import (
    "fmt"
    "time"

    "github.com/hamzaKhattat/honeypot/internal/capture"
    "github.com/hamzaKhattat/honeypot/internal/store"
    apperrors "github.com/hamzaKhattat/honeypot/pkg/errors"
    "github.com/hamzaKhattat/honeypot/pkg/logger"
)

const (
    statsCacheTTL   = 300 * time.Second
    recentCacheTTL  = 60 * time.Second
    warmupWindowHrs = 720 // 30 days, matches the startup cache warmer
    topIPsLimit     = 25
)

// ValidHours reports whether hours is one of the four windows the API
// accepts: a day, a week, a month, a year.
func ValidHours(hours int64) bool {
    switch hours {
    case 24, 168, 720, 8760:
        return true
    }
    return false
}

func validateHours(hours int64) error {
    if !ValidHours(hours) {
        return apperrors.New(apperrors.ErrInvalidInput, "hours must be one of 24, 168, 720, 8760")
    }
    return nil
}

// Engine serves the dashboard's read paths, memoizing each query for its
// TTL so a burst of page loads collapses into one store query.
type Engine struct {
    store *store.Store

    statsCache       *ttlCache
    countriesCache   *ttlCache
    locationsCache   *ttlCache
    topIPsReqCache   *ttlCache
    topIPsBwCache    *ttlCache
    totalBytesCache  *ttlCache
    recentCredsCache *ttlCache
}

// New wraps s with the dashboard's memoization layer.
func New(s *store.Store) *Engine {
    return &Engine{
        store:            s,
        statsCache:       newTTLCache(statsCacheTTL),
        countriesCache:   newTTLCache(statsCacheTTL),
        locationsCache:   newTTLCache(statsCacheTTL),
        topIPsReqCache:   newTTLCache(statsCacheTTL),
        topIPsBwCache:    newTTLCache(statsCacheTTL),
        totalBytesCache:  newTTLCache(statsCacheTTL),
        recentCredsCache: newTTLCache(recentCacheTTL),
    }
}

// GetStats returns the hybrid rollup/live stats for the last sinceHours.
func (e *Engine) GetStats(sinceHours int64) (*store.StatsResponse, error) {
    if err := validateHours(sinceHours); err != nil {
        return nil, err
    }
    v, err := e.statsCache.getOrLoad(cacheKey("stats", sinceHours), func() (interface{}, error) {
        return e.store.GetStatsHybrid(sinceHours)
    })
    if err != nil {
        return nil, err
    }
    return v.(*store.StatsResponse), nil
}

// GetCountries returns rollup-only per-country request counts.
func (e *Engine) GetCountries(sinceHours int64) (map[string]int64, error) {
    if err := validateHours(sinceHours); err != nil {
        return nil, err
    }
    v, err := e.countriesCache.getOrLoad(cacheKey("countries", sinceHours), func() (interface{}, error) {
        return e.store.GetCountryStats(sinceHours)
    })
    if err != nil {
        return nil, err
    }
    return v.(map[string]int64), nil
}

// GetLocations returns rollup-only per-location (0.1° bucket) counts.
func (e *Engine) GetLocations(sinceHours int64) ([]store.LocationCount, error) {
    if err := validateHours(sinceHours); err != nil {
        return nil, err
    }
    v, err := e.locationsCache.getOrLoad(cacheKey("locations", sinceHours), func() (interface{}, error) {
        return e.store.GetLocationStats(sinceHours)
    })
    if err != nil {
        return nil, err
    }
    return v.([]store.LocationCount), nil
}

// GetTopIPsByRequests returns the top 25 source IPs by request count.
func (e *Engine) GetTopIPsByRequests(sinceHours int64) (map[string]int64, error) {
    if err := validateHours(sinceHours); err != nil {
        return nil, err
    }
    v, err := e.topIPsReqCache.getOrLoad(cacheKey("top_ips_requests", sinceHours), func() (interface{}, error) {
        return e.store.GetTopIPsByRequests(sinceHours, topIPsLimit)
    })
    if err != nil {
        return nil, err
    }
    return v.(map[string]int64), nil
}

// GetTopIPsByBandwidth returns the top 25 source IPs by bytes captured.
func (e *Engine) GetTopIPsByBandwidth(sinceHours int64) (map[string]int64, error) {
    if err := validateHours(sinceHours); err != nil {
        return nil, err
    }
    v, err := e.topIPsBwCache.getOrLoad(cacheKey("top_ips_bandwidth", sinceHours), func() (interface{}, error) {
        return e.store.GetTopIPsByBandwidth(sinceHours, topIPsLimit)
    })
    if err != nil {
        return nil, err
    }
    return v.(map[string]int64), nil
}

// GetTotalBytes returns the total captured bytes over sinceHours.
func (e *Engine) GetTotalBytes(sinceHours int64) (int64, error) {
    if err := validateHours(sinceHours); err != nil {
        return 0, err
    }
    v, err := e.totalBytesCache.getOrLoad(cacheKey("total_bytes", sinceHours), func() (interface{}, error) {
        return e.store.GetTotalBytes(sinceHours)
    })
    if err != nil {
        return 0, err
    }
    return v.(int64), nil
}

// GetRecent returns the dashboard's "recent" view: overall request total,
// the 10 most recent credential captures, and the 25 most recent events.
func (e *Engine) GetRecent() (int64, []store.RecentCredential, []*capture.Event, error) {
    total, err := e.store.GetTotalCount()
    if err != nil {
        return 0, nil, nil, err
    }
    credsV, err := e.recentCredsCache.getOrLoad("recent-credentials", func() (interface{}, error) {
        return e.store.GetRecentCredentials(10)
    })
    if err != nil {
        return 0, nil, nil, err
    }
    events, err := e.store.GetRecentEvents(25)
    if err != nil {
        return 0, nil, nil, err
    }
    return total, credsV.([]store.RecentCredential), events, nil
}

// WarmCache pre-computes the 30-day views so the dashboard's first load
// after a restart doesn't pay for a cold rollup scan.
func (e *Engine) WarmCache() {
    if _, err := e.GetStats(warmupWindowHrs); err != nil {
        logger.WithField("error", err.Error()).Warn("cache warmup: stats failed")
    }
    if _, err := e.GetCountries(warmupWindowHrs); err != nil {
        logger.WithField("error", err.Error()).Warn("cache warmup: countries failed")
    }
    if _, err := e.GetLocations(warmupWindowHrs); err != nil {
        logger.WithField("error", err.Error()).Warn("cache warmup: locations failed")
    }
    if _, err := e.GetTopIPsByRequests(warmupWindowHrs); err != nil {
        logger.WithField("error", err.Error()).Warn("cache warmup: top ips by requests failed")
    }
    if _, err := e.GetTopIPsByBandwidth(warmupWindowHrs); err != nil {
        logger.WithField("error", err.Error()).Warn("cache warmup: top ips by bandwidth failed")
    }
    if _, err := e.GetTotalBytes(warmupWindowHrs); err != nil {
        logger.WithField("error", err.Error()).Warn("cache warmup: total bytes failed")
    }
    if _, _, _, err := e.GetRecent(); err != nil {
        logger.WithField("error", err.Error()).Warn("cache warmup: recent failed")
    }
}

func cacheKey(kind string, sinceHours int64) string {
    return fmt.Sprintf("%s:%d", kind, sinceHours)
}
