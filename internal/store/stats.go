package store

import (
    "database/sql"
    "sort"
    "time"

    apperrors "github.com/hamzaKhattat/honeypot/pkg/errors"
)

// StatsResponse is the payload behind the generic stats endpoint. It is
// served from the daily rollup table when a full day or more of history
// is available, falling back to a live scan of requests for anything
// more recent than one complete rollup day.
type StatsResponse struct {
    Total       int64              `json:"total"`
    UniqueIPs   int64              `json:"unique_ips"`
    Services    map[string]int64   `json:"services"`
    Credentials []CredentialCount  `json:"credentials"`
    Paths       map[string]int64   `json:"paths"`
}

func dayBucket(ts int64) int64 {
    return (ts / dayMillis) * dayMillis
}

// GetStatsHybrid implements the since-hours hybrid query: hours=24 reads
// exactly yesterday's rollup; any other window reads the rollup for every
// complete UTC day it spans, falling back to a live scan of requests when
// no complete day is covered (or the matched rollup rows are empty).
func (s *Store) GetStatsHybrid(sinceHours int64) (*StatsResponse, error) {
    now := time.Now().UnixMilli()
    todayStart := dayBucket(now)

    if sinceHours == 24 {
        yesterday := todayStart - dayMillis
        liveSince := now - 24*3600*1000
        return s.GetRollupStats(yesterday, todayStart, liveSince)
    }

    sinceTs := now - sinceHours*3600*1000
    sinceDayBucket := dayBucket(sinceTs)
    firstCompleteDay := sinceDayBucket + dayMillis

    if firstCompleteDay < todayStart {
        return s.GetRollupStats(firstCompleteDay, todayStart, sinceTs)
    }
    return s.GetLiveStats(sinceTs)
}

// GetRollupStats aggregates stats_daily rows in [from, before). If no rows
// match, it falls back to a live scan since liveSinceTs — this fallback is
// unique to the generic stats endpoint; the country/location/ip endpoints
// below are rollup-only with no such fallback.
func (s *Store) GetRollupStats(from, before, liveSinceTs int64) (*StatsResponse, error) {
    q := s.rebind(`SELECT total_requests, service_counts, credential_counts, path_counts, country_counts
        FROM stats_daily WHERE day_bucket >= ? AND day_bucket < ?`)
    rows, err := s.db.Query(q, from, before)
    if err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "get rollup stats")
    }

    var total int64
    services := make(map[string]int64)
    var credentials []CredentialCount
    paths := make(map[string]int64)

    for rows.Next() {
        var rowTotal int64
        var serviceJSON, credJSON, pathJSON, countryJSON sql.NullString
        if err := rows.Scan(&rowTotal, &serviceJSON, &credJSON, &pathJSON, &countryJSON); err != nil {
            rows.Close()
            return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "scan rollup stats")
        }
        total += rowTotal
        mergeCountMaps(services, unmarshalCountMap(serviceJSON.String))
        mergeCountMaps(paths, unmarshalCountMap(pathJSON.String))
        // country_counts is read for parity with the upstream query shape
        // but the generic stats response does not surface it.
        credentials = mergeCredentials(credentials, unmarshalCredentials(credJSON.String))
    }
    if err := rows.Err(); err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "iterate rollup stats")
    }
    rows.Close()

    if total == 0 {
        return s.GetLiveStats(liveSinceTs)
    }

    sortCredentials(credentials)
    if len(credentials) > 50 {
        credentials = credentials[:50]
    }
    paths = truncateMap(paths, 50)

    return &StatsResponse{
        Total:       total,
        UniqueIPs:   0,
        Services:    services,
        Credentials: credentials,
        Paths:       paths,
    }, nil
}

// GetLiveStats scans requests directly for events since sinceTs. Used when
// the requested window doesn't yet have a complete rollup day to read.
func (s *Store) GetLiveStats(sinceTs int64) (*StatsResponse, error) {
    total, err := s.countSince(sinceTs)
    if err != nil {
        return nil, err
    }
    uniqueIPs, err := s.uniqueIPsSince(sinceTs)
    if err != nil {
        return nil, err
    }
    services, err := s.groupCountSince(sinceTs, "service", "")
    if err != nil {
        return nil, err
    }
    credentials, err := s.topCredentialsSince(sinceTs, 50)
    if err != nil {
        return nil, err
    }
    paths, err := s.groupCountSince(sinceTs, "http_path", "http_path IS NOT NULL")
    if err != nil {
        return nil, err
    }
    if len(paths) > 50 {
        paths = truncateMap(paths, 50)
    }

    return &StatsResponse{
        Total:       total,
        UniqueIPs:   uniqueIPs,
        Services:    services,
        Credentials: credentials,
        Paths:       paths,
    }, nil
}

// CountryStats, LocationStats, top-IP and total-bytes queries are
// rollup-only: if the requested window has no complete rollup day they
// return an empty result rather than falling back to a live scan.

func (s *Store) GetCountryStats(sinceHours int64) (map[string]int64, error) {
    from, before, ok := s.rollupWindow(sinceHours)
    out := make(map[string]int64)
    if !ok {
        return out, nil
    }
    rows, err := s.db.Query(s.rebind(`SELECT country_counts FROM stats_daily WHERE day_bucket >= ? AND day_bucket < ?`), from, before)
    if err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "get country stats")
    }
    defer rows.Close()
    for rows.Next() {
        var j sql.NullString
        if err := rows.Scan(&j); err != nil {
            return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "scan country stats")
        }
        mergeCountMaps(out, unmarshalCountMap(j.String))
    }
    return out, rows.Err()
}

func (s *Store) GetLocationStats(sinceHours int64) ([]LocationCount, error) {
    from, before, ok := s.rollupWindow(sinceHours)
    if !ok {
        return nil, nil
    }
    rows, err := s.db.Query(s.rebind(`SELECT location_counts FROM stats_daily WHERE day_bucket >= ? AND day_bucket < ?`), from, before)
    if err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "get location stats")
    }
    defer rows.Close()

    merged := make(map[[2]int64]int64)
    for rows.Next() {
        var j sql.NullString
        if err := rows.Scan(&j); err != nil {
            return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "scan location stats")
        }
        for _, l := range unmarshalLocations(j.String) {
            key := [2]int64{int64(l.Lat * 10), int64(l.Lon * 10)}
            merged[key] += l.Count
        }
    }
    if err := rows.Err(); err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "iterate location stats")
    }

    out := make([]LocationCount, 0, len(merged))
    for key, count := range merged {
        out = append(out, LocationCount{Lat: float64(key[0]) / 10, Lon: float64(key[1]) / 10, Count: count})
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
    if len(out) > 500 {
        out = out[:500]
    }
    return out, nil
}

func (s *Store) GetTopIPsByRequests(sinceHours int64, limit int) (map[string]int64, error) {
    return s.mergedRollupColumn(sinceHours, "ip_request_counts", limit)
}

func (s *Store) GetTopIPsByBandwidth(sinceHours int64, limit int) (map[string]int64, error) {
    return s.mergedRollupColumn(sinceHours, "ip_bytes_counts", limit)
}

func (s *Store) GetTotalBytes(sinceHours int64) (int64, error) {
    from, before, ok := s.rollupWindow(sinceHours)
    if !ok {
        return 0, nil
    }
    q := s.rebind(`SELECT COALESCE(SUM(total_bytes), 0) FROM stats_daily WHERE day_bucket >= ? AND day_bucket < ?`)
    var total int64
    if err := s.db.QueryRow(q, from, before).Scan(&total); err != nil {
        return 0, apperrors.Wrap(err, apperrors.ErrStoreRead, "get total bytes")
    }
    return total, nil
}

func (s *Store) mergedRollupColumn(sinceHours int64, column string, limit int) (map[string]int64, error) {
    from, before, ok := s.rollupWindow(sinceHours)
    out := make(map[string]int64)
    if !ok {
        return out, nil
    }
    q := s.rebind(`SELECT ` + column + ` FROM stats_daily WHERE day_bucket >= ? AND day_bucket < ?`)
    rows, err := s.db.Query(q, from, before)
    if err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "get rollup column "+column)
    }
    defer rows.Close()
    for rows.Next() {
        var j sql.NullString
        if err := rows.Scan(&j); err != nil {
            return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "scan rollup column "+column)
        }
        mergeCountMaps(out, unmarshalCountMap(j.String))
    }
    if err := rows.Err(); err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "iterate rollup column "+column)
    }
    return truncateMap(out, limit), nil
}

// rollupWindow computes [from, before) for sinceHours the same way
// GetStatsHybrid does, but reports ok=false instead of falling back to a
// live scan — used by the rollup-only endpoints.
func (s *Store) rollupWindow(sinceHours int64) (from, before int64, ok bool) {
    now := time.Now().UnixMilli()
    todayStart := dayBucket(now)

    if sinceHours == 24 {
        return todayStart - dayMillis, todayStart, true
    }

    sinceTs := now - sinceHours*3600*1000
    firstCompleteDay := dayBucket(sinceTs) + dayMillis
    if firstCompleteDay < todayStart {
        return firstCompleteDay, todayStart, true
    }
    return 0, 0, false
}

func (s *Store) countSince(sinceTs int64) (int64, error) {
    var n int64
    q := s.rebind(`SELECT COUNT(*) FROM requests WHERE timestamp >= ?`)
    if err := s.db.QueryRow(q, sinceTs).Scan(&n); err != nil {
        return 0, apperrors.Wrap(err, apperrors.ErrStoreRead, "count since")
    }
    return n, nil
}

func (s *Store) uniqueIPsSince(sinceTs int64) (int64, error) {
    var n int64
    q := s.rebind(`SELECT COUNT(DISTINCT ip) FROM requests WHERE timestamp >= ?`)
    if err := s.db.QueryRow(q, sinceTs).Scan(&n); err != nil {
        return 0, apperrors.Wrap(err, apperrors.ErrStoreRead, "unique ips since")
    }
    return n, nil
}

func (s *Store) groupCountSince(sinceTs int64, column, extraWhere string) (map[string]int64, error) {
    where := "timestamp >= ?"
    if extraWhere != "" {
        where += " AND " + extraWhere
    }
    q := s.rebind(`SELECT ` + column + `, COUNT(*) AS c FROM requests WHERE ` + where + ` GROUP BY ` + column + ` ORDER BY c DESC`)
    rows, err := s.db.Query(q, sinceTs)
    if err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "group count since")
    }
    defer rows.Close()

    out := make(map[string]int64)
    for rows.Next() {
        var key sql.NullString
        var count int64
        if err := rows.Scan(&key, &count); err != nil {
            return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "scan group count since")
        }
        if key.Valid && key.String != "" {
            out[key.String] = count
        }
    }
    return out, rows.Err()
}

func (s *Store) topCredentialsSince(sinceTs int64, limit int) ([]CredentialCount, error) {
    q := s.rebind(`
        SELECT username, password, COUNT(*) AS c
        FROM requests
        WHERE timestamp >= ? AND username IS NOT NULL
        GROUP BY username, password
        ORDER BY c DESC
        LIMIT ?`)
    rows, err := s.db.Query(q, sinceTs, limit)
    if err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "top credentials since")
    }
    defer rows.Close()

    var out []CredentialCount
    for rows.Next() {
        var c CredentialCount
        var password sql.NullString
        if err := rows.Scan(&c.Username, &password, &c.Count); err != nil {
            return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "scan top credentials since")
        }
        c.Password = password.String
        out = append(out, c)
    }
    return out, rows.Err()
}

func mergeCredentials(dst, src []CredentialCount) []CredentialCount {
    index := make(map[[2]string]int)
    for i, c := range dst {
        index[[2]string{c.Username, c.Password}] = i
    }
    for _, c := range src {
        key := [2]string{c.Username, c.Password}
        if i, ok := index[key]; ok {
            dst[i].Count += c.Count
            continue
        }
        index[key] = len(dst)
        dst = append(dst, c)
    }
    return dst
}

func sortCredentials(c []CredentialCount) {
    sort.Slice(c, func(i, j int) bool { return c[i].Count > c[j].Count })
}

func truncateMap(m map[string]int64, limit int) map[string]int64 {
    if limit <= 0 || len(m) <= limit {
        return m
    }
    type kv struct {
        k string
        v int64
    }
    pairs := make([]kv, 0, len(m))
    for k, v := range m {
        pairs = append(pairs, kv{k, v})
    }
    sort.Slice(pairs, func(i, j int) bool { return pairs[i].v > pairs[j].v })
    out := make(map[string]int64, limit)
    for _, p := range pairs[:limit] {
        out[p.k] = p.v
    }
    return out
}
