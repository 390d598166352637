package store

import (
    "database/sql"
    "fmt"

    apperrors "github.com/hamzaKhattat/honeypot/pkg/errors"
)

const dayMillis = 86_400_000

// AggregateDay computes and upserts the stats_daily row for the UTC day
// starting at dayBucket (Unix ms midnight). It is idempotent: if a row
// already exists for dayBucket it returns immediately without recomputing,
// so re-running a backfill is always safe.
func (s *Store) AggregateDay(dayBucket int64) error {
    var existing int
    q := s.rebind(`SELECT COUNT(*) FROM stats_daily WHERE day_bucket = ?`)
    if err := s.db.QueryRow(q, dayBucket).Scan(&existing); err != nil {
        return apperrors.Wrap(err, apperrors.ErrStoreRead, "check existing rollup")
    }
    if existing > 0 {
        return nil
    }

    before := dayBucket + dayMillis

    total, err := s.countRange(dayBucket, before)
    if err != nil {
        return err
    }
    if total == 0 {
        return nil
    }

    serviceCounts, err := s.groupCount(dayBucket, before, "service", "", 0)
    if err != nil {
        return err
    }
    countryCounts, err := s.groupCount(dayBucket, before, "country_code", "country_code IS NOT NULL", 0)
    if err != nil {
        return err
    }
    pathCounts, err := s.groupCount(dayBucket, before, "http_path", "http_path IS NOT NULL", 100)
    if err != nil {
        return err
    }

    credentials, err := s.topCredentials(dayBucket, before, 100)
    if err != nil {
        return err
    }
    locations, err := s.topLocations(dayBucket, before, 500)
    if err != nil {
        return err
    }
    ipRequests, err := s.groupCount(dayBucket, before, "ip", "", 100)
    if err != nil {
        return err
    }
    ipBytes, err := s.topIPBytes(dayBucket, before, 100)
    if err != nil {
        return err
    }
    totalBytes, err := s.sumBytes(dayBucket, before)
    if err != nil {
        return err
    }

    serviceJSON, _ := marshalCountMap(serviceCounts)
    countryJSON, _ := marshalCountMap(countryCounts)
    pathJSON, _ := marshalCountMap(pathCounts)
    credJSON, _ := marshalCredentials(credentials)
    locJSON, _ := marshalLocations(locations)
    ipReqJSON, _ := marshalCountMap(ipRequests)
    ipBytesJSON, _ := marshalCountMap(ipBytes)

    upsert := s.rebind(`
        INSERT INTO stats_daily (day_bucket, total_requests, country_counts, service_counts, path_counts,
            credential_counts, location_counts, total_bytes, ip_request_counts, ip_bytes_counts)
        VALUES (?,?,?,?,?,?,?,?,?,?)
        ON CONFLICT(day_bucket) DO UPDATE SET
            total_requests = excluded.total_requests,
            country_counts = excluded.country_counts,
            service_counts = excluded.service_counts,
            path_counts = excluded.path_counts,
            credential_counts = excluded.credential_counts,
            location_counts = excluded.location_counts,
            total_bytes = excluded.total_bytes,
            ip_request_counts = excluded.ip_request_counts,
            ip_bytes_counts = excluded.ip_bytes_counts`)

    if _, err := s.db.Exec(upsert, dayBucket, total, countryJSON, serviceJSON, pathJSON,
        credJSON, locJSON, totalBytes, ipReqJSON, ipBytesJSON); err != nil {
        return apperrors.Wrap(err, apperrors.ErrStoreWrite, "upsert daily rollup")
    }

    return nil
}

// GetDaysNeedingRollup returns the UTC day buckets (ms) older than the
// current day that have requests but no stats_daily row yet.
func (s *Store) GetDaysNeedingRollup(todayStart int64) ([]int64, error) {
    q := s.rebind(`
        SELECT DISTINCT (timestamp / ?) * ? AS day_bucket
        FROM requests
        WHERE timestamp < ?
        AND ((timestamp / ?) * ?) NOT IN (SELECT day_bucket FROM stats_daily)
        ORDER BY day_bucket`)
    rows, err := s.db.Query(q, dayMillis, dayMillis, todayStart, dayMillis, dayMillis)
    if err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "list days needing rollup")
    }
    defer rows.Close()

    var out []int64
    for rows.Next() {
        var d int64
        if err := rows.Scan(&d); err != nil {
            return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "scan day bucket")
        }
        out = append(out, d)
    }
    return out, rows.Err()
}

func (s *Store) countRange(from, before int64) (int64, error) {
    q := s.rebind(`SELECT COUNT(*) FROM requests WHERE timestamp >= ? AND timestamp < ?`)
    var n int64
    err := s.db.QueryRow(q, from, before).Scan(&n)
    if err != nil {
        return 0, apperrors.Wrap(err, apperrors.ErrStoreRead, "count range")
    }
    return n, nil
}

func (s *Store) sumBytes(from, before int64) (int64, error) {
    q := s.rebind(`SELECT COALESCE(SUM(request_size), 0) FROM requests WHERE timestamp >= ? AND timestamp < ?`)
    var n int64
    err := s.db.QueryRow(q, from, before).Scan(&n)
    if err != nil {
        return 0, apperrors.Wrap(err, apperrors.ErrStoreRead, "sum bytes")
    }
    return n, nil
}

func (s *Store) groupCount(from, before int64, column, extraWhere string, limit int) (map[string]int64, error) {
    where := "timestamp >= ? AND timestamp < ?"
    if extraWhere != "" {
        where += " AND " + extraWhere
    }
    q := fmt.Sprintf(`SELECT %s, COUNT(*) AS c FROM requests WHERE %s GROUP BY %s ORDER BY c DESC`, column, where, column)
    if limit > 0 {
        q += fmt.Sprintf(" LIMIT %d", limit)
    }
    rows, err := s.db.Query(s.rebind(q), from, before)
    if err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "group count")
    }
    defer rows.Close()

    out := make(map[string]int64)
    for rows.Next() {
        var key sql.NullString
        var count int64
        if err := rows.Scan(&key, &count); err != nil {
            return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "scan group count")
        }
        if key.Valid && key.String != "" {
            out[key.String] = count
        }
    }
    return out, rows.Err()
}

func (s *Store) topCredentials(from, before int64, limit int) ([]CredentialCount, error) {
    q := s.rebind(`
        SELECT username, password, COUNT(*) AS c
        FROM requests
        WHERE timestamp >= ? AND timestamp < ? AND username IS NOT NULL
        GROUP BY username, password
        ORDER BY c DESC
        LIMIT ?`)
    rows, err := s.db.Query(q, from, before, limit)
    if err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "top credentials")
    }
    defer rows.Close()

    var out []CredentialCount
    for rows.Next() {
        var c CredentialCount
        var password sql.NullString
        if err := rows.Scan(&c.Username, &password, &c.Count); err != nil {
            return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "scan top credentials")
        }
        c.Password = password.String
        out = append(out, c)
    }
    return out, rows.Err()
}

func (s *Store) topLocations(from, before int64, limit int) ([]LocationCount, error) {
    q := s.rebind(`
        SELECT ROUND(latitude, 1) AS lat, ROUND(longitude, 1) AS lon, COUNT(*) AS c
        FROM requests
        WHERE timestamp >= ? AND timestamp < ? AND latitude IS NOT NULL
        GROUP BY lat, lon
        ORDER BY c DESC
        LIMIT ?`)
    rows, err := s.db.Query(q, from, before, limit)
    if err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "top locations")
    }
    defer rows.Close()

    var out []LocationCount
    for rows.Next() {
        var l LocationCount
        if err := rows.Scan(&l.Lat, &l.Lon, &l.Count); err != nil {
            return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "scan top locations")
        }
        out = append(out, l)
    }
    return out, rows.Err()
}

func (s *Store) topIPBytes(from, before int64, limit int) (map[string]int64, error) {
    q := s.rebind(`
        SELECT ip, SUM(request_size) AS b
        FROM requests
        WHERE timestamp >= ? AND timestamp < ?
        GROUP BY ip
        ORDER BY b DESC
        LIMIT ?`)
    rows, err := s.db.Query(q, from, before, limit)
    if err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "top ip bytes")
    }
    defer rows.Close()

    out := make(map[string]int64)
    for rows.Next() {
        var ip string
        var b int64
        if err := rows.Scan(&ip, &b); err != nil {
            return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "scan top ip bytes")
        }
        out[ip] = b
    }
    return out, rows.Err()
}
