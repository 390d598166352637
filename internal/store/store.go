// Package store persists captured events to sqlite or postgres, serves
// the read paths backing the stats engine, and buffers high-volume
// writes so that a slow disk never blocks a protocol handler.
package store

import (
    "database/sql"
    "fmt"
    "time"

    _ "github.com/jackc/pgx/v5/stdlib"
    _ "github.com/mattn/go-sqlite3"

    apperrors "github.com/hamzaKhattat/honeypot/pkg/errors"
    "github.com/hamzaKhattat/honeypot/internal/capture"
)

// Store wraps a connection pool for either sqlite or postgres, selected
// by config.Database.Driver.
type Store struct {
    db     *sql.DB
    driver string
}

// Config configures how Open connects and tunes the pool.
type Config struct {
    Driver      string
    DSN         string
    CacheSizeMB int
}

// Open connects to the configured database, applies pragma/pool tuning,
// and runs the (idempotent) schema migration.
func Open(cfg Config) (*Store, error) {
    var driverName string
    switch cfg.Driver {
    case "sqlite":
        driverName = "sqlite3"
    case "postgres":
        driverName = "pgx"
    default:
        return nil, apperrors.New(apperrors.ErrConfig, fmt.Sprintf("unsupported database driver %q", cfg.Driver))
    }

    db, err := sql.Open(driverName, cfg.DSN)
    if err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrConfig, "open database")
    }

    db.SetMaxOpenConns(8)
    db.SetMaxIdleConns(8)
    db.SetConnMaxLifetime(30 * time.Minute)

    s := &Store{db: db, driver: cfg.Driver}

    if cfg.Driver == "sqlite" {
        pragmas := []string{
            "PRAGMA synchronous=NORMAL",
            fmt.Sprintf("PRAGMA cache_size=-%d", cfg.CacheSizeMB*1000),
            "PRAGMA temp_store=MEMORY",
        }
        for _, p := range pragmas {
            if _, err := db.Exec(p); err != nil {
                return nil, apperrors.Wrap(err, apperrors.ErrConfig, "apply pragma")
            }
        }
    }

    if err := s.migrate(); err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrConfig, "run schema migration")
    }

    return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
    return s.db.Close()
}

const insertColumns = `timestamp, ip, country_code, latitude, longitude, service, port, request, payload, http_path, username, password, user_agent, request_size`

func insertArgs(e *capture.Event) []interface{} {
    return []interface{}{
        e.Timestamp, e.IP, e.CountryCode, e.Latitude, e.Longitude,
        e.Service, e.Port, e.Request, e.Payload, e.HTTPPath,
        e.Username, e.Password, e.UserAgent, e.RequestSize,
    }
}

// InsertEvent writes a single event.
func (s *Store) InsertEvent(e *capture.Event) error {
    q := fmt.Sprintf(`INSERT INTO requests (%s) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`, insertColumns)
    q = s.rebind(q)
    if _, err := s.db.Exec(q, insertArgs(e)...); err != nil {
        return apperrors.Wrap(err, apperrors.ErrStoreWrite, "insert event")
    }
    return nil
}

// BatchInsertEvents writes a batch of events inside a single transaction.
// Used by the write buffer to amortize fsync cost across many captures.
func (s *Store) BatchInsertEvents(events []*capture.Event) error {
    if len(events) == 0 {
        return nil
    }

    tx, err := s.db.Begin()
    if err != nil {
        return apperrors.Wrap(err, apperrors.ErrStoreWrite, "begin batch insert")
    }
    defer tx.Rollback()

    q := s.rebind(fmt.Sprintf(`INSERT INTO requests (%s) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`, insertColumns))
    stmt, err := tx.Prepare(q)
    if err != nil {
        return apperrors.Wrap(err, apperrors.ErrStoreWrite, "prepare batch insert")
    }
    defer stmt.Close()

    for _, e := range events {
        if _, err := stmt.Exec(insertArgs(e)...); err != nil {
            return apperrors.Wrap(err, apperrors.ErrStoreWrite, "exec batch insert")
        }
    }

    if err := tx.Commit(); err != nil {
        return apperrors.Wrap(err, apperrors.ErrStoreWrite, "commit batch insert")
    }
    return nil
}

// GetTotalCount approximates the all-time request count. The system never
// deletes rows, so MAX(rowid) is exact, not an approximation in practice.
func (s *Store) GetTotalCount() (int64, error) {
    var count sql.NullInt64
    q := s.rebind(`SELECT MAX(rowid) FROM requests`)
    if err := s.db.QueryRow(q).Scan(&count); err != nil {
        return 0, apperrors.Wrap(err, apperrors.ErrStoreRead, "get total count")
    }
    return count.Int64, nil
}

// RecentCredential is a single captured username/password observation.
type RecentCredential struct {
    Username string `json:"username"`
    Password string `json:"password"`
}

// GetRecentCredentials returns the most recently captured credential
// pairs, newest first.
func (s *Store) GetRecentCredentials(limit int) ([]RecentCredential, error) {
    q := s.rebind(`SELECT username, password FROM requests WHERE username IS NOT NULL ORDER BY id DESC LIMIT ?`)
    rows, err := s.db.Query(q, limit)
    if err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "get recent credentials")
    }
    defer rows.Close()

    var out []RecentCredential
    for rows.Next() {
        var c RecentCredential
        var password sql.NullString
        if err := rows.Scan(&c.Username, &password); err != nil {
            return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "scan recent credential")
        }
        c.Password = password.String
        out = append(out, c)
    }
    return out, rows.Err()
}

// GetRecentEvents returns the most recently captured events, newest first.
func (s *Store) GetRecentEvents(limit int) ([]*capture.Event, error) {
    q := s.rebind(`SELECT id, timestamp, ip, country_code, latitude, longitude, service, port, request, payload, http_path, username, password, user_agent, request_size
        FROM requests ORDER BY id DESC LIMIT ?`)
    rows, err := s.db.Query(q, limit)
    if err != nil {
        return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "get recent events")
    }
    defer rows.Close()

    var out []*capture.Event
    for rows.Next() {
        e, err := scanEvent(rows)
        if err != nil {
            return nil, apperrors.Wrap(err, apperrors.ErrStoreRead, "scan recent event")
        }
        out = append(out, e)
    }
    return out, rows.Err()
}

type rowScanner interface {
    Scan(dest ...interface{}) error
}

func scanEvent(rows rowScanner) (*capture.Event, error) {
    var e capture.Event
    var port sql.NullInt64
    var requestSize sql.NullInt64
    var countryCode, request, payload, httpPath, username, password, userAgent sql.NullString
    var lat, lon sql.NullFloat64

    if err := rows.Scan(&e.ID, &e.Timestamp, &e.IP, &countryCode, &lat, &lon, &e.Service, &port,
        &request, &payload, &httpPath, &username, &password, &userAgent, &requestSize); err != nil {
        return nil, err
    }

    if countryCode.Valid {
        e.CountryCode = &countryCode.String
    }
    if lat.Valid {
        e.Latitude = &lat.Float64
    }
    if lon.Valid {
        e.Longitude = &lon.Float64
    }
    if port.Valid {
        p := int(port.Int64)
        e.Port = &p
    }
    if request.Valid {
        e.Request = &request.String
    }
    if payload.Valid {
        e.Payload = &payload.String
    }
    if httpPath.Valid {
        e.HTTPPath = &httpPath.String
    }
    if username.Valid {
        e.Username = &username.String
    }
    if password.Valid {
        e.Password = &password.String
    }
    if userAgent.Valid {
        e.UserAgent = &userAgent.String
    }
    e.RequestSize = uint32(requestSize.Int64)

    return &e, nil
}

// rebind rewrites ? placeholders to $N for postgres; sqlite keeps ?.
func (s *Store) rebind(query string) string {
    if s.driver != "postgres" {
        return query
    }
    out := make([]byte, 0, len(query)+8)
    n := 0
    for i := 0; i < len(query); i++ {
        if query[i] == '?' {
            n++
            out = append(out, []byte(fmt.Sprintf("$%d", n))...)
            continue
        }
        out = append(out, query[i])
    }
    return string(out)
}
