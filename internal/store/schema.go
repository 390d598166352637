package store

const createRequestsTable = `
CREATE TABLE IF NOT EXISTS requests (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp BIGINT NOT NULL,
    ip TEXT NOT NULL,
    country_code TEXT,
    latitude REAL,
    longitude REAL,
    service TEXT NOT NULL,
    port INTEGER,
    request TEXT,
    payload TEXT,
    http_path TEXT,
    username TEXT,
    password TEXT,
    user_agent TEXT,
    request_size INTEGER DEFAULT 0
)`

const createStatsDailyTable = `
CREATE TABLE IF NOT EXISTS stats_daily (
    day_bucket INTEGER PRIMARY KEY,
    total_requests INTEGER NOT NULL DEFAULT 0,
    country_counts TEXT,
    service_counts TEXT,
    path_counts TEXT,
    credential_counts TEXT,
    location_counts TEXT,
    total_bytes INTEGER DEFAULT 0,
    ip_request_counts TEXT,
    ip_bytes_counts TEXT
)`

var createIndexes = []string{
    `CREATE INDEX IF NOT EXISTS idx_ts_service ON requests (timestamp, service)`,
    `CREATE INDEX IF NOT EXISTS idx_ts_country ON requests (timestamp, country_code)`,
    `CREATE INDEX IF NOT EXISTS idx_ts_http_path ON requests (timestamp, http_path)`,
    `CREATE INDEX IF NOT EXISTS idx_ts_location ON requests (timestamp, latitude, longitude)`,
    `CREATE INDEX IF NOT EXISTS idx_ip ON requests (ip)`,
    `CREATE INDEX IF NOT EXISTS idx_credentials ON requests (username, id DESC) WHERE username IS NOT NULL`,
    `CREATE INDEX IF NOT EXISTS idx_ts_ip ON requests (timestamp, ip)`,
}

// migrate creates the schema idempotently. There is exactly one schema
// version; future changes would add new CREATE TABLE IF NOT EXISTS /
// ALTER TABLE statements here rather than a migration runner.
func (s *Store) migrate() error {
    if s.driver == "sqlite" {
        if _, err := s.db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
            return err
        }
    }

    if _, err := s.db.Exec(createRequestsTable); err != nil {
        return err
    }
    if _, err := s.db.Exec(createStatsDailyTable); err != nil {
        return err
    }
    for _, idx := range createIndexes {
        if _, err := s.db.Exec(idx); err != nil {
            return err
        }
    }
    return nil
}
