package store

import (
    "testing"

    "github.com/hamzaKhattat/honeypot/internal/capture"
)

func openTestStore(t *testing.T) *Store {
    t.Helper()
    s, err := Open(Config{
        Driver:      "sqlite",
        DSN:         "file::memory:?mode=memory&cache=shared",
        CacheSizeMB: 16,
    })
    if err != nil {
        t.Fatalf("Open() error = %v", err)
    }
    t.Cleanup(func() { s.Close() })
    return s
}

func TestInsertAndGetTotalCount(t *testing.T) {
    s := openTestStore(t)

    for i := 0; i < 3; i++ {
        e := capture.New(int64(1000+i), "1.2.3.4", "ssh").WithPort(22)
        if err := s.InsertEvent(e); err != nil {
            t.Fatalf("InsertEvent() error = %v", err)
        }
    }

    count, err := s.GetTotalCount()
    if err != nil {
        t.Fatalf("GetTotalCount() error = %v", err)
    }
    if count != 3 {
        t.Fatalf("GetTotalCount() = %d, want 3", count)
    }
}

func TestBatchInsertAndRecentCredentials(t *testing.T) {
    s := openTestStore(t)

    events := []*capture.Event{
        capture.New(1000, "1.2.3.4", "ssh").WithPort(22).WithCredentials("root", "toor"),
        capture.New(2000, "5.6.7.8", "telnet").WithPort(23).WithCredentials("admin", ""),
        capture.New(3000, "9.9.9.9", "http").WithPort(80),
    }
    if err := s.BatchInsertEvents(events); err != nil {
        t.Fatalf("BatchInsertEvents() error = %v", err)
    }

    creds, err := s.GetRecentCredentials(10)
    if err != nil {
        t.Fatalf("GetRecentCredentials() error = %v", err)
    }
    if len(creds) != 2 {
        t.Fatalf("len(creds) = %d, want 2", len(creds))
    }
    // Newest first.
    if creds[0].Username != "admin" {
        t.Fatalf("creds[0].Username = %q, want admin", creds[0].Username)
    }
}

func TestAggregateDayIsIdempotent(t *testing.T) {
    s := openTestStore(t)

    const day int64 = 0 // Unix epoch day bucket
    events := []*capture.Event{
        capture.New(100, "1.2.3.4", "ssh").WithPort(22).WithRequestSize(10),
        capture.New(200, "1.2.3.4", "ssh").WithPort(22).WithRequestSize(20),
    }
    if err := s.BatchInsertEvents(events); err != nil {
        t.Fatalf("BatchInsertEvents() error = %v", err)
    }

    if err := s.AggregateDay(day); err != nil {
        t.Fatalf("AggregateDay() error = %v", err)
    }
    if err := s.AggregateDay(day); err != nil {
        t.Fatalf("second AggregateDay() error = %v", err)
    }

    var total int64
    row := s.db.QueryRow(`SELECT total_requests FROM stats_daily WHERE day_bucket = ?`, day)
    if err := row.Scan(&total); err != nil {
        t.Fatalf("scan total_requests: %v", err)
    }
    if total != 2 {
        t.Fatalf("total_requests = %d, want 2 (rerun must not double-count)", total)
    }
}

func TestGetDaysNeedingRollupExcludesToday(t *testing.T) {
    s := openTestStore(t)

    yesterday := int64(0)
    today := dayMillis

    events := []*capture.Event{
        capture.New(yesterday+10, "1.2.3.4", "ssh"),
        capture.New(today+10, "1.2.3.4", "ssh"),
    }
    if err := s.BatchInsertEvents(events); err != nil {
        t.Fatalf("BatchInsertEvents() error = %v", err)
    }

    days, err := s.GetDaysNeedingRollup(today)
    if err != nil {
        t.Fatalf("GetDaysNeedingRollup() error = %v", err)
    }
    if len(days) != 1 || days[0] != yesterday {
        t.Fatalf("days = %v, want [%d]", days, yesterday)
    }
}
