package stats

import (
    "context"
    "time"

    "github.com/hamzaKhattat/honeypot/internal/store"
    "github.com/hamzaKhattat/honeypot/pkg/logger"
)

// Aggregator keeps stats_daily caught up: it backfills every completed
// UTC day that has requests but no rollup row yet, at startup and then
// once an hour thereafter.
type Aggregator struct {
    store *store.Store
}

// NewAggregator wraps s for background rollup maintenance.
func NewAggregator(s *store.Store) *Aggregator {
    return &Aggregator{store: s}
}

// Backfill rolls up every completed day missing a stats_daily row.
func (a *Aggregator) Backfill() error {
    now := time.Now().UnixMilli()
    todayStart := (now / 86_400_000) * 86_400_000

    days, err := a.store.GetDaysNeedingRollup(todayStart)
    if err != nil {
        return err
    }

    for _, day := range days {
        if err := a.store.AggregateDay(day); err != nil {
            logger.WithField("day_bucket", day).WithField("error", err.Error()).Error("aggregate day failed")
            continue
        }
        logger.WithField("day_bucket", day).Info("aggregated day")
    }

    return nil
}

// Run backfills immediately, then once per hour until ctx is cancelled.
func (a *Aggregator) Run(ctx context.Context) {
    if err := a.Backfill(); err != nil {
        logger.WithField("error", err.Error()).Error("initial backfill failed")
    }

    ticker := time.NewTicker(time.Hour)
    defer ticker.Stop()

    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            if err := a.Backfill(); err != nil {
                logger.WithField("error", err.Error()).Error("scheduled backfill failed")
            }
        }
    }
}
