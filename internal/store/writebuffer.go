package store

import (
    "time"

    "github.com/hamzaKhattat/honeypot/internal/capture"
    "github.com/hamzaKhattat/honeypot/internal/metrics"
    "github.com/hamzaKhattat/honeypot/pkg/logger"
)

const (
    writeBatchSize  = 100
    writeFlushEvery = 250 * time.Millisecond
)

// WriteBuffer is the single writer into Store. Every handler goroutine
// sends captured events here instead of writing the database directly;
// WriteBuffer batches them to amortize transaction overhead and is the
// only goroutine that ever calls Store.BatchInsertEvents.
type WriteBuffer struct {
    store *Store
    in    chan *capture.Event
    done  chan struct{}
}

// NewWriteBuffer starts the background flush loop and returns a buffer
// ready to accept events via Submit.
func NewWriteBuffer(s *Store) *WriteBuffer {
    wb := &WriteBuffer{
        store: s,
        in:    make(chan *capture.Event, 4096),
        done:  make(chan struct{}),
    }
    go wb.run()
    return wb
}

// Submit enqueues an event for asynchronous persistence. It never blocks
// on the database; at worst it blocks briefly on the channel itself if
// the in-memory queue is momentarily full.
func (wb *WriteBuffer) Submit(e *capture.Event) {
    wb.in <- e
}

// Close stops accepting new events, flushes whatever remains, and waits
// for the flush to complete.
func (wb *WriteBuffer) Close() {
    close(wb.in)
    <-wb.done
}

func (wb *WriteBuffer) run() {
    defer close(wb.done)

    ticker := time.NewTicker(writeFlushEvery)
    defer ticker.Stop()

    batch := make([]*capture.Event, 0, writeBatchSize)

    flush := func() {
        if len(batch) == 0 {
            return
        }
        start := time.Now()
        err := wb.store.BatchInsertEvents(batch)
        metrics.Observe("store_flush_duration", time.Since(start).Seconds(), nil)
        if err != nil {
            logger.WithField("batch_size", len(batch)).WithField("error", err.Error()).Error("write buffer flush failed, dropping batch")
            metrics.Inc("store_writes_total", map[string]string{"outcome": "failure"})
        } else {
            metrics.Inc("store_writes_total", map[string]string{"outcome": "success"})
        }
        batch = batch[:0]
    }

    for {
        select {
        case e, ok := <-wb.in:
            if !ok {
                flush()
                return
            }
            batch = append(batch, e)
            metrics.Gauge("writebuffer_depth", float64(len(wb.in)), nil)
            if len(batch) >= writeBatchSize {
                flush()
            }
        case <-ticker.C:
            flush()
        }
    }
}

// Depth reports how many events are currently queued, for metrics.
func (wb *WriteBuffer) Depth() int {
    return len(wb.in)
}
