// Package eventbus fans out captured events to the live dashboard (SSE)
// and anything else that wants a real-time feed, without ever blocking a
// protocol handler's capture path.
package eventbus

import (
    "sync"

    "github.com/hamzaKhattat/honeypot/internal/capture"
    "github.com/hamzaKhattat/honeypot/internal/metrics"
    "github.com/hamzaKhattat/honeypot/pkg/logger"
)

// ringCapacity bounds the in-flight event history; Publish drops the
// oldest entry once full rather than blocking the publisher.
const ringCapacity = 1000

// subscriberBuffer bounds each subscriber's channel. A subscriber that
// can't keep up is disconnected rather than allowed to stall Publish.
const subscriberBuffer = 64

// Bus is a broadcast channel of capture.Event, safe for concurrent use.
type Bus struct {
    mu          sync.Mutex
    ring        []*capture.Event
    subscribers map[int]chan *capture.Event
    nextID      int
}

// New returns an empty, ready-to-use Bus.
func New() *Bus {
    return &Bus{
        subscribers: make(map[int]chan *capture.Event),
    }
}

// Publish appends ev to the ring buffer and pushes it to every live
// subscriber. A subscriber whose buffered channel is full is dropped
// immediately; Publish never blocks on a slow reader.
func (b *Bus) Publish(ev *capture.Event) {
    b.mu.Lock()
    defer b.mu.Unlock()

    b.ring = append(b.ring, ev)
    if len(b.ring) > ringCapacity {
        b.ring = b.ring[len(b.ring)-ringCapacity:]
    }

    for id, ch := range b.subscribers {
        select {
        case ch <- ev:
        default:
            logger.WithField("subscriber", id).Warn("eventbus subscriber lagging, disconnecting")
            metrics.Inc("eventbus_drops_total", map[string]string{"reason": "lagging_subscriber"})
            close(ch)
            delete(b.subscribers, id)
        }
    }
    metrics.Gauge("eventbus_subscribers", float64(len(b.subscribers)), nil)
}

// Subscribe registers a new subscriber and returns its channel along with
// an unsubscribe function the caller must call when done (typically via
// defer) to release the channel and stop further sends.
func (b *Bus) Subscribe() (<-chan *capture.Event, func()) {
    b.mu.Lock()
    defer b.mu.Unlock()

    id := b.nextID
    b.nextID++
    ch := make(chan *capture.Event, subscriberBuffer)
    b.subscribers[id] = ch
    metrics.Gauge("eventbus_subscribers", float64(len(b.subscribers)), nil)

    unsubscribe := func() {
        b.mu.Lock()
        defer b.mu.Unlock()
        if existing, ok := b.subscribers[id]; ok {
            delete(b.subscribers, id)
            close(existing)
        }
        metrics.Gauge("eventbus_subscribers", float64(len(b.subscribers)), nil)
    }

    return ch, unsubscribe
}

// SubscriberCount reports the current number of live subscribers, for
// metrics.
func (b *Bus) SubscriberCount() int {
    b.mu.Lock()
    defer b.mu.Unlock()
    return len(b.subscribers)
}
