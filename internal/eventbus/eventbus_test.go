package eventbus

import (
    "testing"
    "time"

    "github.com/hamzaKhattat/honeypot/internal/capture"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
    b := New()
    ch, unsubscribe := b.Subscribe()
    defer unsubscribe()

    ev := capture.New(0, "1.2.3.4", "ssh")
    b.Publish(ev)

    select {
    case got := <-ch:
        if got != ev {
            t.Fatalf("got %v, want %v", got, ev)
        }
    case <-time.After(time.Second):
        t.Fatal("timed out waiting for published event")
    }
}

func TestSubscriberCountTracksLifecycle(t *testing.T) {
    b := New()
    if got := b.SubscriberCount(); got != 0 {
        t.Fatalf("SubscriberCount() = %d, want 0", got)
    }

    _, unsubscribe := b.Subscribe()
    if got := b.SubscriberCount(); got != 1 {
        t.Fatalf("SubscriberCount() = %d, want 1", got)
    }

    unsubscribe()
    if got := b.SubscriberCount(); got != 0 {
        t.Fatalf("SubscriberCount() = %d, want 0 after unsubscribe", got)
    }
}

func TestLaggingSubscriberIsDisconnected(t *testing.T) {
    b := New()
    ch, _ := b.Subscribe()

    for i := 0; i < subscriberBuffer+10; i++ {
        b.Publish(capture.New(int64(i), "1.2.3.4", "ssh"))
    }

    if got := b.SubscriberCount(); got != 0 {
        t.Fatalf("SubscriberCount() = %d, want 0 after lagging disconnect", got)
    }

    // The channel should be closed, not merely stalled.
    drained := 0
    for range ch {
        drained++
    }
    if drained > subscriberBuffer {
        t.Fatalf("drained %d events, buffer cap is %d", drained, subscriberBuffer)
    }
}

func TestRingBufferDropsOldestOnOverflow(t *testing.T) {
    b := New()
    for i := 0; i < ringCapacity+10; i++ {
        b.Publish(capture.New(int64(i), "1.2.3.4", "ssh"))
    }
    if len(b.ring) != ringCapacity {
        t.Fatalf("ring length = %d, want %d", len(b.ring), ringCapacity)
    }
    if b.ring[0].Timestamp != 10 {
        t.Fatalf("oldest retained timestamp = %d, want 10", b.ring[0].Timestamp)
    }
}
