package web

import (
    "encoding/json"
    "fmt"
    "net/http"
    "time"

    "github.com/hamzaKhattat/honeypot/pkg/logger"
)

const ssePingInterval = 15 * time.Second

// sseHandler streams every published event as a Server-Sent Event of type
// "attack", sending a ping comment every 15 seconds to keep intermediaries
// from closing an otherwise idle connection.
func (s *Server) sseHandler(w http.ResponseWriter, r *http.Request) {
    flusher, ok := w.(http.Flusher)
    if !ok {
        http.Error(w, "streaming unsupported", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("Connection", "keep-alive")

    events, unsubscribe := s.deps.Bus.Subscribe()
    defer unsubscribe()

    ticker := time.NewTicker(ssePingInterval)
    defer ticker.Stop()

    ctx := r.Context()
    for {
        select {
        case <-ctx.Done():
            return
        case ev, ok := <-events:
            if !ok {
                return
            }
            data, err := json.Marshal(ev)
            if err != nil {
                logger.WithField("error", err.Error()).Error("marshal sse event")
                continue
            }
            fmt.Fprintf(w, "event: attack\ndata: %s\n\n", data)
            flusher.Flush()
        case <-ticker.C:
            fmt.Fprint(w, ": ping\n\n")
            flusher.Flush()
        }
    }
}
