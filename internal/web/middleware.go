package web

import (
    "net"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/hamzaKhattat/honeypot/internal/capture"
    "github.com/hamzaKhattat/honeypot/internal/metrics"
)

// statusRecorder captures the status code a handler writes so the
// request-duration histogram can be labeled with it.
type statusRecorder struct {
    http.ResponseWriter
    status int
}

func (r *statusRecorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

// realIP resolves the client address the same way the upstream honeypot
// did: X-Real-IP first, then the first hop of X-Forwarded-For, falling
// back to the socket peer address when neither proxy header is present.
func realIP(r *http.Request, fallback string) string {
    if v := r.Header.Get("X-Real-IP"); v != "" {
        return v
    }
    if v := r.Header.Get("X-Forwarded-For"); v != "" {
        parts := strings.Split(v, ",")
        return strings.TrimSpace(parts[0])
    }
    return fallback
}

// realPort resolves the client-facing port, defaulting to 80 when no
// X-Forwarded-Port header is present (the honeypot is rarely reached
// without a reverse proxy in front of it).
func realPort(r *http.Request) int {
    if v := r.Header.Get("X-Forwarded-Port"); v != "" {
        if p, err := strconv.Atoi(v); err == nil {
            return p
        }
    }
    return 80
}

// requestSize approximates the bytes a client sent: the request line,
// every header's "key: value\r\n" size, the blank line, and the body
// (from Content-Length when present).
func requestSize(r *http.Request) uint32 {
    size := len(r.Method) + 1 + len(r.URL.RequestURI()) + 1 + len("HTTP/1.1") + 2

    for key, values := range r.Header {
        for _, v := range values {
            size += len(key) + 2 + len(v) + 2
        }
    }
    size += 2

    if r.ContentLength > 0 {
        size += int(r.ContentLength)
    }

    return uint32(size)
}

// setSecurityHeaders applies the fixed set of response headers the front
// end adds to every response, unless a downstream handler already set
// one explicitly.
func setSecurityHeaders(w http.ResponseWriter) {
    h := w.Header()
    if h.Get("X-Frame-Options") == "" {
        h.Set("X-Frame-Options", "DENY")
    }
    if h.Get("X-Content-Type-Options") == "" {
        h.Set("X-Content-Type-Options", "nosniff")
    }
    if h.Get("Referrer-Policy") == "" {
        h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
    }
    if h.Get("Access-Control-Allow-Origin") == "" {
        h.Set("Access-Control-Allow-Origin", "null")
    }
}

func headersSummary(r *http.Request) string {
    var b strings.Builder
    for key, values := range r.Header {
        for _, v := range values {
            b.WriteString(key)
            b.WriteString(": ")
            b.WriteString(v)
            b.WriteString("\n")
        }
    }
    return b.String()
}

// loggingMiddleware records every HTTP request as a capture.Event before
// handing it to the underlying router, the same way the honeypot's other
// protocol handlers record every connection.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        host, _, err := net.SplitHostPort(r.RemoteAddr)
        if err != nil {
            host = r.RemoteAddr
        }
        ip := realIP(r, host)
        port := realPort(r)

        request := r.Method + " " + r.URL.RequestURI() + "\n" + headersSummary(r)

        ev := capture.New(time.Now().UnixMilli(), ip, "http").
            WithPort(port).
            WithRequest(request).
            WithHTTPPath(r.URL.RequestURI()).
            WithUserAgent(r.UserAgent()).
            WithRequestSize(requestSize(r))

        if code, lat, lon, ok := s.deps.GeoIP.Lookup(ip); ok {
            ev.WithGeo(code, lat, lon)
        }

        // Published in its own goroutine, started before the inner handler
        // runs, so a slow write buffer or subscriber never delays the
        // response the honeypot sends back to the client.
        go func() {
            s.deps.Store.Submit(ev)
            s.deps.Bus.Publish(ev)
        }()

        setSecurityHeaders(w)

        start := time.Now()
        rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
        next.ServeHTTP(rec, r)
        metrics.Observe("http_request_duration", time.Since(start).Seconds(), map[string]string{
            "route":  r.URL.Path,
            "status": strconv.Itoa(rec.status),
        })
    })
}
