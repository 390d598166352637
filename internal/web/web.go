// Package web is the HTTP front-end (C11) and SSE endpoint (C14): it
// serves the dashboard, a small JSON API backed by the stats engine, and
// a live event feed, while also itself acting as a catch-all HTTP
// honeypot — every request, matched route or not, is captured.
package web

import (
    "encoding/json"
    "fmt"
    "html"
    "io"
    "net/http"
    "path/filepath"
    "sort"
    "strconv"
    "strings"

    "github.com/gorilla/mux"

    "github.com/hamzaKhattat/honeypot/internal/capture"
    "github.com/hamzaKhattat/honeypot/internal/eventbus"
    "github.com/hamzaKhattat/honeypot/internal/geoip"
    "github.com/hamzaKhattat/honeypot/internal/stats"
    "github.com/hamzaKhattat/honeypot/internal/store"
    apperrors "github.com/hamzaKhattat/honeypot/pkg/errors"
    "github.com/hamzaKhattat/honeypot/pkg/logger"
)

// maxCatchAllBody caps the bytes of a POST/PUT/PATCH body the catch-all
// handler will read before discarding the rest of the request.
const maxCatchAllBody = 64 * 1024

// Deps holds the collaborators the front-end needs.
type Deps struct {
    Store     *store.WriteBuffer
    Bus       *eventbus.Bus
    GeoIP     *geoip.Resolver
    Stats     *stats.Engine
    StaticDir string
    PublicURL string
}

// Server is the HTTP front-end.
type Server struct {
    deps Deps
}

// NewRouter builds the full mux.Router: dashboard pages, the SSE feed,
// the JSON API, static assets, and a catch-all fallback — all wrapped in
// the capture-everything logging middleware.
func NewRouter(deps Deps) http.Handler {
    s := &Server{deps: deps}

    r := mux.NewRouter()
    r.HandleFunc("/", s.index).Methods(http.MethodGet)
    r.HandleFunc("/stats", s.statsPage).Methods(http.MethodGet)
    r.HandleFunc("/robots.txt", s.robotsTxt).Methods(http.MethodGet)
    r.HandleFunc("/events", s.sseHandler).Methods(http.MethodGet)
    r.HandleFunc("/api/stats", s.apiStats).Methods(http.MethodGet)
    r.HandleFunc("/api/recent", s.apiRecent).Methods(http.MethodGet)
    r.HandleFunc("/api/countries", s.apiCountries).Methods(http.MethodGet)
    r.HandleFunc("/api/locations", s.apiLocations).Methods(http.MethodGet)
    r.HandleFunc("/api/top_ips_requests", s.apiTopIPsRequests).Methods(http.MethodGet)
    r.HandleFunc("/api/top_ips_bandwidth", s.apiTopIPsBandwidth).Methods(http.MethodGet)
    r.HandleFunc("/api/total_bytes", s.apiTotalBytes).Methods(http.MethodGet)

    if deps.StaticDir != "" {
        r.PathPrefix("/static/").HandlerFunc(s.serveStatic)
    }

    r.NotFoundHandler = http.HandlerFunc(s.catchAll)

    return s.loggingMiddleware(r)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.Write([]byte(indexHTML))
}

func (s *Server) statsPage(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.Write([]byte(statsHTML))
}

func (s *Server) robotsTxt(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "text/plain; charset=utf-8")
    w.Write([]byte("User-agent: *\nDisallow: /\n"))
}

// serveStatic serves files under deps.StaticDir, rejecting any request
// whose resolved path escapes that directory — gorilla's PathPrefix
// already strips "..": mux cleans the URL path before routing, but the
// check here guards against a non-mux caller or a future refactor that
// drops that guarantee.
func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
    rel := strings.TrimPrefix(r.URL.Path, "/static/")
    cleaned := filepath.Clean("/" + rel)
    full := filepath.Join(s.deps.StaticDir, cleaned)

    if !strings.HasPrefix(full, filepath.Clean(s.deps.StaticDir)+string(filepath.Separator)) {
        logger.WithField("path", r.URL.Path).Warn("rejected static file request outside static root")
        writeError(w, apperrors.New(apperrors.ErrPathTraversal, "path escapes static root"))
        return
    }

    http.ServeFile(w, r, full)
}

// catchAll is itself a honeypot surface: every unmatched method/path is
// accepted with 200 (never a 404, which would tell a scanner to move on)
// and echoed back inside an HTML page that auto-refreshes to the
// configured public URL after 3 seconds, keeping automated clients on
// the hook a little longer. The logging middleware has already recorded
// the request by the time this handler runs; this only needs to drain
// the body so Content-Length based tooling sees a clean response.
func (s *Server) catchAll(w http.ResponseWriter, r *http.Request) {
    switch r.Method {
    case http.MethodPost, http.MethodPut, http.MethodPatch:
        io.Copy(io.Discard, io.LimitReader(r.Body, maxCatchAllBody))
    }

    redirect := s.deps.PublicURL
    if redirect == "" {
        redirect = "/"
    }

    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    fmt.Fprintf(w, catchAllHTML, redirect, html.EscapeString(r.Method), html.EscapeString(r.URL.RequestURI()))
}

const catchAllHTML = `<!DOCTYPE html>
<html><head>
<meta http-equiv="refresh" content="3;url=%s">
<title>Redirecting&#8230;</title>
</head>
<body>
<p>Redirecting&#8230;</p>
<!-- %s %s -->
</body></html>
`

// parseHours reads the "hours" query parameter, defaulting to 24. It does
// not itself enforce the {24,168,720,8760} set — the stats engine does
// that and returns an ErrInvalidInput AppError, so both a malformed and
// an out-of-range value surface the same 400 response.
func parseHours(r *http.Request) (int64, error) {
    v := r.URL.Query().Get("hours")
    if v == "" {
        return 24, nil
    }
    hours, err := strconv.ParseInt(v, 10, 64)
    if err != nil {
        return 0, apperrors.New(apperrors.ErrInvalidInput, "hours must be an integer")
    }
    return hours, nil
}

func (s *Server) apiStats(w http.ResponseWriter, r *http.Request) {
    hours, err := parseHours(r)
    if err != nil {
        writeError(w, err)
        return
    }

    resp, err := s.deps.Stats.GetStats(hours)
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, resp)
}

type recentResponse struct {
    Total       int64                    `json:"total"`
    Credentials []store.RecentCredential `json:"credentials"`
    Events      []*capture.Event         `json:"events"`
}

func (s *Server) apiRecent(w http.ResponseWriter, r *http.Request) {
    total, creds, events, err := s.deps.Stats.GetRecent()
    if err != nil {
        writeError(w, apperrors.Wrap(err, apperrors.ErrStoreRead, "get recent"))
        return
    }
    writeJSON(w, recentResponse{Total: total, Credentials: creds, Events: events})
}

func (s *Server) apiTopIPsRequests(w http.ResponseWriter, r *http.Request) {
    hours, err := parseHours(r)
    if err != nil {
        writeError(w, err)
        return
    }
    counts, err := s.deps.Stats.GetTopIPsByRequests(hours)
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, ipCountsToList(counts))
}

func (s *Server) apiTopIPsBandwidth(w http.ResponseWriter, r *http.Request) {
    hours, err := parseHours(r)
    if err != nil {
        writeError(w, err)
        return
    }
    counts, err := s.deps.Stats.GetTopIPsByBandwidth(hours)
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, ipCountsToList(counts))
}

func (s *Server) apiTotalBytes(w http.ResponseWriter, r *http.Request) {
    hours, err := parseHours(r)
    if err != nil {
        writeError(w, err)
        return
    }
    total, err := s.deps.Stats.GetTotalBytes(hours)
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, total)
}

type ipCount struct {
    IP    string `json:"ip"`
    Count int64  `json:"count"`
}

func ipCountsToList(counts map[string]int64) []ipCount {
    out := make([]ipCount, 0, len(counts))
    for ip, count := range counts {
        out = append(out, ipCount{IP: ip, Count: count})
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
    return out
}

func (s *Server) apiCountries(w http.ResponseWriter, r *http.Request) {
    hours, err := parseHours(r)
    if err != nil {
        writeError(w, err)
        return
    }
    counts, err := s.deps.Stats.GetCountries(hours)
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, counts)
}

func (s *Server) apiLocations(w http.ResponseWriter, r *http.Request) {
    hours, err := parseHours(r)
    if err != nil {
        writeError(w, err)
        return
    }
    locs, err := s.deps.Stats.GetLocations(hours)
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, locs)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
    w.Header().Set("Content-Type", "application/json")
    if err := json.NewEncoder(w).Encode(v); err != nil {
        logger.WithField("error", err.Error()).Error("encode json response")
    }
}

func writeError(w http.ResponseWriter, err error) {
    status := http.StatusInternalServerError
    if appErr, ok := err.(*apperrors.AppError); ok {
        switch appErr.Code {
        case apperrors.ErrInvalidInput:
            status = http.StatusBadRequest
        case apperrors.ErrPathTraversal:
            status = http.StatusForbidden
        }
    }
    w.WriteHeader(status)
    json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

const indexHTML = `<!DOCTYPE html>
<html><head><title>honeypot</title></head>
<body><h1>It works.</h1></body></html>
`

const statsHTML = `<!DOCTYPE html>
<html><head><title>honeypot stats</title></head>
<body>
<h1>Live attack stats</h1>
<div id="feed"></div>
<script>
const feed = document.getElementById("feed");
const es = new EventSource("/events");
es.addEventListener("attack", (e) => {
  const p = document.createElement("pre");
  p.textContent = e.data;
  feed.prepend(p);
});
</script>
</body></html>
`
