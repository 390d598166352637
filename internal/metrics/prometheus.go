package metrics

import (
    "fmt"
    "net/http"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    "github.com/hamzaKhattat/honeypot/pkg/logger"
)

type PrometheusMetrics struct {
    counters   map[string]*prometheus.CounterVec
    histograms map[string]*prometheus.HistogramVec
    gauges     map[string]*prometheus.GaugeVec
}

func NewPrometheusMetrics() *PrometheusMetrics {
    pm := &PrometheusMetrics{
        counters:   make(map[string]*prometheus.CounterVec),
        histograms: make(map[string]*prometheus.HistogramVec),
        gauges:     make(map[string]*prometheus.GaugeVec),
    }

    pm.registerMetrics()

    return pm
}

func (pm *PrometheusMetrics) registerMetrics() {
    // Counters
    pm.counters["listener_accepts_total"] = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Name: "honeypot_listener_accepts_total",
            Help: "Total accepted connections per port/service",
        },
        []string{"service", "port"},
    )

    pm.counters["listener_bind_failures_total"] = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Name: "honeypot_listener_bind_failures_total",
            Help: "Total listener bind failures per port",
        },
        []string{"service", "port"},
    )

    pm.counters["events_captured_total"] = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Name: "honeypot_events_captured_total",
            Help: "Total events captured per service",
        },
        []string{"service"},
    )

    pm.counters["store_writes_total"] = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Name: "honeypot_store_writes_total",
            Help: "Total write-buffer flushes by outcome",
        },
        []string{"outcome"},
    )

    pm.counters["eventbus_drops_total"] = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Name: "honeypot_eventbus_drops_total",
            Help: "Total event bus subscribers dropped for lagging",
        },
        []string{"reason"},
    )

    pm.counters["cache_lookups_total"] = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Name: "honeypot_cache_lookups_total",
            Help: "Total in-process stats cache lookups by outcome",
        },
        []string{"outcome"},
    )

    // Histograms
    pm.histograms["session_duration"] = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "honeypot_session_duration_seconds",
            Help:    "Connection session duration in seconds",
            Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
        },
        []string{"service"},
    )

    pm.histograms["store_flush_duration"] = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "honeypot_store_flush_duration_seconds",
            Help:    "Write-buffer batch flush duration",
            Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
        },
        []string{},
    )

    pm.histograms["http_request_duration"] = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "honeypot_http_request_duration_seconds",
            Help:    "HTTP front-end request duration",
            Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
        },
        []string{"route", "status"},
    )

    // Gauges
    pm.gauges["listeners_active"] = prometheus.NewGaugeVec(
        prometheus.GaugeOpts{
            Name: "honeypot_listeners_active",
            Help: "Currently bound listener count",
        },
        []string{},
    )

    pm.gauges["sessions_active"] = prometheus.NewGaugeVec(
        prometheus.GaugeOpts{
            Name: "honeypot_sessions_active",
            Help: "Currently open sessions per service",
        },
        []string{"service"},
    )

    pm.gauges["eventbus_subscribers"] = prometheus.NewGaugeVec(
        prometheus.GaugeOpts{
            Name: "honeypot_eventbus_subscribers",
            Help: "Current SSE subscriber count",
        },
        []string{},
    )

    pm.gauges["writebuffer_depth"] = prometheus.NewGaugeVec(
        prometheus.GaugeOpts{
            Name: "honeypot_writebuffer_depth",
            Help: "Pending events queued in the write buffer",
        },
        []string{},
    )

    for _, counter := range pm.counters {
        prometheus.MustRegister(counter)
    }
    for _, histogram := range pm.histograms {
        prometheus.MustRegister(histogram)
    }
    for _, gauge := range pm.gauges {
        prometheus.MustRegister(gauge)
    }
}

func (pm *PrometheusMetrics) IncrementCounter(name string, labels map[string]string) {
    if counter, exists := pm.counters[name]; exists {
        counter.With(prometheus.Labels(labels)).Inc()
    }
}

func (pm *PrometheusMetrics) ObserveHistogram(name string, value float64, labels map[string]string) {
    if histogram, exists := pm.histograms[name]; exists {
        histogram.With(prometheus.Labels(labels)).Observe(value)
    }
}

func (pm *PrometheusMetrics) SetGauge(name string, value float64, labels map[string]string) {
    if gauge, exists := pm.gauges[name]; exists {
        if labels == nil {
            labels = make(map[string]string)
        }
        gauge.With(prometheus.Labels(labels)).Set(value)
    }
}

func (pm *PrometheusMetrics) ServeHTTP(mux *http.ServeMux, port int) error {
    mux.Handle("/metrics", promhttp.Handler())
    addr := fmt.Sprintf(":%d", port)
    logger.WithField("addr", addr).Info("metrics server started")
    return http.ListenAndServe(addr, mux)
}

// global is the process-wide metrics sink, set by Init. Every protocol
// handler and store component reaches it the same way they reach
// pkg/logger: a package-level call, not a constructor argument, since
// instrumentation is cross-cutting the same way logging is.
var global *PrometheusMetrics

// Init installs pm as the process-wide metrics sink. Call once at
// startup before any handler goroutines are spawned.
func Init(pm *PrometheusMetrics) {
    global = pm
}

// Inc increments a registered counter. A no-op before Init (e.g. in
// tests that don't stand up metrics) or for an unregistered name.
func Inc(name string, labels map[string]string) {
    if global == nil {
        return
    }
    global.IncrementCounter(name, labels)
}

// Observe records a histogram sample.
func Observe(name string, value float64, labels map[string]string) {
    if global == nil {
        return
    }
    global.ObserveHistogram(name, value, labels)
}

// Gauge sets a gauge's current value.
func Gauge(name string, value float64, labels map[string]string) {
    if global == nil {
        return
    }
    global.SetGauge(name, value, labels)
}
