// Command honeypotd runs the full honeypot: the protocol listener fleet,
// the HTTP dashboard/API front-end, and the background stats aggregator.
package main

import (
    "context"
    "flag"
    "net/http"
    "os"
    "os/signal"
    "syscall"

    "github.com/hamzaKhattat/honeypot/internal/config"
    "github.com/hamzaKhattat/honeypot/internal/eventbus"
    "github.com/hamzaKhattat/honeypot/internal/geoip"
    "github.com/hamzaKhattat/honeypot/internal/handlers"
    "github.com/hamzaKhattat/honeypot/internal/metrics"
    "github.com/hamzaKhattat/honeypot/internal/stats"
    "github.com/hamzaKhattat/honeypot/internal/store"
    "github.com/hamzaKhattat/honeypot/internal/web"
    "github.com/hamzaKhattat/honeypot/pkg/logger"
)

func main() {
    configFile := flag.String("config", "", "path to config.toml")
    flag.Parse()

    cfg, err := config.Load(*configFile)
    if err != nil {
        // Config errors abort startup outright. After this point only a
        // store that cannot be opened/migrated and a failed plaintext
        // HTTP listener exit; listener-fleet, GeoIP and metrics
        // failures degrade instead.
        panic(err)
    }

    if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: "text", Output: "stdout"}); err != nil {
        panic(err)
    }

    geo := geoip.Open(cfg.GeoIP.Database)
    defer geo.Close()

    db, err := store.Open(store.Config{
        Driver:      cfg.Database.Driver,
        DSN:         cfg.Database.DSN(),
        CacheSizeMB: cfg.Database.CacheSizeMB,
    })
    if err != nil {
        logger.WithField("error", err.Error()).Fatal("failed to open store")
    }
    defer db.Close()

    bus := eventbus.New()
    writeBuffer := store.NewWriteBuffer(db)
    defer writeBuffer.Close()

    statsEngine := stats.New(db)
    statsEngine.WarmCache()

    aggregator := stats.NewAggregator(db)

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    go aggregator.Run(ctx)

    promMetrics := metrics.NewPrometheusMetrics()
    metrics.Init(promMetrics)

    deps := handlers.Deps{Store: writeBuffer, Bus: bus, GeoIP: geo}
    bound := handlers.StartAll(ctx, handlers.Config{
        Host:         cfg.Server.Host,
        MaxPorts:     cfg.Server.MaxPorts,
        SSHBanner:    cfg.Emulation.SSHBanner,
        FTPBanner:    cfg.Emulation.FTPBanner,
        MySQLVersion: cfg.Emulation.MySQLVersion,
        HostKeyPath:  "data/ssh_host_key",
    }, deps)
    logger.WithField("listeners", bound).Info("protocol listener fleet started")
    metrics.Gauge("listeners_active", float64(bound), nil)

    router := web.NewRouter(web.Deps{
        Store:     writeBuffer,
        Bus:       bus,
        GeoIP:     geo,
        Stats:     statsEngine,
        StaticDir: "static",
        PublicURL: cfg.Server.PublicURL,
    })

    metricsMux := http.NewServeMux()
    go func() {
        if err := promMetrics.ServeHTTP(metricsMux, 9090); err != nil {
            logger.WithField("error", err.Error()).Error("metrics server stopped")
        }
    }()

    srv := &http.Server{Addr: cfg.Server.HTTPAddr(), Handler: router}

    if cfg.Server.TLSEnabled() {
        go func() {
            tlsSrv := &http.Server{Addr: cfg.Server.HTTPSAddr(), Handler: router}
            logger.WithField("addr", cfg.Server.HTTPSAddr()).Info("https front-end listening")
            if err := tlsSrv.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey); err != nil && err != http.ErrServerClosed {
                logger.WithField("error", err.Error()).Error("https server failed")
            }
        }()
    }

    go func() {
        sigCh := make(chan os.Signal, 1)
        signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
        <-sigCh
        logger.Info("shutting down")
        cancel()
        srv.Close()
    }()

    logger.WithField("addr", cfg.Server.HTTPAddr()).Info("http front-end listening")
    if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        logger.WithField("error", err.Error()).Fatal("http server failed")
    }
}
