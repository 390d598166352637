// Package handlers is the top-level supervisor (C10): it binds one
// listener per configured port, dispatches each to the protocol handler
// appropriate for its service tag, and runs the best-effort ICMP capture
// task alongside them.
package handlers

import (
    "context"
    "fmt"
    "net"

    "strconv"

    "github.com/hamzaKhattat/honeypot/internal/eventbus"
    "github.com/hamzaKhattat/honeypot/internal/geoip"
    "github.com/hamzaKhattat/honeypot/internal/handlers/ftp"
    "github.com/hamzaKhattat/honeypot/internal/handlers/tcphandler"
    "github.com/hamzaKhattat/honeypot/internal/handlers/telnet"
    "github.com/hamzaKhattat/honeypot/internal/metrics"
    "github.com/hamzaKhattat/honeypot/internal/sshpot"
    "github.com/hamzaKhattat/honeypot/internal/store"
    "github.com/hamzaKhattat/honeypot/pkg/logger"
)

// Config configures the supervisor's fleet of listeners.
type Config struct {
    Host         string
    MaxPorts     int // 0 means "all ports in the table"
    SSHBanner    string
    FTPBanner    string
    MySQLVersion string
    HostKeyPath  string
}

// Deps holds the shared collaborators every protocol handler is wired to.
type Deps struct {
    Store *store.WriteBuffer
    Bus   *eventbus.Bus
    GeoIP *geoip.Resolver
}

// StartAll binds a listener for every port in the table (optionally
// capped to cfg.MaxPorts) and starts its handler, plus the ICMP capture
// task. It returns the count of listeners successfully bound; binding
// failures are logged and skipped rather than fatal, since one bad port
// should never take the rest of the fleet down.
func StartAll(ctx context.Context, cfg Config, deps Deps) int {
    ports := tcpPorts
    if cfg.MaxPorts > 0 && cfg.MaxPorts < len(ports) {
        ports = ports[:cfg.MaxPorts]
    }

    bound := 0
    for _, entry := range ports {
        if startOne(ctx, cfg, deps, entry) {
            bound++
        }
    }

    go startICMP(ctx, deps)

    return bound
}

func startOne(ctx context.Context, cfg Config, deps Deps, entry portEntry) bool {
    addr := fmt.Sprintf("%s:%d", cfg.Host, entry.Port)
    ln, err := net.Listen("tcp", addr)
    if err != nil {
        logger.WithField("service", entry.Service).WithField("port", entry.Port).WithField("error", err.Error()).Warn("bind failed, skipping port")
        metrics.Inc("listener_bind_failures_total", map[string]string{"service": entry.Service, "port": strconv.Itoa(entry.Port)})
        return false
    }

    switch entry.Service {
    case "ssh", "ssh-alt":
        srv, err := sshpot.New(sshpot.Deps{
            Store:       deps.Store,
            Bus:         deps.Bus,
            GeoIP:       deps.GeoIP,
            Banner:      cfg.SSHBanner,
            HostKeyPath: cfg.HostKeyPath,
        }, entry.Port)
        if err != nil {
            logger.WithField("port", entry.Port).WithField("error", err.Error()).Warn("ssh host key setup failed, skipping port")
            ln.Close()
            return false
        }
        go func() {
            <-ctx.Done()
            ln.Close()
        }()
        go srv.Serve(ln)

    case "ftp":
        go ftp.Start(ctx, ln, entry.Port, ftp.Deps{
            Store:  deps.Store,
            Bus:    deps.Bus,
            GeoIP:  deps.GeoIP,
            Banner: cfg.FTPBanner,
        })

    case "telnet", "telnet-alt":
        go telnet.Start(ctx, ln, entry.Port, telnet.Deps{
            Store: deps.Store,
            Bus:   deps.Bus,
            GeoIP: deps.GeoIP,
        })

    default:
        go tcphandler.Start(ctx, ln, entry.Service, entry.Port, tcphandler.Deps{
            Store:        deps.Store,
            Bus:          deps.Bus,
            GeoIP:        deps.GeoIP,
            MySQLVersion: cfg.MySQLVersion,
        })
    }

    return true
}
