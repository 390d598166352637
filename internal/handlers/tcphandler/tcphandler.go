// Package tcphandler implements the generic protocol-agnostic TCP
// listener: it sends a banner appropriate to the service it is
// impersonating, reads whatever the client sends within a short deadline,
// and records the interaction as a single event. This is the fallback
// handler for every port in the supervisor's table that isn't given a
// dedicated protocol implementation (SSH, Telnet, FTP).
package tcphandler

import (
    "bytes"
    "context"
    "fmt"
    "net"
    "strconv"
    "time"

    "github.com/hamzaKhattat/honeypot/internal/capture"
    "github.com/hamzaKhattat/honeypot/internal/eventbus"
    "github.com/hamzaKhattat/honeypot/internal/geoip"
    "github.com/hamzaKhattat/honeypot/internal/metrics"
    "github.com/hamzaKhattat/honeypot/internal/store"
    "github.com/hamzaKhattat/honeypot/pkg/logger"
)

const (
    readDeadline  = 30 * time.Second
    maxReadBytes  = 4096
)

// banners maps a service tag (as found in the port table) to the bytes
// written to the client immediately after accept, matching what a real
// daemon on that port would greet with. Services absent from this table
// get no banner and simply wait for client input.
var banners = map[string][]byte{
    "mysql":         nil, // built by bannerFor: one-byte length + 0x0a + version + NUL
    "redis":         []byte("-ERR unknown command\r\n"),
    "mongodb":       nil,
    "smtp":          []byte("220 mail.example.com ESMTP\r\n"),
    "submission":    []byte("220 mail.example.com ESMTP\r\n"),
    "pop3":          []byte("+OK POP3 server ready\r\n"),
    "pop3s":         []byte("+OK POP3 server ready\r\n"),
    "imap":          []byte("* OK IMAP4rev1 Service Ready\r\n"),
    "imaps":         []byte("* OK IMAP4rev1 Service Ready\r\n"),
    "vnc":           []byte("RFB 003.008\n"),
    "vnc-http":      []byte("RFB 003.008\n"),
    "memcached":     []byte("VERSION 1.6.9\r\n"),
    "elasticsearch": []byte(`{"error":"unauthorized"}` + "\n"),
}

// Deps holds the collaborators every handler needs.
type Deps struct {
    Store        *store.WriteBuffer
    Bus          *eventbus.Bus
    GeoIP        *geoip.Resolver
    MySQLVersion string
}

// Start accepts connections on ln for the lifetime of ctx, handling each
// one in its own goroutine, tagging captured events with service/port.
func Start(ctx context.Context, ln net.Listener, service string, port int, deps Deps) {
    go func() {
        <-ctx.Done()
        ln.Close()
    }()

    for {
        conn, err := ln.Accept()
        if err != nil {
            select {
            case <-ctx.Done():
                return
            default:
            }
            if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
                logger.WithField("service", service).WithField("port", port).WithField("error", err.Error()).Warn("accept failed")
            }
            if opErr, ok := err.(*net.OpError); ok && !opErr.Temporary() {
                return
            }
            continue
        }
        metrics.Inc("listener_accepts_total", map[string]string{"service": service, "port": strconv.Itoa(port)})
        go handle(conn, service, port, deps)
    }
}

func handle(conn net.Conn, service string, port int, deps Deps) {
    defer conn.Close()

    ip, peerPortStr, _ := net.SplitHostPort(conn.RemoteAddr().String())

    if banner := bannerFor(service, deps.MySQLVersion); banner != nil {
        conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
        conn.Write(banner)
    }

    conn.SetReadDeadline(time.Now().Add(readDeadline))
    buf := make([]byte, maxReadBytes)
    n, _ := conn.Read(buf)
    payload := buf[:n]

    request := fmt.Sprintf("Connection from %s:%s to port %d", ip, peerPortStr, port)
    ev := capture.New(time.Now().UnixMilli(), ip, service).WithPort(port).WithRequest(request)
    if n > 0 {
        ev.WithPayload(bytes.Clone(payload))
    }

    if code, lat, lon, ok := deps.GeoIP.Lookup(ip); ok {
        ev.WithGeo(code, lat, lon)
    }

    deps.Store.Submit(ev)
    deps.Bus.Publish(ev)
    metrics.Inc("events_captured_total", map[string]string{"service": service})
}

// mysqlBanner builds the fixed-format greeting byte table (C6/§6): a
// one-byte length prefix, the protocol-version byte 0x0a, the server
// version string, and a NUL terminator.
func mysqlBanner(version string) []byte {
    body := append([]byte{0x0a}, []byte(version)...)
    body = append(body, 0x00)
    return append([]byte{byte(len(body))}, body...)
}

func bannerFor(service, mysqlVersion string) []byte {
    if service == "mysql" {
        return mysqlBanner(mysqlVersion)
    }
    b, ok := banners[service]
    if !ok {
        return nil
    }
    return b
}
