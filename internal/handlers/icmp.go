package handlers

import (
    "context"
    "time"

    "golang.org/x/net/icmp"
    "golang.org/x/net/ipv4"

    "github.com/hamzaKhattat/honeypot/internal/capture"
    "github.com/hamzaKhattat/honeypot/pkg/logger"
)

// startICMP listens for inbound ICMP echo requests and records each as an
// event with port=0. Opening a raw ICMP socket requires elevated
// privileges; when that fails, the task logs once and blocks until ctx is
// cancelled rather than retrying in a crash loop, matching the rest of the fleet's
// "this listener didn't come up" degrade path.
func startICMP(ctx context.Context, deps Deps) {
    conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
    if err != nil {
        logger.WithField("error", err.Error()).Warn("icmp capture disabled, insufficient privileges")
        <-ctx.Done()
        return
    }
    defer conn.Close()

    go func() {
        <-ctx.Done()
        conn.Close()
    }()

    buf := make([]byte, 1500)
    for {
        n, peer, err := conn.ReadFrom(buf)
        if err != nil {
            select {
            case <-ctx.Done():
                return
            default:
                return
            }
        }

        msg, err := icmp.ParseMessage(1 /* IANA protocol number for ICMP over IPv4 */, buf[:n])
        if err != nil || msg.Type != ipv4.ICMPTypeEcho {
            continue
        }

        ip := peer.String()
        ev := capture.New(time.Now().UnixMilli(), ip, "icmp").WithPort(0).
            WithRequest("ICMP echo request from " + ip)
        if code, lat, lon, ok := deps.GeoIP.Lookup(ip); ok {
            ev.WithGeo(code, lat, lon)
        }

        deps.Store.Submit(ev)
        deps.Bus.Publish(ev)
    }
}
