// Package geoip resolves client IPs to a coarse country/lat/lon triple
// using a local MaxMind GeoLite2-City database. Lookups are best-effort:
// a missing database file, a private/loopback address, or a miss in the
// database all degrade to "no location" rather than an error.
package geoip

import (
    "net"

    "github.com/oschwald/geoip2-golang"

    "github.com/hamzaKhattat/honeypot/pkg/logger"
)

// Resolver looks up geographic location for captured client IPs.
type Resolver struct {
    db *geoip2.Reader
}

// Open loads the MaxMind database at path. If the file is absent or
// unreadable, Open returns a Resolver whose Lookup always reports "no
// location" rather than an error — GeoIP is an enrichment, not a
// dependency the rest of the system can't run without.
func Open(path string) *Resolver {
    if path == "" {
        logger.Info("geoip database path not configured, running without geo enrichment")
        return &Resolver{}
    }

    db, err := geoip2.Open(path)
    if err != nil {
        logger.WithField("path", path).WithField("error", err.Error()).Warn("geoip database unavailable, running without geo enrichment")
        return &Resolver{}
    }

    return &Resolver{db: db}
}

// Close releases the underlying database handle, if one is open.
func (r *Resolver) Close() error {
    if r.db == nil {
        return nil
    }
    return r.db.Close()
}

// Lookup resolves ip to (countryCode, lat, lon, ok). ok is false for
// private/loopback/unspecified addresses, unparseable input, a database
// miss, or when no database was opened.
func (r *Resolver) Lookup(ip string) (countryCode string, lat, lon float64, ok bool) {
    if r.db == nil {
        return "", 0, 0, false
    }

    parsed := net.ParseIP(ip)
    if parsed == nil {
        return "", 0, 0, false
    }
    if isPrivate(parsed) {
        return "", 0, 0, false
    }

    city, err := r.db.City(parsed)
    if err != nil {
        return "", 0, 0, false
    }
    if city.Location.Latitude == 0 && city.Location.Longitude == 0 && city.Country.IsoCode == "" {
        return "", 0, 0, false
    }

    code := city.Country.IsoCode
    if code == "" {
        // Matches the original implementation's fallback for
        // addresses the city database locates but cannot name a
        // country for.
        code = "XX"
    }

    return code, city.Location.Latitude, city.Location.Longitude, true
}

func isPrivate(ip net.IP) bool {
    if ip.IsLoopback() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
        return true
    }
    for _, block := range privateBlocks {
        if block.Contains(ip) {
            return true
        }
    }
    return false
}

var privateBlocks = mustParseCIDRs(
    "10.0.0.0/8",
    "172.16.0.0/12",
    "192.168.0.0/16",
    "fc00::/7",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
    nets := make([]*net.IPNet, 0, len(cidrs))
    for _, c := range cidrs {
        _, n, err := net.ParseCIDR(c)
        if err != nil {
            panic(err)
        }
        nets = append(nets, n)
    }
    return nets
}
