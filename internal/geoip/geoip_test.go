package geoip

import (
    "net"
    "testing"
)

func TestOpenMissingDatabaseDegradesSafely(t *testing.T) {
    r := Open("/nonexistent/path/GeoLite2-City.mmdb")
    defer r.Close()

    code, lat, lon, ok := r.Lookup("8.8.8.8")
    if ok {
        t.Fatalf("Lookup() ok = true with no database, want false")
    }
    if code != "" || lat != 0 || lon != 0 {
        t.Fatalf("Lookup() returned non-zero values with no database: %q %f %f", code, lat, lon)
    }
}

func TestOpenEmptyPathDegradesSafely(t *testing.T) {
    r := Open("")
    _, _, _, ok := r.Lookup("1.1.1.1")
    if ok {
        t.Fatalf("Lookup() ok = true with empty path, want false")
    }
}

func TestIsPrivateCoversRFC1918AndLoopback(t *testing.T) {
    cases := []string{"127.0.0.1", "10.0.0.1", "172.16.0.1", "192.168.1.1", "0.0.0.0"}
    for _, ip := range cases {
        if !isPrivate(net.ParseIP(ip)) {
            t.Fatalf("isPrivate(%q) = false, want true", ip)
        }
    }
}
