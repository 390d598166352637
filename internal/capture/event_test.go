package capture

import "testing"

func TestNewSetsMandatoryFields(t *testing.T) {
    e := New(1000, "1.2.3.4", "ssh")
    if e.Timestamp != 1000 {
        t.Fatalf("Timestamp = %d, want 1000", e.Timestamp)
    }
    if e.IP != "1.2.3.4" {
        t.Fatalf("IP = %q, want 1.2.3.4", e.IP)
    }
    if e.Service != "ssh" {
        t.Fatalf("Service = %q, want ssh", e.Service)
    }
    if e.Port != nil {
        t.Fatalf("Port = %v, want nil", e.Port)
    }
}

func TestWithCredentialsAllowsEmptyPassword(t *testing.T) {
    e := New(0, "1.2.3.4", "ftp").WithCredentials("root", "")
    if e.Username == nil || *e.Username != "root" {
        t.Fatalf("Username = %v, want root", e.Username)
    }
    if e.Password == nil || *e.Password != "" {
        t.Fatalf("Password = %v, want empty string (not nil)", e.Password)
    }
}

func TestWithGeoSetsAllThree(t *testing.T) {
    e := New(0, "1.2.3.4", "http").WithGeo("US", 37.5, -122.3)
    if e.CountryCode == nil || *e.CountryCode != "US" {
        t.Fatalf("CountryCode = %v, want US", e.CountryCode)
    }
    if e.Latitude == nil || *e.Latitude != 37.5 {
        t.Fatalf("Latitude = %v, want 37.5", e.Latitude)
    }
    if e.Longitude == nil || *e.Longitude != -122.3 {
        t.Fatalf("Longitude = %v, want -122.3", e.Longitude)
    }
}

func TestWithPayloadHexEncodes(t *testing.T) {
    e := New(0, "1.2.3.4", "tcp").WithPayload([]byte{0xDE, 0xAD, 0xBE, 0xEF})
    if e.Payload == nil || *e.Payload != "deadbeef" {
        t.Fatalf("Payload = %v, want deadbeef", e.Payload)
    }
}

func TestWithUserAgentIgnoresEmpty(t *testing.T) {
    e := New(0, "1.2.3.4", "http").WithUserAgent("")
    if e.UserAgent != nil {
        t.Fatalf("UserAgent = %v, want nil for empty input", e.UserAgent)
    }
}
