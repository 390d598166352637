// Package capture defines the attack event record shared by every
// protocol handler, the write buffer, the event bus, and the stats engine.
package capture

import "encoding/hex"

// Event is a single captured interaction with a honeypot listener.
//
// CountryCode/Latitude/Longitude travel together: either all three are set
// or none are. Username/Password travel together as a pair, except
// Password may be the empty string when a client offers a blank password.
type Event struct {
    ID          int64   `json:"id,omitempty"`
    Timestamp   int64   `json:"timestamp"`
    IP          string  `json:"ip"`
    CountryCode *string `json:"country_code,omitempty"`
    Latitude    *float64 `json:"latitude,omitempty"`
    Longitude   *float64 `json:"longitude,omitempty"`
    Service     string  `json:"service"`
    Port        *int    `json:"port,omitempty"`
    Request     *string `json:"request,omitempty"`
    Payload     *string `json:"payload,omitempty"`
    HTTPPath    *string `json:"http_path,omitempty"`
    Username    *string `json:"username,omitempty"`
    Password    *string `json:"password,omitempty"`
    UserAgent   *string `json:"user_agent,omitempty"`
    RequestSize uint32  `json:"request_size"`
}

// New builds the mandatory fields of an Event. timestampMs is the caller's
// capture time in Unix milliseconds (handlers pass in time.Now().UnixMilli()).
func New(timestampMs int64, ip, service string) *Event {
    return &Event{
        Timestamp: timestampMs,
        IP:        ip,
        Service:   service,
    }
}

// WithPort sets the listener port.
func (e *Event) WithPort(port int) *Event {
    e.Port = &port
    return e
}

// WithRequest sets the free-form request/transcript summary.
func (e *Event) WithRequest(request string) *Event {
    e.Request = &request
    return e
}

// WithCredentials attaches a username/password pair. Password may be empty.
func (e *Event) WithCredentials(username, password string) *Event {
    e.Username = &username
    e.Password = &password
    return e
}

// WithPayload hex-encodes raw bytes captured from the wire.
func (e *Event) WithPayload(raw []byte) *Event {
    encoded := hex.EncodeToString(raw)
    e.Payload = &encoded
    return e
}

// WithHTTPPath sets the HTTP request path for HTTP-originated events.
func (e *Event) WithHTTPPath(path string) *Event {
    e.HTTPPath = &path
    return e
}

// WithUserAgent sets the HTTP User-Agent header value.
func (e *Event) WithUserAgent(ua string) *Event {
    if ua == "" {
        return e
    }
    e.UserAgent = &ua
    return e
}

// WithRequestSize sets the request size in bytes.
func (e *Event) WithRequestSize(size uint32) *Event {
    e.RequestSize = size
    return e
}

// WithGeo attaches a resolved country/lat/lon triple. Callers must not call
// this with a partial triple; geoip.Resolver.Lookup already enforces that.
func (e *Event) WithGeo(countryCode string, lat, lon float64) *Event {
    e.CountryCode = &countryCode
    e.Latitude = &lat
    e.Longitude = &lon
    return e
}
