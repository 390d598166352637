package store

import "encoding/json"

// DayRollup is one row of stats_daily: a pre-aggregated summary of all
// requests captured during the UTC day starting at DayBucket (Unix ms
// midnight). Built by AggregateDay and read back by the stats query
// stack to avoid re-scanning the requests table for historical days.
type DayRollup struct {
    DayBucket         int64
    TotalRequests     int64
    TotalBytes        int64
    ServiceCounts     map[string]int64
    CountryCounts     map[string]int64
    PathCounts        map[string]int64
    CredentialCounts  []CredentialCount
    LocationCounts    []LocationCount
    IPRequestCounts   map[string]int64
    IPBytesCounts     map[string]int64
}

// CredentialCount is one {username,password,count} entry in a top-N
// credential table.
type CredentialCount struct {
    Username string `json:"u"`
    Password string `json:"p"`
    Count    int64  `json:"c"`
}

// LocationCount is one {lat,lon,count} entry bucketed to 0.1° resolution.
type LocationCount struct {
    Lat   float64 `json:"lat"`
    Lon   float64 `json:"lon"`
    Count int64   `json:"c"`
}

func marshalCountMap(m map[string]int64) (string, error) {
    if len(m) == 0 {
        return "{}", nil
    }
    b, err := json.Marshal(m)
    return string(b), err
}

func unmarshalCountMap(s string) map[string]int64 {
    m := make(map[string]int64)
    if s == "" {
        return m
    }
    _ = json.Unmarshal([]byte(s), &m)
    return m
}

func marshalCredentials(c []CredentialCount) (string, error) {
    if len(c) == 0 {
        return "[]", nil
    }
    b, err := json.Marshal(c)
    return string(b), err
}

func unmarshalCredentials(s string) []CredentialCount {
    var c []CredentialCount
    if s == "" {
        return c
    }
    _ = json.Unmarshal([]byte(s), &c)
    return c
}

func marshalLocations(l []LocationCount) (string, error) {
    if len(l) == 0 {
        return "[]", nil
    }
    b, err := json.Marshal(l)
    return string(b), err
}

func unmarshalLocations(s string) []LocationCount {
    var l []LocationCount
    if s == "" {
        return l
    }
    _ = json.Unmarshal([]byte(s), &l)
    return l
}

func mergeCountMaps(dst, src map[string]int64) {
    for k, v := range src {
        dst[k] += v
    }
}
