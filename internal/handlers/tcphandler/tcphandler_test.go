package tcphandler

import "testing"

func TestBannerForMySQL(t *testing.T) {
    got := bannerFor("mysql", "8.0.28")
    want := append([]byte{byte(1 + len("8.0.28") + 1), 0x0a}, append([]byte("8.0.28"), 0x00)...)
    if string(got) != string(want) {
        t.Fatalf("bannerFor(mysql) = %v, want %v", got, want)
    }
}

func TestBannerForKnownServices(t *testing.T) {
    cases := []string{"redis", "smtp", "pop3", "imap", "vnc", "memcached", "elasticsearch"}
    for _, svc := range cases {
        got := bannerFor(svc, "8.0.28")
        if got == nil {
            t.Errorf("bannerFor(%q) = nil, want a banner", svc)
        }
    }
}

func TestBannerForUnknownService(t *testing.T) {
    if got := bannerFor("some-made-up-service", "8.0.28"); got != nil {
        t.Fatalf("bannerFor(unknown) = %v, want nil", got)
    }
}

func TestMySQLBannerFormat(t *testing.T) {
    b := mysqlBanner("5.7.0")
    if len(b) == 0 {
        t.Fatal("mysqlBanner returned empty slice")
    }
    if int(b[0]) != len(b)-1 {
        t.Fatalf("length prefix = %d, want %d", b[0], len(b)-1)
    }
    if b[1] != 0x0a {
        t.Fatalf("protocol version byte = %#x, want 0x0a", b[1])
    }
    if b[len(b)-1] != 0x00 {
        t.Fatalf("last byte = %#x, want NUL terminator", b[len(b)-1])
    }
    if string(b[2:len(b)-1]) != "5.7.0" {
        t.Fatalf("version string = %q, want %q", b[2:len(b)-1], "5.7.0")
    }
}
