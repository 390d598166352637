package telnet

import (
    "bufio"
    "net"
    "testing"
    "time"
)

// pipeConn wraps one end of a net.Pipe with a no-op deadline so
// readTelnetLine's SetReadDeadline calls don't need a real connection.
type pipeConn struct {
    net.Conn
}

func (p pipeConn) SetReadDeadline(time.Time) error { return nil }

func TestReadTelnetLineStripsIACNegotiation(t *testing.T) {
    client, server := net.Pipe()
    defer client.Close()
    defer server.Close()

    go func() {
        // IAC DO ECHO, then the literal line, then CRLF.
        client.Write([]byte{iac, do, 1})
        client.Write([]byte("root"))
        client.Write([]byte{'\r', '\n'})
    }()

    r := bufio.NewReader(server)
    line, ok := readTelnetLine(r, pipeConn{server})
    if !ok {
        t.Fatal("readTelnetLine() ok = false, want true")
    }
    if line != "root" {
        t.Fatalf("line = %q, want %q", line, "root")
    }
}

func TestReadTelnetLineUnescapesDoubledIAC(t *testing.T) {
    client, server := net.Pipe()
    defer client.Close()
    defer server.Close()

    go func() {
        client.Write([]byte{'a', iac, iac, 'b', '\n'})
    }()

    r := bufio.NewReader(server)
    line, ok := readTelnetLine(r, pipeConn{server})
    if !ok {
        t.Fatal("readTelnetLine() ok = false, want true")
    }
    if line != "a\xffb" {
        t.Fatalf("line = %q, want literal 0xFF embedded", line)
    }
}

func TestShellResponseKnownCommands(t *testing.T) {
    cases := map[string]string{
        "pwd":    "/home/user\r\n",
        "whoami": "bob\r\n",
        "cd /tmp": "",
    }
    for cmd, want := range cases {
        got := shellResponse(cmd, "bob")
        if got != want {
            t.Errorf("shellResponse(%q) = %q, want %q", cmd, got, want)
        }
    }
}

func TestShellResponseUnknownCommand(t *testing.T) {
    got := shellResponse("rm -rf /", "bob")
    want := "bash: rm: command not found\r\n"
    if got != want {
        t.Fatalf("shellResponse() = %q, want %q", got, want)
    }
}

func TestShouldExit(t *testing.T) {
    for _, cmd := range []string{"exit", "quit", "logout"} {
        if !shouldExit(cmd) {
            t.Errorf("shouldExit(%q) = false, want true", cmd)
        }
    }
    if shouldExit("ls") {
        t.Error("shouldExit(\"ls\") = true, want false")
    }
}
