// Package telnet implements a Telnet honeypot: it negotiates just enough
// of RFC 854 to strip IAC option sequences from the stream, then runs a
// tiny login/password/shell state machine that accepts any credentials
// and simulates a handful of common commands.
package telnet

import (
    "bufio"
    "context"
    "fmt"
    "net"
    "strings"
    "time"

    "github.com/hamzaKhattat/honeypot/internal/capture"
    "github.com/hamzaKhattat/honeypot/internal/eventbus"
    "github.com/hamzaKhattat/honeypot/internal/geoip"
    "github.com/hamzaKhattat/honeypot/internal/store"
    "github.com/hamzaKhattat/honeypot/pkg/logger"
)

const (
    // RFC 854 Telnet command bytes.
    iac  = 255
    will = 251
    wont = 252
    do   = 253
    dont = 254
    sb   = 250
    se   = 240

    sessionTimeout = 120 * time.Second
    lineTimeout    = 30 * time.Second
    maxCommands    = 20
)

// Deps holds the collaborators the handler needs.
type Deps struct {
    Store *store.WriteBuffer
    Bus   *eventbus.Bus
    GeoIP *geoip.Resolver
}

// Start accepts connections on ln until ctx is cancelled.
func Start(ctx context.Context, ln net.Listener, port int, deps Deps) {
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
            logger.WithField("service", "telnet").WithField("error", err.Error()).Warn("accept failed")
            if opErr, ok := err.(*net.OpError); ok && !opErr.Temporary() {
                return
            }
            continue
        }
        go handleSession(conn, port, deps)
    }
}

func handleSession(conn net.Conn, port int, deps Deps) {
    defer conn.Close()

    ip, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
    conn.SetDeadline(time.Now().Add(sessionTimeout))

    r := bufio.NewReader(conn)

    conn.Write([]byte("\r\nUbuntu 20.04 LTS\r\n"))
    conn.Write([]byte("login: "))
    username, ok := readTelnetLine(r, conn)
    if !ok {
        record(deps, ip, port, username, "", nil)
        return
    }

    conn.Write([]byte("Password: "))
    password, ok := readTelnetLine(r, conn)
    if !ok {
        record(deps, ip, port, username, password, nil)
        return
    }

    conn.Write([]byte("\r\nWelcome to Ubuntu 20.04 LTS\r\n"))
    prompt := fmt.Sprintf("%s@ubuntu:~$ ", username)
    conn.Write([]byte(prompt))

    var commands []string
    for len(commands) < maxCommands {
        line, ok := readTelnetLine(r, conn)
        if !ok {
            break
        }
        if line == "" {
            conn.Write([]byte(prompt))
            continue
        }
        commands = append(commands, line)

        if shouldExit(line) {
            break
        }

        conn.Write([]byte(shellResponse(line, username)))
        conn.Write([]byte(prompt))
    }

    record(deps, ip, port, username, password, commands)
}

func shouldExit(line string) bool {
    switch strings.TrimSpace(line) {
    case "exit", "quit", "logout":
        return true
    }
    return false
}

func shellResponse(line, username string) string {
    cmd := strings.Fields(strings.TrimSpace(line))
    if len(cmd) == 0 {
        return ""
    }
    switch cmd[0] {
    case "pwd":
        return "/home/user\r\n"
    case "whoami":
        return username + "\r\n"
    case "id":
        return "uid=1000(" + username + ") gid=1000(" + username + ") groups=1000(" + username + ")\r\n"
    case "uname":
        return "Linux ubuntu 5.4.0-living-kernel x86_64 GNU/Linux\r\n"
    case "ls":
        return "Desktop  Documents  Downloads\r\n"
    case "cat", "cd":
        return ""
    default:
        return "bash: " + cmd[0] + ": command not found\r\n"
    }
}

func record(deps Deps, ip string, port int, username, password string, commands []string) {
    var request string
    if username != "" {
        request = fmt.Sprintf("Telnet login: %s:%s from %s", username, password, ip)
    } else {
        request = fmt.Sprintf("Telnet connection from %s (no login)", ip)
    }

    ev := capture.New(time.Now().UnixMilli(), ip, "telnet").WithPort(port).WithRequest(request)
    if username != "" {
        ev.WithCredentials(username, password)
    }
    if len(commands) > 0 {
        ev.WithPayload([]byte(strings.Join(commands, "\n")))
    }
    if code, lat, lon, ok := deps.GeoIP.Lookup(ip); ok {
        ev.WithGeo(code, lat, lon)
    }

    deps.Store.Submit(ev)
    deps.Bus.Publish(ev)
}

// readTelnetLine reads a CR/LF-terminated line from r, transparently
// stripping IAC option negotiation sequences (and their sub-negotiation
// bodies) from the stream. On a read error/timeout or EOF before a
// terminator, it returns whatever was buffered, with ok=true if that is
// non-empty and ok=false if it is empty (or if the stream ends inside an
// IAC sequence).
func readTelnetLine(r *bufio.Reader, conn net.Conn) (string, bool) {
    var line []byte
    inSubneg := false

    for {
        conn.SetReadDeadline(time.Now().Add(lineTimeout))
        b, err := r.ReadByte()
        if err != nil {
            return string(line), len(line) > 0
        }

        switch {
        case b == iac:
            next, err := r.ReadByte()
            if err != nil {
                return string(line), false
            }
            switch next {
            case will, wont, do, dont:
                // Option byte follows; consume and ignore it.
                if _, err := r.ReadByte(); err != nil {
                    return string(line), false
                }
            case sb:
                inSubneg = true
            case se:
                inSubneg = false
            case iac:
                // Escaped 0xFF: literal byte.
                line = append(line, 0xFF)
            }
        case inSubneg:
            // Discard sub-negotiation payload bytes.
        case b == '\r' || b == '\n':
            if len(line) == 0 {
                continue
            }
            return string(line), true
        case b >= 32 && b <= 126:
            line = append(line, b)
        }
    }
}
