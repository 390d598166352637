// Package ftp implements a minimal FTP honeypot: a line-oriented command
// loop that accepts any credentials, answers a handful of common verbs
// with plausible reply codes, and records the transcript.
package ftp

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

const sessionTimeout = 60 * time.Second

// Deps holds the collaborators the handler needs.
type Deps struct {
    Store  *store.WriteBuffer
    Bus    *eventbus.Bus
    GeoIP  *geoip.Resolver
    Banner string
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
            logger.WithField("service", "ftp").WithField("error", err.Error()).Warn("accept failed")
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

    conn.Write([]byte(deps.Banner + "\r\n"))

    r := bufio.NewReader(conn)
    var username, password string
    var commands []string

loop:
    for {
        line, err := r.ReadString('\n')
        line = strings.TrimRight(line, "\r\n")
        if line != "" {
            commands = append(commands, line)
        }
        if err != nil {
            break
        }

        verb, arg := splitCommand(line)
        switch strings.ToUpper(verb) {
        case "USER":
            username = arg
            conn.Write([]byte("331 Please specify the password.\r\n"))
        case "PASS":
            password = arg
            conn.Write([]byte("230 Login successful.\r\n"))
            break loop
        case "QUIT":
            conn.Write([]byte("221 Goodbye.\r\n"))
            break loop
        case "SYST":
            conn.Write([]byte("215 UNIX Type: L8\r\n"))
        case "PWD":
            conn.Write([]byte("257 \"/\" is the current directory\r\n"))
        case "LIST", "NLST":
            conn.Write([]byte("150 Here comes the directory listing.\r\n"))
            conn.Write([]byte("226 Directory send OK.\r\n"))
        case "TYPE":
            conn.Write([]byte("200 Switching to Binary mode.\r\n"))
        case "PASV":
            conn.Write([]byte("227 Entering Passive Mode (127,0,0,1,100,100).\r\n"))
        default:
            conn.Write([]byte("502 Command not implemented.\r\n"))
        }
    }

    record(deps, ip, port, username, password, commands)
}

func splitCommand(line string) (verb, arg string) {
    parts := strings.SplitN(strings.TrimSpace(line), " ", 2)
    if len(parts) == 0 {
        return "", ""
    }
    if len(parts) == 1 {
        return parts[0], ""
    }
    return parts[0], parts[1]
}

func record(deps Deps, ip string, port int, username, password string, commands []string) {
    var request string
    if username != "" {
        request = fmt.Sprintf("FTP login: %s:%s from %s", username, password, ip)
    } else {
        request = fmt.Sprintf("FTP connection from %s (no login)", ip)
    }

    ev := capture.New(time.Now().UnixMilli(), ip, "ftp").WithPort(port).WithRequest(request)
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
