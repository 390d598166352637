package sshpot

import (
    "encoding/binary"
    "fmt"
    "strings"
    "time"

    "golang.org/x/crypto/ssh"

    "github.com/hamzaKhattat/honeypot/internal/capture"
)

const shellPrompt = "root@honeypot:~# "

// shellSession holds the per-channel state: the peer and user it belongs
// to, the accumulated command history, and whether a "pty-req" has been
// granted on this channel. The line buffer lives in runInteractive.
type shellSession struct {
    ip         string
    username   string
    channel    ssh.Channel
    port       int
    deps       Deps
    ptyGranted bool

    commands []string
}

// runInteractive emits the login banner and prompt, then reads the
// channel byte by byte so backspace, Ctrl-C, and Ctrl-D behave like a
// real terminal driver would, finalizing a command on CR or LF.
func (s *shellSession) runInteractive() {
    fmt.Fprint(s.channel, loginBanner(s.ip))
    fmt.Fprint(s.channel, shellPrompt)

    var line []byte
    buf := make([]byte, 1)

    for len(s.commands) < maxCommandsPerChannel {
        n, err := s.channel.Read(buf)
        if err != nil || n == 0 {
            return
        }
        b := buf[0]

        switch {
        case b == 0x7f || b == 0x08: // backspace / delete
            if len(line) > 0 {
                line = line[:len(line)-1]
                s.channel.Write([]byte("\b \b"))
            }

        case b == 0x03: // Ctrl-C
            line = line[:0]
            fmt.Fprint(s.channel, "^C\r\n")
            fmt.Fprint(s.channel, shellPrompt)

        case b == 0x04: // Ctrl-D
            if len(line) == 0 {
                return
            }

        case b == '\r' || b == '\n':
            s.channel.Write([]byte("\r\n"))
            cmd := strings.TrimSpace(string(line))
            line = line[:0]

            if cmd == "" {
                fmt.Fprint(s.channel, shellPrompt)
                continue
            }

            s.commands = append(s.commands, cmd)
            if isExitCommand(cmd) {
                return
            }

            fmt.Fprint(s.channel, shellResponse(cmd))
            fmt.Fprint(s.channel, shellPrompt)

        case b >= 32 && b <= 126:
            if len(line) < maxLineBuffer {
                line = append(line, b)
                s.channel.Write([]byte{b})
            }
        }
    }
}

// runExec treats the exec payload as a single command: log it, write its
// synthesized output, report exit status 0, and let the caller close the
// channel — there is no prompt or further interaction on an exec channel.
func (s *shellSession) runExec(cmd string) {
    cmd = strings.TrimSpace(cmd)
    if cmd != "" {
        s.commands = append(s.commands, cmd)
    }
    fmt.Fprint(s.channel, shellResponse(cmd))

    type exitStatusMsg struct {
        Status uint32
    }
    s.channel.SendRequest("exit-status", false, ssh.Marshal(exitStatusMsg{0}))
}

// finalize persists the accumulated command history as a single event,
// matching spec §4.6's session-close behavior. A session with no
// commands (auth-only, or a channel that never got a shell/exec request)
// emits nothing here — the auth attempt was already logged separately.
func (s *shellSession) finalize() {
    if len(s.commands) == 0 {
        return
    }

    payload := strings.Join(s.commands, "\n")
    ev := capture.New(time.Now().UnixMilli(), s.ip, "ssh").WithPort(s.port).
        WithRequest(fmt.Sprintf("SSH shell commands from %s (user: %s)", s.ip, s.username)).
        WithPayload([]byte(payload)).
        WithRequestSize(uint32(len(payload)))

    if code, lat, lon, ok := s.deps.GeoIP.Lookup(s.ip); ok {
        ev.WithGeo(code, lat, lon)
    }

    s.deps.Store.Submit(ev)
    s.deps.Bus.Publish(ev)
}

func isExitCommand(line string) bool {
    switch strings.TrimSpace(line) {
    case "exit", "quit", "logout":
        return true
    }
    return false
}

// parseExecPayload decodes an SSH "exec" request payload, which is a
// single wire string: a 4-byte big-endian length prefix followed by the
// command bytes (RFC 4254 §6.5).
func parseExecPayload(p []byte) string {
    if len(p) < 4 {
        return ""
    }
    n := binary.BigEndian.Uint32(p[:4])
    if int(n) > len(p)-4 {
        n = uint32(len(p) - 4)
    }
    return string(p[4 : 4+n])
}

func loginBanner(ip string) string {
    now := time.Now().UTC().Format("Mon Jan  2 15:04:05 2006")
    return "Welcome to Ubuntu 20.04.6 LTS (GNU/Linux 5.4.0-91-generic x86_64)\r\n\r\n" +
        " * Documentation:  https://help.ubuntu.com\r\n" +
        " * Management:     https://landscape.canonical.com\r\n" +
        " * Support:        https://ubuntu.com/advantage\r\n\r\n" +
        "Last login: " + now + " from " + ip + "\r\n"
}
