// Package sshpot implements the SSH honeypot (C7): a full SSH server that
// accepts any credential offered (password, none, or public key), records
// the attempt, and — for clients that open a session channel — drives a
// fake interactive shell or a single synthesized exec response.
package sshpot

import (
    "fmt"
    "net"
    "strings"
    "sync"
    "sync/atomic"
    "time"

    "golang.org/x/crypto/ssh"

    "github.com/hamzaKhattat/honeypot/internal/capture"
    "github.com/hamzaKhattat/honeypot/internal/eventbus"
    "github.com/hamzaKhattat/honeypot/internal/geoip"
    "github.com/hamzaKhattat/honeypot/internal/store"
    "github.com/hamzaKhattat/honeypot/pkg/logger"
)

const (
    inactivityTimeout        = 300 * time.Second
    authRejectionTime        = 1 * time.Second
    authRejectionTimeInitial = 0 * time.Second
    maxChannelsPerConn       = 5
    maxCommandsPerChannel    = 100
    maxLineBuffer            = 4096
)

// Deps holds the collaborators the handler needs.
type Deps struct {
    Store       *store.WriteBuffer
    Bus         *eventbus.Bus
    GeoIP       *geoip.Resolver
    Banner      string
    HostKeyPath string
}

// Server wraps the persistent pieces of the SSH listener: the host key
// and server configuration, shared across every accepted connection.
type Server struct {
    config *ssh.ServerConfig
    deps   Deps
    port   int

    // authAttempts throttles repeated auth tries on one connection: the
    // first attempt is logged instantly, every subsequent one pays
    // authRejectionTime, mimicking a real sshd's brute-force backoff even
    // though this server's policy ultimately accepts every credential.
    authAttempts sync.Map // sessionID string -> *int32
}

// New constructs a Server, loading or generating the Ed25519 host key at
// deps.HostKeyPath.
func New(deps Deps, port int) (*Server, error) {
    signer, err := loadOrCreateHostKey(deps.HostKeyPath)
    if err != nil {
        return nil, err
    }

    s := &Server{deps: deps, port: port}

    cfg := &ssh.ServerConfig{
        ServerVersion: sanitizeBanner(deps.Banner),
        PasswordCallback: func(conn ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
            s.throttleAuth(conn)
            s.logAuth(conn, "password", conn.User(), string(password))
            return &ssh.Permissions{}, nil
        },
        PublicKeyCallback: func(conn ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
            // Called for both the unsigned "publickey_offered" probe and
            // the signed attempt that follows it; accepting unconditionally
            // here covers both per spec §4.6.
            s.throttleAuth(conn)
            s.logAuth(conn, "publickey", conn.User(), ssh.FingerprintSHA256(key))
            return &ssh.Permissions{}, nil
        },
        NoClientAuthCallback: func(conn ssh.ConnMetadata) (*ssh.Permissions, error) {
            s.throttleAuth(conn)
            s.logAuth(conn, "none", conn.User(), "")
            return &ssh.Permissions{}, nil
        },
        AuthLogCallback: func(conn ssh.ConnMetadata, method string, err error) {},
    }
    cfg.AddHostKey(signer)

    s.config = cfg
    return s, nil
}

func sanitizeBanner(banner string) string {
    // golang.org/x/crypto/ssh requires the version string start with
    // "SSH-2.0-" and contain no spaces.
    if !strings.HasPrefix(banner, "SSH-2.0-") {
        return "SSH-2.0-OpenSSH_8.2p1"
    }
    return strings.ReplaceAll(banner, " ", "_")
}

func (s *Server) throttleAuth(conn ssh.ConnMetadata) {
    key := string(conn.SessionID())
    v, _ := s.authAttempts.LoadOrStore(key, new(int32))
    counter := v.(*int32)
    if atomic.AddInt32(counter, 1) > 1 {
        time.Sleep(authRejectionTime)
    } else {
        time.Sleep(authRejectionTimeInitial)
    }
    time.AfterFunc(2*time.Minute, func() { s.authAttempts.Delete(key) })
}

// Serve accepts connections on ln until it is closed (the caller owns
// listener lifetime and cancellation via the supervisor).
func (s *Server) Serve(ln net.Listener) {
    for {
        conn, err := ln.Accept()
        if err != nil {
            return
        }
        go s.handleConn(conn)
    }
}

func (s *Server) handleConn(nc net.Conn) {
    defer nc.Close()
    nc.SetDeadline(time.Now().Add(inactivityTimeout))

    sconn, chans, reqs, err := ssh.NewServerConn(nc, s.config)
    if err != nil {
        return
    }
    defer sconn.Close()

    go ssh.DiscardRequests(reqs)

    var channelCount int32
    for newChannel := range chans {
        if newChannel.ChannelType() != "session" {
            newChannel.Reject(ssh.UnknownChannelType, "unsupported channel type")
            continue
        }
        if atomic.AddInt32(&channelCount, 1) > maxChannelsPerConn {
            newChannel.Reject(ssh.ResourceShortage, "too many channels")
            continue
        }

        channel, requests, err := newChannel.Accept()
        if err != nil {
            continue
        }
        ip, _, _ := net.SplitHostPort(sconn.RemoteAddr().String())
        go s.handleSession(channel, requests, ip, sconn.User())
    }
}

// handleSession drives one session channel's request stream: grant
// pty-req/env/window-change, then dispatch to the interactive shell or a
// one-shot exec depending on which session type the client asks for.
func (s *Server) handleSession(channel ssh.Channel, requests <-chan *ssh.Request, ip, username string) {
    defer channel.Close()

    sess := &shellSession{
        ip:       ip,
        username: username,
        channel:  channel,
        port:     s.port,
        deps:     s.deps,
    }

    for req := range requests {
        switch req.Type {
        case "pty-req":
            sess.ptyGranted = true
            req.Reply(true, nil)
        case "shell":
            req.Reply(true, nil)
            sess.runInteractive()
            sess.finalize()
            return
        case "exec":
            req.Reply(true, nil)
            sess.runExec(parseExecPayload(req.Payload))
            sess.finalize()
            return
        case "env", "window-change":
            req.Reply(true, nil)
        default:
            req.Reply(false, nil)
        }
    }

    sess.finalize()
}

func (s *Server) logAuth(conn ssh.ConnMetadata, method, username, secret string) {
    ip, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
    size := uint32(len(username) + len(secret) + 50)

    ev := capture.New(time.Now().UnixMilli(), ip, "ssh").WithPort(s.port).WithRequestSize(size)

    switch method {
    case "password":
        ev.WithRequest(fmt.Sprintf("SSH auth: %s:%s from %s", username, secret, ip)).WithCredentials(username, secret)
    case "none":
        ev.WithRequest(fmt.Sprintf("SSH auth: %s (no password) from %s", username, ip)).WithCredentials(username, "")
    case "publickey":
        ev.WithRequest(fmt.Sprintf("SSH auth: %s@%s from %s", username, secret, ip)).WithCredentials(username, secret)
    }

    if code, lat, lon, ok := s.deps.GeoIP.Lookup(ip); ok {
        ev.WithGeo(code, lat, lon)
    }

    s.deps.Store.Submit(ev)
    s.deps.Bus.Publish(ev)

    logger.WithField("ip", ip).WithField("method", method).WithField("username", username).Debug("ssh auth captured")
}
