package sshpot

import (
    "crypto/ed25519"
    "crypto/rand"
    "encoding/pem"
    "os"
    "path/filepath"

    "golang.org/x/crypto/ssh"

    "github.com/hamzaKhattat/honeypot/pkg/logger"
)

// loadOrCreateHostKey loads an Ed25519 host key from path, generating and
// persisting a new one if absent. Any file-system failure falls back to
// an in-memory key so the listener can still start.
func loadOrCreateHostKey(path string) (ssh.Signer, error) {
    if path != "" {
        if data, err := os.ReadFile(path); err == nil {
            signer, err := ssh.ParsePrivateKey(data)
            if err == nil {
                return signer, nil
            }
            logger.WithField("path", path).WithField("error", err.Error()).Warn("existing ssh host key unreadable, regenerating")
        }
    }

    _, priv, err := ed25519.GenerateKey(rand.Reader)
    if err != nil {
        return nil, err
    }

    signer, err := ssh.NewSignerFromSigner(priv)
    if err != nil {
        return nil, err
    }

    if path != "" {
        if err := persistHostKey(path, priv); err != nil {
            logger.WithField("path", path).WithField("error", err.Error()).Warn("could not persist ssh host key, using in-memory key")
        }
    }

    return signer, nil
}

func persistHostKey(path string, priv ed25519.PrivateKey) error {
    if dir := filepath.Dir(path); dir != "." {
        if err := os.MkdirAll(dir, 0o700); err != nil {
            return err
        }
    }

    block, err := ssh.MarshalPrivateKey(priv, "honeypot host key")
    if err != nil {
        return err
    }

    return os.WriteFile(path, pem.EncodeToMemory(block), 0o600)
}
