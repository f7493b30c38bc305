package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const redacted = "[redacted]"

// Credential is the opaque session token. Its string forms are redacted so it
// can be passed to loggers and error messages without leaking.
type Credential struct {
	token string
}

// NewCredential wraps a raw session token. A leading "session=" (as copied
// from a browser cookie) is stripped.
func NewCredential(token string) Credential {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "session=")
	return Credential{token: token}
}

// Value returns the raw token. Only the HTTP layer should call it.
func (c Credential) Value() string {
	return c.token
}

// IsZero reports whether no token is present.
func (c Credential) IsZero() bool {
	return c.token == ""
}

func (c Credential) String() string {
	if c.IsZero() {
		return "<none>"
	}
	return redacted
}

func (c Credential) GoString() string {
	return "config.Credential{" + c.String() + "}"
}

// MarshalText keeps encoders (zap.Any, json) from seeing the token.
func (c Credential) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// LoadCredential resolves the session token: $AOC_SESSION first, then the
// session file. It performs no network access.
func (c *Config) LoadCredential() error {
	if tok := os.Getenv(EnvSession); strings.TrimSpace(tok) != "" {
		c.Credential = NewCredential(tok)
		return nil
	}

	data, err := os.ReadFile(c.SessionFile)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: set %s or run `aoc login <token>` to create %s",
			ErrMissingCredential, EnvSession, c.SessionFile)
	}
	if err != nil {
		return fmt.Errorf("%w: read session file %s: %v", ErrUnreadableConfig, c.SessionFile, err)
	}

	cred := NewCredential(string(data))
	if cred.IsZero() {
		return fmt.Errorf("%w: session file %s is empty; run `aoc login <token>`",
			ErrMissingCredential, c.SessionFile)
	}
	c.Credential = cred
	return nil
}

// SaveCredential writes token to the session file, readable only by the owner.
func (c *Config) SaveCredential(token string) error {
	cred := NewCredential(token)
	if cred.IsZero() {
		return fmt.Errorf("%w: refusing to store an empty token", ErrMissingCredential)
	}

	if err := os.MkdirAll(filepath.Dir(c.SessionFile), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(c.SessionFile, []byte(cred.Value()+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(c.SessionFile, 0600); err != nil {
		return fmt.Errorf("failed to restrict session file: %w", err)
	}

	c.Credential = cred
	return nil
}
