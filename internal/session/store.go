// Package session owns the operator's bearer credential. The token is the
// only durable client state: it is persisted to a single file so a restart
// resumes the authenticated session, and removed on logout.
package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store holds the bearer token and its backing file.
type Store struct {
	mu    sync.Mutex
	path  string
	token string
}

// NewStore creates a store backed by the given token file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load restores the token from the backing file. A missing or unreadable
// file yields an empty token; no expiry check is performed client-side,
// a stale token simply fails on the next gateway call.
func (s *Store) Load() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.token = ""
		return ""
	}
	s.token = strings.TrimSpace(string(data))
	return s.token
}

// Set persists the token and updates the in-memory value.
func (s *Store) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return err
	}
	s.token = token
	return nil
}

// Clear removes the token from disk and memory.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Token returns the current in-memory token.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Authenticated reports whether a token is present.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}
