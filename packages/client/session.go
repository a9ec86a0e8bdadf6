package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// SessionState is what a SessionStore persists between runs.
type SessionState struct {
	Username     string    `yaml:"username"`
	Token        string    `yaml:"token"`
	RefreshToken string    `yaml:"refresh_token"`
	ExpiresAt    time.Time `yaml:"expires_at"`
}

// SessionStore persists a session. Load returns a nil state when nothing is
// stored.
type SessionStore interface {
	Load() (*SessionState, error)
	Save(state *SessionState) error
	Clear() error
}

type MemoryStore struct {
	mu    sync.Mutex
	state *SessionState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, nil
	}
	state := *m.state
	return &state, nil
}

func (m *MemoryStore) Save(state *SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *state
	m.state = &copied
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
	return nil
}

// FileStore keeps the session in a YAML file readable only by its owner.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load() (*SessionState, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	var state SessionState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	return &state, nil
}

func (f *FileStore) Save(state *SessionState) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// Session holds the bearer token of the signed-in operator. It is safe for
// concurrent use; every change is written through to its store.
type Session struct {
	mu    sync.RWMutex
	store SessionStore
	state SessionState
	now   func() time.Time
}

func NewSession(store SessionStore) (*Session, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	s := &Session{store: store, now: time.Now}
	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	if state != nil {
		s.state = *state
	}
	return s, nil
}

func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Session) Set(state SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(&state); err != nil {
		return err
	}
	s.state = state
	return nil
}

func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionState{}
	return s.store.Clear()
}

func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the bearer token, or "" when signed out or expired.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.validLocked() {
		return ""
	}
	return s.state.Token
}

func (s *Session) Valid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validLocked()
}

func (s *Session) validLocked() bool {
	return s.state.Token != "" && s.now().Before(s.state.ExpiresAt)
}

// CheckExpiry clears an expired session and reports whether it did.
func (s *Session) CheckExpiry() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Token == "" || s.validLocked() {
		return false, nil
	}
	s.state = SessionState{}
	return true, s.store.Clear()
}

// Watch returns a poller that checks the expiry every interval and calls
// onExpire once the session has been logged out.
func (s *Session) Watch(interval time.Duration, onExpire func()) *Poller {
	return NewPoller(interval, func(ctx context.Context) error {
		expired, err := s.CheckExpiry()
		if err != nil {
			return err
		}
		if expired && onExpire != nil {
			onExpire()
		}
		return nil
	})
}
