// Package session scopes form registries to screens. Each open screen owns
// exactly one registry; closing the screen tears that registry down so no
// registration or subscription outlives the view that made it.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zjrosen/formtree/internal/log"
	"github.com/zjrosen/formtree/internal/registry"
)

// Session errors
var (
	ErrSessionExists   = errors.New("session already open")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidScreenID = errors.New("screen id cannot be empty")
)

// Session pairs a screen with its registry.
type Session struct {
	ScreenID string
	Registry *registry.Registry
	OpenedAt time.Time
}

// Manager creates and tears down per-screen registries. Manager is safe for
// concurrent use; the registries it hands out are not.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     []registry.Option
}

// NewManager returns a Manager whose registries are built with opts.
// WithSessionID is appended per session and overrides any ID in opts.
func NewManager(opts ...registry.Option) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		opts:     opts,
	}
}

// Open starts a session for screenID with a fresh registry.
func (m *Manager) Open(screenID string) (*Session, error) {
	if screenID == "" {
		return nil, ErrInvalidScreenID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[screenID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, screenID)
	}

	opts := append(append([]registry.Option(nil), m.opts...), registry.WithSessionID(screenID))
	s := &Session{
		ScreenID: screenID,
		Registry: registry.New(opts...),
		OpenedAt: time.Now(),
	}
	m.sessions[screenID] = s

	log.Info(log.CatSession, "Session opened", "screen", screenID)
	return s, nil
}

// Get returns the open session for screenID.
func (m *Manager) Get(screenID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[screenID]
	return s, ok
}

// Close ends the session for screenID and closes its registry.
func (m *Manager) Close(screenID string) error {
	m.mu.Lock()
	s, ok := m.sessions[screenID]
	if ok {
		delete(m.sessions, screenID)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, screenID)
	}

	s.Registry.Close()
	log.Info(log.CatSession, "Session closed",
		"screen", screenID,
		"lifetime", time.Since(s.OpenedAt).Round(time.Millisecond))
	return nil
}

// Reopen closes the session for screenID if one is open and starts a new
// one, e.g. when the user navigates back into a screen.
func (m *Manager) Reopen(screenID string) (*Session, error) {
	if err := m.Close(screenID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}
	return m.Open(screenID)
}

// CloseAll ends every open session.
func (m *Manager) CloseAll() {
	for _, id := range m.List() {
		_ = m.Close(id)
	}
}

// List returns the open screen IDs sorted alphabetically.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
