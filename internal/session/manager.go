package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager is the registry of live sessions.
type Manager struct {
	ttl time.Duration

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a registry that expires sessions idle for longer than ttl.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:      ttl,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create registers and returns a new session.
func (m *Manager) Create() *Session {
	s := New()

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Printf("[session] created %s", s.ID)
	return s
}

// Get returns the live session with id and records activity on it.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if m.expired(s, time.Now()) {
		m.End(id)
		return nil, false
	}
	s.Touch()
	return s, true
}

// End removes the session and releases its resources.
func (m *Manager) End(id uuid.UUID) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	if err := s.Close(); err != nil {
		log.Printf("[session] close %s: %v", id, err)
	}
	log.Printf("[session] ended %s", id)
	return true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep ends every session idle since before now-ttl and returns how many were ended.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.RLock()
	var stale []uuid.UUID
	for id, s := range m.sessions {
		if m.expired(s, now) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	ended := 0
	for _, id := range stale {
		if m.End(id) {
			ended++
		}
	}
	return ended
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := m.Sweep(now); n > 0 {
				log.Printf("[session] expired %d idle session(s)", n)
			}
		}
	}
}

// CloseAll ends every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for id, s := range all {
		if err := s.Close(); err != nil {
			log.Printf("[session] close %s: %v", id, err)
		}
	}
}

func (m *Manager) expired(s *Session, now time.Time) bool {
	return m.ttl > 0 && now.Sub(s.LastSeen()) > m.ttl
}
