package session

import (
	"errors"
	"sync"
)

var ErrNoSuchSession = errors.New("no session with this id")

// Manager tracks active sessions by id. Sessions are ephemeral; there is no
// persistence and no sharing between kiosk stations.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create starts a fresh session for the given toolkit.
func (m *Manager) Create(toolkitID int) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := New(toolkitID)
	m.sessions[s.ID()] = s
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNoSuchSession
	}
	return s, nil
}

// Delete drops a session, discarding its state.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
