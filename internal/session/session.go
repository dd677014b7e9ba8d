// Package session keeps the transient per-user conversation state: which menu
// the user is in and whether teaching or questionnaire mode is active.
package session

import "sync"

// MainMenu is the menu key every session starts in.
const MainMenu = "main"

// Session is one user's conversation state. It is not persisted.
type Session struct {
	Menu       string
	Teaching   bool
	Collecting bool
}

// Store is the session access surface used by the bot.
type Store interface {
	Get(userID int64) Session
	Update(userID int64, fn func(s *Session)) Session
	Reset(userID int64)
}

// MemoryStore is a thread-safe in-memory Store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]*Session),
	}
}

func newSession() *Session {
	return &Session{Menu: MainMenu}
}

// Get returns a copy of the user's session, or a fresh one.
func (m *MemoryStore) Get(userID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.sessions[userID]; ok {
		return *s
	}

	return *newSession()
}

// Update applies fn under the store lock and returns the result.
func (m *MemoryStore) Update(userID int64, fn func(s *Session)) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		s = newSession()
		m.sessions[userID] = s
	}

	fn(s)

	if s.Menu == "" {
		s.Menu = MainMenu
	}

	return *s
}

// Reset drops the user's session.
func (m *MemoryStore) Reset(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
}

// Len returns the number of tracked sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

var _ Store = (*MemoryStore)(nil)
