package usecase

import (
	"sync"

	"github.com/dialogcast/dialogcast/domain"
)

// Session is the derived state of the last successful generation. A session
// record is immutable once published; every generation replaces it wholesale,
// so readers never observe a partial update.
type Session struct {
	Script  *domain.Script
	Usage   *domain.TokenUsage
	Dialog  []domain.DialogTurn
	Options domain.GenerationOptions
	Model   string
}

// SessionStore holds the current session record. The generation service is the
// only writer; export and assembly take read-only snapshots.
type SessionStore struct {
	mu      sync.RWMutex
	current *Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Snapshot returns the current session record, or nil when nothing has been
// generated yet. The returned record must not be mutated.
func (s *SessionStore) Snapshot() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *SessionStore) replace(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = session
}
