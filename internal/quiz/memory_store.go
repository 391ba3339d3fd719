package quiz

import (
	"context"
	"sync"
)

// MemorySessionStore keeps sessions in a process-local map. It is the
// default when no Redis is configured, and what the tests run against.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session)}
}

func (s *MemorySessionStore) Get(ctx context.Context, uid string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[uid]; ok {
		return session, nil
	}
	session := NewSession()
	s.sessions[uid] = session
	return session, nil
}

// Save is a no-op: sessions are mutated in place and there is no durable
// backend to sync.
func (s *MemorySessionStore) Save(ctx context.Context, uid string, session *Session) error {
	return nil
}
