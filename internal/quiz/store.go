package quiz

import "context"

// SessionStore hands out per-user quiz sessions. Get creates a session the
// first time a user shows up; Save persists a snapshot for stores that have
// a durable backend.
type SessionStore interface {
	Get(ctx context.Context, uid string) (*Session, error)
	Save(ctx context.Context, uid string, s *Session) error
}
