package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/snapquiz/backend/internal/auth"
)

// MemoryStore is an in-memory account boundary. It backs local development
// when no Postgres is configured, and the tests. Username watches are
// push-based: every reservation change notifies live subscribers.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[string]auth.UserRecord
	reserved map[string]string // username → uid
	prompts  map[string][]string
	watchers map[string][]chan auth.UsernameEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]auth.UserRecord),
		reserved: make(map[string]string),
		prompts:  make(map[string][]string),
		watchers: make(map[string][]chan auth.UsernameEvent),
	}
}

func (s *MemoryStore) CreateUserWithReservation(ctx context.Context, rec auth.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(rec.Username)
	if _, taken := s.reserved[username]; taken {
		return fmt.Errorf("username %q already reserved", username)
	}

	// Both writes happen under one lock: both-or-neither.
	s.users[rec.UID] = rec
	s.reserved[username] = rec.UID
	s.notifyLocked(username, true)
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, uid string) (auth.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[uid]
	if !ok {
		return auth.UserRecord{}, auth.ErrUserNotFound
	}
	return rec, nil
}

func (s *MemoryStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.reserved[strings.ToLower(username)]
	return ok, nil
}

func (s *MemoryStore) WatchUsername(ctx context.Context, username string) (<-chan auth.UsernameEvent, error) {
	username = strings.ToLower(username)
	events := make(chan auth.UsernameEvent, 4)

	s.mu.Lock()
	_, exists := s.reserved[username]
	s.watchers[username] = append(s.watchers[username], events)
	s.mu.Unlock()

	events <- auth.UsernameEvent{Exists: exists}

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.watchers[username]
		for i, ch := range subs {
			if ch == events {
				s.watchers[username] = append(subs[:i], subs[i+1:]...)
				close(events)
				break
			}
		}
	}()

	return events, nil
}

func (s *MemoryStore) RecordPromptUsage(ctx context.Context, uid, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[uid] = append(s.prompts[uid], prompt)
	return nil
}

// PromptHistory returns the prompts recorded for uid, oldest first.
func (s *MemoryStore) PromptHistory(uid string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts[uid]))
	copy(out, s.prompts[uid])
	return out
}

func (s *MemoryStore) notifyLocked(username string, exists bool) {
	for _, ch := range s.watchers[username] {
		select {
		case ch <- auth.UsernameEvent{Exists: exists}:
		default:
		}
	}
}

// MemoryIdentity is an in-memory identity boundary with the same semantics
// as the Postgres one: bcrypt hashing, weak-password threshold, and a
// process-session "current" uid.
type MemoryIdentity struct {
	mu      sync.Mutex
	byEmail map[string]memoryCredential
	current string
}

type memoryCredential struct {
	uid    string
	hashed []byte
}

func NewMemoryIdentity() *MemoryIdentity {
	return &MemoryIdentity{byEmail: make(map[string]memoryCredential)}
}

func (i *MemoryIdentity) Create(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if len(password) < minPasswordLen {
		return "", auth.ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.byEmail[email]; ok {
		return "", auth.ErrEmailInUse
	}

	uid := newUID()
	i.byEmail[email] = memoryCredential{uid: uid, hashed: hashed}
	i.current = uid
	return uid, nil
}

func (i *MemoryIdentity) Authenticate(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	i.mu.Lock()
	cred, ok := i.byEmail[email]
	i.mu.Unlock()
	if !ok {
		return "", auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(cred.hashed, []byte(password)); err != nil {
		return "", auth.ErrInvalidCredentials
	}

	i.mu.Lock()
	i.current = cred.uid
	i.mu.Unlock()
	return cred.uid, nil
}

func (i *MemoryIdentity) SignOut(ctx context.Context) error {
	i.mu.Lock()
	i.current = ""
	i.mu.Unlock()
	return nil
}

func (i *MemoryIdentity) Current(ctx context.Context) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.current == "" {
		return "", auth.ErrNotLoggedIn
	}
	return i.current, nil
}
