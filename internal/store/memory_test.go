package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/snapquiz/backend/internal/auth"
)

func testRecord(uid, username string) auth.UserRecord {
	return auth.UserRecord{
		UID:       uid,
		Username:  username,
		Name:      "Ada",
		Email:     username + "@example.com",
		APIKey:    "key-" + uid,
		CreatedAt: time.Now(),
	}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.CreateUserWithReservation(ctx, testRecord("uid-1", "ada_l")); err != nil {
		t.Fatalf("create: %v", err)
	}

	rec, err := s.GetUser(ctx, "uid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Username != "ada_l" || rec.APIKey != "key-uid-1" {
		t.Errorf("unexpected record: %+v", rec)
	}

	exists, err := s.UsernameExists(ctx, "ADA_L")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Error("expected case-insensitive reservation hit")
	}
}

func TestMemoryStore_GetUnknownUser(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GetUser(context.Background(), "nobody")
	if !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestMemoryStore_DuplicateReservationFails(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.CreateUserWithReservation(ctx, testRecord("uid-1", "ada_l")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := s.CreateUserWithReservation(ctx, testRecord("uid-2", "ada_l")); err == nil {
		t.Fatal("expected duplicate reservation to fail")
	}
	// The losing record must not exist: both-or-neither.
	if _, err := s.GetUser(ctx, "uid-2"); !errors.Is(err, auth.ErrUserNotFound) {
		t.Errorf("losing record leaked: %v", err)
	}
}

func TestMemoryStore_WatchUsername(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.WatchUsername(ctx, "ada_l")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Immediate emission reflects current state.
	select {
	case evt := <-events:
		if evt.Exists || evt.Err != nil {
			t.Fatalf("expected not-exists, got %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial event")
	}

	// Reservation lands while watching.
	if err := s.CreateUserWithReservation(ctx, testRecord("uid-1", "ada_l")); err != nil {
		t.Fatalf("create: %v", err)
	}
	select {
	case evt := <-events:
		if !evt.Exists {
			t.Fatalf("expected exists after reservation, got %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reservation event")
	}
}

func TestMemoryStore_WatchClosesOnCancel(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())

	events, err := s.WatchUsername(ctx, "ada_l")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	<-events // initial emission

	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

func TestMemoryStore_RecordPromptUsage(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.RecordPromptUsage(ctx, "uid-1", "cell biology notes"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.RecordPromptUsage(ctx, "uid-1", "   "); err != nil {
		t.Fatalf("blank record: %v", err)
	}

	got := s.PromptHistory("uid-1")
	if len(got) != 1 || got[0] != "cell biology notes" {
		t.Errorf("unexpected history: %v", got)
	}
}

func TestMemoryIdentity_Lifecycle(t *testing.T) {
	i := NewMemoryIdentity()
	ctx := context.Background()

	uid, err := i.Create(ctx, "Ada@Example.com", "secret99")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if uid == "" {
		t.Fatal("expected a uid")
	}

	// Create signs the new identity in.
	current, err := i.Current(ctx)
	if err != nil || current != uid {
		t.Fatalf("expected current %q, got %q (%v)", uid, current, err)
	}

	if err := i.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := i.Current(ctx); !errors.Is(err, auth.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}

	// Email lookup is case-insensitive.
	got, err := i.Authenticate(ctx, "ada@example.com", "secret99")
	if err != nil || got != uid {
		t.Fatalf("authenticate: uid %q err %v", got, err)
	}
}

func TestMemoryIdentity_WeakPassword(t *testing.T) {
	i := NewMemoryIdentity()
	_, err := i.Create(context.Background(), "a@b.c", "12345")
	if !errors.Is(err, auth.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestMemoryIdentity_DuplicateEmail(t *testing.T) {
	i := NewMemoryIdentity()
	ctx := context.Background()

	if _, err := i.Create(ctx, "a@b.c", "secret99"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := i.Create(ctx, "a@b.c", "other-pass")
	if !errors.Is(err, auth.ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestMemoryIdentity_WrongPassword(t *testing.T) {
	i := NewMemoryIdentity()
	ctx := context.Background()

	if _, err := i.Create(ctx, "a@b.c", "secret99"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := i.Authenticate(ctx, "a@b.c", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := i.Authenticate(ctx, "unknown@b.c", "secret99"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
