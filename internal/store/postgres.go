package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/snapquiz/backend/internal/auth"
)

// Store implements the account boundary on Postgres: the users table plus
// the usernames reservation table, written together in one transaction.
type Store struct {
	db           *sql.DB
	pollInterval time.Duration
}

func New(db *sql.DB) *Store {
	return &Store{db: db, pollInterval: time.Second}
}

func (s *Store) CreateUserWithReservation(ctx context.Context, rec auth.UserRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin user creation: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (uid, username, name, email, apikey, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.UID, rec.Username, rec.Name, rec.Email, rec.APIKey, rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO usernames (username, user_id, created_at) VALUES ($1, $2, $3)`,
		rec.Username, rec.UID, rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert username reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user creation: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, uid string) (auth.UserRecord, error) {
	var rec auth.UserRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT uid, username, name, email, apikey, created_at FROM users WHERE uid = $1`,
		uid,
	).Scan(&rec.UID, &rec.Username, &rec.Name, &rec.Email, &rec.APIKey, &rec.CreatedAt)

	if err == sql.ErrNoRows {
		return auth.UserRecord{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.UserRecord{}, fmt.Errorf("get user: %w", err)
	}
	return rec, nil
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM usernames WHERE username = $1)`,
		strings.ToLower(username),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

// WatchUsername polls the reservation table and emits existence events. The
// first emission happens immediately; query failures are marked as boundary
// errors so the auth layer can degrade them instead of tearing the watch
// down. The channel closes when ctx is done.
func (s *Store) WatchUsername(ctx context.Context, username string) (<-chan auth.UsernameEvent, error) {
	username = strings.ToLower(username)
	events := make(chan auth.UsernameEvent, 1)

	go func() {
		defer close(events)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		emit := func() bool {
			exists, err := s.UsernameExists(ctx, username)
			evt := auth.UsernameEvent{Exists: exists}
			if err != nil {
				evt = auth.UsernameEvent{Err: err, Boundary: true}
			}
			select {
			case events <- evt:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !emit() {
					return
				}
			}
		}
	}()

	return events, nil
}

func (s *Store) RecordPromptUsage(ctx context.Context, uid, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO prompt_history (user_id, prompt, created_at) VALUES ($1, $2, $3)`,
		uid, prompt, time.Now(),
	); err != nil {
		return fmt.Errorf("record prompt usage: %w", err)
	}
	return nil
}
