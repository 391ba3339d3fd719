package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/snapquiz/backend/internal/auth"
)

// minPasswordLen matches the weak-password threshold of the hosted identity
// service the mobile client was built against.
const minPasswordLen = 6

// Identity implements the identity boundary on Postgres with bcrypt
// password hashing. The "current" uid mirrors the client-session notion of
// the original app and lives in process memory: it is set by Create and
// Authenticate, cleared by SignOut.
type Identity struct {
	db *sql.DB

	mu      sync.RWMutex
	current string
}

func NewIdentity(db *sql.DB) *Identity {
	return &Identity{db: db}
}

func (i *Identity) Create(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if len(password) < minPasswordLen {
		return "", auth.ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	uid := newUID()
	if _, err := i.db.ExecContext(ctx,
		`INSERT INTO identities (uid, email, password) VALUES ($1, $2, $3)`,
		uid, email, string(hashed),
	); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return "", auth.ErrEmailInUse
		}
		return "", fmt.Errorf("create identity: %w", err)
	}

	i.setCurrent(uid)
	return uid, nil
}

func (i *Identity) Authenticate(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	var uid, hashed string
	err := i.db.QueryRowContext(ctx,
		`SELECT uid, password FROM identities WHERE email = $1`,
		email,
	).Scan(&uid, &hashed)
	if err == sql.ErrNoRows {
		return "", auth.ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)); err != nil {
		return "", auth.ErrInvalidCredentials
	}

	i.setCurrent(uid)
	return uid, nil
}

func (i *Identity) SignOut(ctx context.Context) error {
	i.setCurrent("")
	return nil
}

func (i *Identity) Current(ctx context.Context) (string, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.current == "" {
		return "", auth.ErrNotLoggedIn
	}
	return i.current, nil
}

func (i *Identity) setCurrent(uid string) {
	i.mu.Lock()
	i.current = uid
	i.mu.Unlock()
}

func newUID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(buf)
}
