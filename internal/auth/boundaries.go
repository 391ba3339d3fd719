package auth

import (
	"context"
	"time"
)

// IdentityProvider is the authentication boundary: it issues and validates
// identities and tracks the current signed-in one for this process session.
type IdentityProvider interface {
	// Create registers email+password and returns the new uid. Fails with
	// ErrEmailInUse, ErrWeakPassword, or a transport error.
	Create(ctx context.Context, email, password string) (string, error)
	// Authenticate returns the uid for valid credentials, otherwise
	// ErrInvalidCredentials or a transport error.
	Authenticate(ctx context.Context, email, password string) (string, error)
	SignOut(ctx context.Context) error
	// Current returns the signed-in uid or ErrNotLoggedIn.
	Current(ctx context.Context) (string, error)
}

// UserRecord is the stored account document. Username is always the
// lowercased form; display casing is the client's concern.
type UserRecord struct {
	UID       string
	Username  string
	Name      string
	Email     string
	APIKey    string
	CreatedAt time.Time
}

// UsernameEvent is one emission from a username watch. Boundary marks
// errors that originate in the store itself; the service degrades those to
// "taken" instead of crashing the watch. Errors with Boundary unset
// propagate to the published state.
type UsernameEvent struct {
	Exists   bool
	Err      error
	Boundary bool
}

// AccountStore is the structured-store boundary holding user and
// username-reservation records.
type AccountStore interface {
	// CreateUserWithReservation writes the user record and the reservation
	// for rec.Username in a single atomic operation: both land or neither
	// does.
	CreateUserWithReservation(ctx context.Context, rec UserRecord) error
	// GetUser fails with ErrUserNotFound when no record exists for uid.
	GetUser(ctx context.Context, uid string) (UserRecord, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	// WatchUsername emits the live existence of the reservation record for
	// username (already lowercased). The channel closes when ctx is done.
	WatchUsername(ctx context.Context, username string) (<-chan UsernameEvent, error)
	RecordPromptUsage(ctx context.Context, uid, prompt string) error
}
