package auth

import "errors"

// Kind is the closed set of auth failure categories. Every boundary error
// is mapped into one of these before it reaches a published state; no raw
// transport error escapes.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindInvalidCredentials
	KindEmailInUse
	KindUsernameTaken
	KindUserDataNotFound
	KindNotLoggedIn
	KindWeakPassword
	KindValidation
	KindUnknown
)

// Error is an auth failure with a fixed user-facing message per kind.
// Detail carries the raw message for the Validation and Unknown kinds.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return e.UserMessage()
}

// UserMessage renders the one fixed human-readable string for each kind.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindNetwork:
		return "Network error"
	case KindInvalidCredentials:
		return "Invalid email or password"
	case KindEmailInUse:
		return "Email already in use"
	case KindUsernameTaken:
		return "Username already taken"
	case KindUserDataNotFound:
		return "User data not found"
	case KindNotLoggedIn:
		return "Not logged in"
	case KindWeakPassword:
		return "Password too weak"
	case KindValidation:
		return e.Detail
	default:
		return "Unknown error: " + e.Detail
	}
}

func newError(kind Kind) *Error {
	return &Error{Kind: kind}
}

func validationError(detail string) *Error {
	return &Error{Kind: KindValidation, Detail: detail}
}

func unknownError(detail string) *Error {
	if detail == "" {
		detail = "something went wrong"
	}
	return &Error{Kind: KindUnknown, Detail: detail}
}

// Boundary sentinel errors. Store and identity implementations return
// these; the service maps them to Error kinds.
var (
	ErrEmailInUse         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password too weak")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotLoggedIn        = errors.New("no identity signed in")
	ErrUserNotFound       = errors.New("user record not found")
)
