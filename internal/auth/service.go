package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/snapquiz/backend/internal/models"
	"github.com/snapquiz/backend/internal/state"
)

// Service is the auth state machine. Each operation moves the published
// UiState through Loading and then to exactly one terminal state, which is
// also returned to the caller; boundary errors are mapped into the closed
// Error kind set before publishing.
//
// Username-availability checking runs as a separate, short-lived watch with
// its own state cell. Callers are expected to debounce input: wait for at
// least 300ms of stability and more than 3 characters before invoking
// CheckUsernameAvailability. The service documents but does not enforce
// that contract.
type Service struct {
	identity IdentityProvider
	store    AccountStore
	bridge   *KeyBridge

	authState     *state.Cell[UiState]
	usernameState *state.Cell[UsernameState]
}

func NewService(identity IdentityProvider, store AccountStore, bridge *KeyBridge) *Service {
	return &Service{
		identity:      identity,
		store:         store,
		bridge:        bridge,
		authState:     state.NewCell(idleState()),
		usernameState: state.NewCell(UsernameState{Phase: UsernameIdle}),
	}
}

func (s *Service) State() *state.Cell[UiState] {
	return s.authState
}

func (s *Service) UsernameState() *state.Cell[UsernameState] {
	return s.usernameState
}

func (s *Service) publish(st UiState) UiState {
	s.authState.Set(st)
	return st
}

// RestoreSession re-establishes a previously authenticated session. No
// signed-in identity lands back in Idle, not Error; an identity whose
// account record is gone is a real error the user must see.
func (s *Service) RestoreSession(ctx context.Context) UiState {
	s.authState.Set(loadingState())

	uid, err := s.identity.Current(ctx)
	if err != nil {
		if errors.Is(err, ErrNotLoggedIn) {
			return s.publish(idleState())
		}
		return s.publish(errorState(mapBoundaryError(err)))
	}

	rec, err := s.store.GetUser(ctx, uid)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return s.publish(errorState(newError(KindUserDataNotFound)))
		}
		return s.publish(errorState(mapBoundaryError(err)))
	}

	s.bridge.Set(rec.APIKey)
	return s.publish(successState(recordToUser(rec)))
}

// Register creates an identity and the account + username-reservation
// records. The availability check runs first: a taken username fails
// without creating anything at the identity boundary.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) UiState {
	s.authState.Set(loadingState())

	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return s.publish(errorState(validationError("Username, email, and password are required")))
	}

	taken, err := s.store.UsernameExists(ctx, username)
	if err != nil {
		return s.publish(errorState(mapBoundaryError(err)))
	}
	if taken {
		return s.publish(errorState(newError(KindUsernameTaken)))
	}

	uid, err := s.identity.Create(ctx, req.Email, req.Password)
	if err != nil {
		return s.publish(errorState(mapBoundaryError(err)))
	}

	rec := UserRecord{
		UID:       uid,
		Username:  username,
		Name:      req.Name,
		Email:     req.Email,
		APIKey:    req.APIKey,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateUserWithReservation(ctx, rec); err != nil {
		return s.publish(errorState(mapBoundaryError(err)))
	}

	s.bridge.Set(req.APIKey)
	return s.publish(successState(models.AuthUser{
		UID:      uid,
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		APIKey:   req.APIKey,
	}))
}

// Login authenticates and loads the account record, updating the key
// bridge on success.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) UiState {
	s.authState.Set(loadingState())

	uid, err := s.identity.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return s.publish(errorState(mapBoundaryError(err)))
	}

	rec, err := s.store.GetUser(ctx, uid)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return s.publish(errorState(newError(KindUserDataNotFound)))
		}
		return s.publish(errorState(mapBoundaryError(err)))
	}

	s.bridge.Set(rec.APIKey)
	return s.publish(successState(recordToUser(rec)))
}

// Logout signs out and resets both state cells to Idle.
func (s *Service) Logout(ctx context.Context) UiState {
	s.authState.Set(loadingState())

	if err := s.identity.SignOut(ctx); err != nil {
		return s.publish(errorState(unknownError("Logout failed")))
	}
	s.usernameState.Set(UsernameState{Phase: UsernameIdle})
	return s.publish(idleState())
}

// WatchAvailability subscribes to the live existence of the reservation
// record for username and returns a deduplicated availability stream.
// Store-boundary errors degrade to unavailable (fail closed: unknown counts
// as taken); any other error terminates the stream with an error state.
// A blank username is rejected before any boundary call.
func (s *Service) WatchAvailability(ctx context.Context, username string) (<-chan UsernameState, error) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return nil, fmt.Errorf("username must not be blank")
	}

	events, err := s.store.WatchUsername(ctx, strings.ToLower(trimmed))
	if err != nil {
		return nil, err
	}

	out := make(chan UsernameState, 1)
	go func() {
		defer close(out)
		last := -1
		for evt := range events {
			var available bool
			switch {
			case evt.Err != nil && evt.Boundary:
				log.Printf("username check degraded: %v", evt.Err)
				available = false
			case evt.Err != nil:
				out <- UsernameState{Phase: UsernameError, Err: evt.Err.Error()}
				return
			default:
				available = !evt.Exists
			}

			bit := 0
			if available {
				bit = 1
			}
			if bit == last {
				continue
			}
			last = bit
			out <- UsernameState{Phase: UsernameChecked, Available: available}
		}
	}()
	return out, nil
}

// CheckUsernameAvailability drives the shared username state cell from a
// watch on username. It returns an error only for preconditions (blank
// input) and subscription failures; availability updates arrive on the
// cell.
func (s *Service) CheckUsernameAvailability(ctx context.Context, username string) error {
	s.usernameState.Set(UsernameState{Phase: UsernameLoading})

	updates, err := s.WatchAvailability(ctx, username)
	if err != nil {
		return err
	}
	go func() {
		for st := range updates {
			s.usernameState.Set(st)
		}
	}()
	return nil
}

func recordToUser(rec UserRecord) models.AuthUser {
	return models.AuthUser{
		UID:      rec.UID,
		Username: rec.Username,
		Name:     rec.Name,
		Email:    rec.Email,
		APIKey:   rec.APIKey,
	}
}

// mapBoundaryError folds a boundary error into the closed kind set. Network
// failures are recognized by type so no raw transport error ever reaches a
// published state.
func mapBoundaryError(err error) *Error {
	switch {
	case errors.Is(err, ErrEmailInUse):
		return newError(KindEmailInUse)
	case errors.Is(err, ErrWeakPassword):
		return newError(KindWeakPassword)
	case errors.Is(err, ErrInvalidCredentials):
		return newError(KindInvalidCredentials)
	case errors.Is(err, ErrNotLoggedIn):
		return newError(KindNotLoggedIn)
	case errors.Is(err, ErrUserNotFound):
		return newError(KindUserDataNotFound)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return newError(KindNetwork)
	}
	return unknownError(err.Error())
}
