package auth

import "github.com/snapquiz/backend/internal/models"

// Phase enumerates the auth state machine's positions.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

// UiState is the published auth state. User is valid in PhaseSuccess, Err
// in PhaseError; exactly one phase holds at a time.
type UiState struct {
	Phase Phase
	User  models.AuthUser
	Err   *Error
}

func idleState() UiState    { return UiState{Phase: PhaseIdle} }
func loadingState() UiState { return UiState{Phase: PhaseLoading} }

func successState(user models.AuthUser) UiState {
	return UiState{Phase: PhaseSuccess, User: user}
}

func errorState(err *Error) UiState {
	return UiState{Phase: PhaseError, Err: err}
}

// UsernamePhase enumerates the short-lived username-validation states.
type UsernamePhase int

const (
	UsernameIdle UsernamePhase = iota
	UsernameLoading
	UsernameChecked
	UsernameError
)

// UsernameState is the published availability of the username currently in
// the input field. Available is valid in UsernameChecked, Err in
// UsernameError.
type UsernameState struct {
	Phase     UsernamePhase
	Available bool
	Err       string
}
