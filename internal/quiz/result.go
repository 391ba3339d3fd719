package quiz

import "github.com/snapquiz/backend/internal/models"

// ResultState enumerates the phases of a generation request.
type ResultState int

const (
	StateLoading ResultState = iota
	StateSuccess
	StateError
)

// Result is the tri-state value published while a generation request runs.
// Exactly one state holds at a time; within one request it only moves
// forward, Loading → Success or Error. A Success with zero items means
// "no quiz yet" and is not an error.
type Result struct {
	State ResultState
	Items []models.QuizItem
	Err   string
}

func Loading() Result {
	return Result{State: StateLoading}
}

func Success(items []models.QuizItem) Result {
	return Result{State: StateSuccess, Items: items}
}

func Failure(message string) Result {
	return Result{State: StateError, Err: message}
}
