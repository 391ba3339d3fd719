package quiz

import (
	"sync"

	"github.com/snapquiz/backend/internal/models"
)

// Session owns the current quiz items for one user. The slice never leaks:
// Items returns a copy and ReplaceAll stores one, so all mutation goes
// through the bounds-checked methods below.
type Session struct {
	mu    sync.Mutex
	items []models.QuizItem
}

func NewSession() *Session {
	return &Session{}
}

// Items returns a snapshot of the current items.
func (s *Session) Items() []models.QuizItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.QuizItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// ReplaceAll swaps in a new item sequence wholesale, discarding all
// selection state from the previous quiz.
func (s *Session) ReplaceAll(items []models.QuizItem) {
	next := make([]models.QuizItem, len(items))
	copy(next, items)
	s.mu.Lock()
	s.items = next
	s.mu.Unlock()
}

// SelectOption records the user's pick for the item at index. An
// out-of-range index is a no-op, not an error. Selecting the same option
// again is idempotent.
func (s *Session) SelectOption(index int, option string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.items) {
		return
	}
	s.items[index].SelectedOption = option
}

// ResetOption clears the selection at index under the same bounds policy.
func (s *Session) ResetOption(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.items) {
		return
	}
	s.items[index].SelectedOption = ""
}

// Score counts items whose selected option equals the answer. It is derived
// on every read rather than maintained incrementally; the list is small and
// a second source of truth could drift from selection state.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	score := 0
	for _, item := range s.items {
		if item.Correct() {
			score++
		}
	}
	return score
}
