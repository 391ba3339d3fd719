package models

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

// QuizItem is one multiple-choice question as returned by the generation
// model. SelectedOption is empty until the user picks an option; it may
// differ from Answer.
type QuizItem struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	Answer         string   `json:"answer"`
	SelectedOption string   `json:"selectedOption,omitempty"`
}

// Selected reports whether the user has picked an option for this item.
func (q QuizItem) Selected() bool {
	return q.SelectedOption != ""
}

// Correct reports whether the selected option matches the answer.
func (q QuizItem) Correct() bool {
	return q.Selected() && q.SelectedOption == q.Answer
}
