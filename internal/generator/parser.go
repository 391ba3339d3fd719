package generator

import (
	"encoding/json"

	"github.com/snapquiz/backend/internal/models"
)

// ParseError reports a generation response that could not be decoded into
// quiz items. Its message is surfaced verbatim to the user so they can
// decide whether a retry is worth it.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "failed to parse quiz response: " + e.Reason
}

// ParseQuizItems decodes a JSON array into quiz items. Decoding is lenient:
// unknown fields in each element are ignored. A top-level value that is not
// an array of objects matching the item shape fails with a *ParseError,
// never partial data. An empty array is valid and yields an empty slice.
func ParseQuizItems(s string) ([]models.QuizItem, error) {
	var items []models.QuizItem
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}
	if items == nil {
		items = []models.QuizItem{}
	}
	return items, nil
}
