package generator

import (
	"fmt"

	"github.com/snapquiz/backend/internal/models"
)

// BuildQuizPrompt composes the instruction sent to the generation model. The
// source text (typed or camera-scanned) comes first, followed by directives
// that pin down count, difficulty, language, and the bare-JSON-array output
// shape the parser expects.
func BuildQuizPrompt(source string, count int, difficulty models.Difficulty, language string) string {
	return fmt.Sprintf(`%s

From the text above, generate exactly %d %s multiple-choice questions in %s.

Respond with a bare JSON array and nothing else: no introduction, no closing
remarks, no markdown fences. Each element must have exactly this shape:

{"question": "...", "options": ["...", "...", "...", "..."], "answer": "..."}

Rules:
- "options" holds exactly 4 distinct choices
- "answer" must be byte-for-byte equal to one of the entries in "options"
- every question must be answerable from the text above alone`,
		source, count, difficulty, language)
}
