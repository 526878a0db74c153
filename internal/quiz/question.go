package quiz

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Construction-time problems with a question. They indicate a bad catalog
// or a caller bug, never a condition reachable by answering a quiz.
var (
	ErrEmptyPrompt       = errors.New("empty prompt")
	ErrTooFewOptions     = errors.New("fewer than two options")
	ErrCorrectOutOfRange = errors.New("correct option index out of range")
)

// Question is a single multiple-choice item. It is not modified once loaded.
type Question struct {
	ID          string
	Prompt      string
	Options     []string
	Correct     int // index into Options
	Explanation string
}

// IsCorrect reports whether option is the correct choice for q.
func (q Question) IsCorrect(option int) bool {
	return option == q.Correct
}

// HasOption reports whether option indexes one of q's options.
func (q Question) HasOption(option int) bool {
	return option >= 0 && option < len(q.Options)
}

// Validate checks the structural rules a session relies on.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if len(q.Options) < 2 {
		return ErrTooFewOptions
	}
	if !q.HasOption(q.Correct) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrCorrectOutOfRange, q.Correct, len(q.Options))
	}
	return nil
}

func (q Question) clone() Question {
	q.Options = slices.Clone(q.Options)
	return q
}

// QuestionError reports which question failed validation.
type QuestionError struct {
	Index int
	ID    string
	Err   error
}

func (e *QuestionError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("question %d (%s): %v", e.Index, e.ID, e.Err)
	}
	return fmt.Sprintf("question %d: %v", e.Index, e.Err)
}

func (e *QuestionError) Unwrap() error { return e.Err }
