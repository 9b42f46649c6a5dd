package quiz

import (
	"errors"
	"fmt"

	"github.com/hitensaxena/pathfinder/internal/learning"
)

// Validator checks a generated question set.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in logs, e.g. "count".
	Name() string

	// Validate returns nil if the questions pass. Per-question failures
	// carry the offending question's index.
	Validate(questions []learning.QuizQuestion) *learning.ValidationError
}

// CountValidator requires exactly learning.QuizSize questions.
type CountValidator struct{}

func (v *CountValidator) Name() string { return "count" }

func (v *CountValidator) Validate(questions []learning.QuizQuestion) *learning.ValidationError {
	if len(questions) != learning.QuizSize {
		return &learning.ValidationError{
			Field:   "questions",
			Index:   -1,
			Message: fmt.Sprintf("expected %d questions, got %d", learning.QuizSize, len(questions)),
		}
	}
	return nil
}

// ShapeValidator checks option cardinality and answer range on every
// question.
type ShapeValidator struct{}

func (v *ShapeValidator) Name() string { return "shape" }

func (v *ShapeValidator) Validate(questions []learning.QuizQuestion) *learning.ValidationError {
	for i, q := range questions {
		if err := learning.ValidateQuestion(i, q); err != nil {
			var ve *learning.ValidationError
			if errors.As(err, &ve) {
				return ve
			}
			return &learning.ValidationError{Field: "questions", Index: i, Message: err.Error()}
		}
	}
	return nil
}

// runValidators applies vs in order; the first failure stops the chain.
func runValidators(vs []Validator, questions []learning.QuizQuestion) *learning.ValidationError {
	for _, v := range vs {
		if err := v.Validate(questions); err != nil {
			return err
		}
	}
	return nil
}
