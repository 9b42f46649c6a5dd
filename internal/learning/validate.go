package learning

import (
	"fmt"
	"strings"
)

// Validate checks the goal input before any generation call is made.
func (in LearningGoalInput) Validate() error {
	if strings.TrimSpace(in.LearningGoal) == "" {
		return Invalid("learningGoal", "must not be empty")
	}
	if !in.CurrentKnowledgeLevel.Valid() {
		return Invalid("currentKnowledgeLevel", "unknown level %q", in.CurrentKnowledgeLevel)
	}
	if !in.PreferredLearningStyle.Valid() {
		return Invalid("preferredLearningStyle", "unknown style %q", in.PreferredLearningStyle)
	}
	if in.WeeklyTimeCommitment <= 0 {
		return Invalid("weeklyTimeCommitment", "must be positive, got %v", in.WeeklyTimeCommitment)
	}
	return nil
}

// ValidateQuestion checks the cardinality and range invariants of a single
// quiz question. index tags the returned error.
func ValidateQuestion(index int, q QuizQuestion) error {
	if strings.TrimSpace(q.QuestionText) == "" {
		return &ValidationError{Field: "questions", Index: index, Message: "question text is empty"}
	}
	if len(q.Options) != OptionsPerQuestion {
		return &ValidationError{
			Field:   "questions",
			Index:   index,
			Message: fmt.Sprintf("expected %d options, got %d", OptionsPerQuestion, len(q.Options)),
		}
	}
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= OptionsPerQuestion {
		return &ValidationError{
			Field:   "questions",
			Index:   index,
			Message: fmt.Sprintf("correctAnswerIndex %d out of range [0,%d]", q.CorrectAnswerIndex, OptionsPerQuestion-1),
		}
	}
	return nil
}
