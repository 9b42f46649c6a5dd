package quiz

import (
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/hitensaxena/pathfinder/internal/learning"
)

// State is the phase of a quiz attempt.
type State int

const (
	NotStarted State = iota
	InProgress
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case InProgress:
		return "in-progress"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// ErrInvalidTransition is returned when an attempt operation is not allowed
// in the attempt's current state.
var ErrInvalidTransition = errors.New("invalid quiz attempt transition")

// Attempt is one pass through a question set. Questions are answered in
// order, one at a time; an answer cannot be revised and no question can be
// skipped. A retake is a new Attempt over a freshly generated set.
type Attempt struct {
	ID string

	questions []learning.QuizQuestion
	answers   map[int]int
	current   int
	state     State
	score     Score
}

// NewAttempt validates questions and returns an attempt in NotStarted.
func NewAttempt(questions []learning.QuizQuestion) (*Attempt, error) {
	if err := ValidateQuestions(questions); err != nil {
		return nil, err
	}
	return &Attempt{
		ID:        uuid.NewString(),
		questions: questions,
		answers:   make(map[int]int, len(questions)),
	}, nil
}

// ValidateQuestions applies the standard count and shape checks.
func ValidateQuestions(questions []learning.QuizQuestion) error {
	if verr := runValidators(Config{}.chain(), questions); verr != nil {
		return verr
	}
	return nil
}

// Start moves the attempt to InProgress at the first question.
func (a *Attempt) Start() error {
	if a.state != NotStarted {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, a.state)
	}
	a.state = InProgress
	return nil
}

// Current returns the question awaiting an answer. ok is false unless the
// attempt is in progress.
func (a *Attempt) Current() (index int, q learning.QuizQuestion, ok bool) {
	if a.state != InProgress {
		return 0, learning.QuizQuestion{}, false
	}
	return a.current, a.questions[a.current], true
}

// Answer records choice for the current question and advances by one. The
// last answer completes the attempt and scores it.
func (a *Attempt) Answer(choice int) error {
	if a.state != InProgress {
		return fmt.Errorf("%w: answer in %s", ErrInvalidTransition, a.state)
	}
	if choice < 0 || choice >= learning.OptionsPerQuestion {
		return &learning.ValidationError{
			Field:   "answer",
			Index:   a.current,
			Message: fmt.Sprintf("choice %d out of range [0,%d]", choice, learning.OptionsPerQuestion-1),
		}
	}

	a.answers[a.current] = choice
	a.current++
	if a.current == len(a.questions) {
		a.state = Completed
		a.score = ScoreQuiz(a.questions, a.answers)
	}
	return nil
}

// State returns the attempt's phase.
func (a *Attempt) State() State { return a.state }

// Score returns the final score once the attempt is completed.
func (a *Attempt) Score() (Score, bool) {
	return a.score, a.state == Completed
}

// Questions returns the attempt's question set.
func (a *Attempt) Questions() []learning.QuizQuestion { return a.questions }

// Answers returns a copy of the answers given so far.
func (a *Attempt) Answers() map[int]int { return maps.Clone(a.answers) }

// QuestionTexts lists the attempt's question texts, for a retake prompt.
func (a *Attempt) QuestionTexts() []string {
	out := make([]string, len(a.questions))
	for i, q := range a.questions {
		out[i] = q.QuestionText
	}
	return out
}
