package quiz

import (
	"context"
	"fmt"

	"github.com/hitensaxena/pathfinder/internal/learning"
	"github.com/hitensaxena/pathfinder/internal/logging"
	"github.com/hitensaxena/pathfinder/internal/metrics"
)

// StatusWriter persists the outcome of a quiz attempt for one module.
type StatusWriter interface {
	UpdateModuleQuizStatus(ctx context.Context, ownerID, pathID string, moduleIndex int, score float64, passed bool) error
}

// Service ties quiz generation and scoring to path records.
type Service struct {
	gen     *Generator
	status  StatusWriter
	log     *logging.Logger
	metrics *metrics.Metrics
}

// NewService creates a quiz Service. log and m may be nil.
func NewService(gen *Generator, status StatusWriter, log *logging.Logger, m *metrics.Metrics) *Service {
	return &Service{gen: gen, status: status, log: logging.OrNop(log), metrics: m}
}

// Generate produces a fresh question set for module.
func (s *Service) Generate(ctx context.Context, module learning.Module) ([]learning.QuizQuestion, error) {
	qs, err := s.gen.GenerateQuiz(ctx, module.Title, module.Description)
	s.metrics.QuizGenerated(err)
	if err != nil {
		s.log.Warn("quiz generation failed", "module", module.Title, "error", err)
		return nil, err
	}
	return qs, nil
}

// NewAttempt generates questions for module and returns an unstarted attempt.
func (s *Service) NewAttempt(ctx context.Context, module learning.Module) (*Attempt, error) {
	qs, err := s.Generate(ctx, module)
	if err != nil {
		return nil, err
	}
	return NewAttempt(qs)
}

// Retake starts over with a newly generated question set that avoids the
// questions of prev.
func (s *Service) Retake(ctx context.Context, module learning.Module, prev *Attempt) (*Attempt, error) {
	var prior []string
	if prev != nil {
		prior = prev.QuestionTexts()
	}
	qs, err := s.gen.GenerateQuiz(ctx, module.Title, module.Description, prior...)
	s.metrics.QuizGenerated(err)
	if err != nil {
		return nil, err
	}
	return NewAttempt(qs)
}

// Submit scores answers against questions and stores the result as the
// module's quiz status.
func (s *Service) Submit(ctx context.Context, ownerID, pathID string, moduleIndex int, questions []learning.QuizQuestion, answers map[int]int) (Score, error) {
	if err := ValidateQuestions(questions); err != nil {
		return Score{}, err
	}
	for i := range answers {
		if i < 0 || i >= len(questions) {
			return Score{}, learning.Invalid("answers", "question index %d out of range", i)
		}
	}

	score := ScoreQuiz(questions, answers)
	if err := s.status.UpdateModuleQuizStatus(ctx, ownerID, pathID, moduleIndex, score.Percentage, score.Passed); err != nil {
		return Score{}, err
	}
	s.metrics.QuizSubmitted(score.Passed)
	s.log.Info("quiz submitted", "path", pathID, "module", moduleIndex, "score", score.Percentage, "passed", score.Passed)
	return score, nil
}

// SubmitAttempt stores the result of a completed attempt.
func (s *Service) SubmitAttempt(ctx context.Context, ownerID, pathID string, moduleIndex int, a *Attempt) (Score, error) {
	if a.State() != Completed {
		return Score{}, fmt.Errorf("%w: submit in %s", ErrInvalidTransition, a.State())
	}
	return s.Submit(ctx, ownerID, pathID, moduleIndex, a.Questions(), a.Answers())
}
