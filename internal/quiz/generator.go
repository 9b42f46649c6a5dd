// Package quiz generates, validates and scores module quizzes.
package quiz

import (
	"context"
	"errors"

	"github.com/hitensaxena/pathfinder/internal/flow"
	"github.com/hitensaxena/pathfinder/internal/learning"
	"github.com/hitensaxena/pathfinder/internal/llm"
)

// Generator produces validated question sets for a module.
type Generator struct {
	provider llm.Provider
	config   Config
	flow     *flow.Flow[generateInput, quizOutput]
}

// NewGenerator creates a Generator with the given provider and config.
func NewGenerator(provider llm.Provider, cfg Config) *Generator {
	g := &Generator{provider: provider, config: cfg}
	g.flow = (&flow.Flow[generateInput, quizOutput]{
		Name:   FlowName,
		Input:  InputSchema,
		Output: QuizSchema,
		System: systemPrompt,
		Prompt: func(in generateInput) string {
			return buildUserMessage(in, cfg.MaxPriorQuestions)
		},
		MaxTokens:   3072,
		Temperature: 0.7,
	}).WithLimits(cfg.MaxTokens, cfg.Temperature)
	return g
}

// GenerateQuiz returns exactly learning.QuizSize validated questions for the
// module. Questions in prior are listed in the prompt so a retake asks
// different ones.
//
// The result is all-or-nothing. An empty title is a *learning.ValidationError;
// every other failure is a *learning.GenerationError, and a post-validation
// failure wraps the index-tagged *learning.ValidationError.
func (g *Generator) GenerateQuiz(ctx context.Context, title, description string, prior ...string) ([]learning.QuizQuestion, error) {
	out, err := g.flow.Run(ctx, g.provider, generateInput{
		ModuleTitle:       title,
		ModuleDescription: description,
		PriorQuestions:    prior,
	})
	if err != nil {
		if learning.IsValidation(err) {
			return nil, err
		}
		ge := learning.NewGenerationError(FlowName, "quiz", err)
		ge.Timeout = errors.Is(err, context.DeadlineExceeded)
		return nil, ge
	}
	if len(out.Questions) == 0 {
		return nil, learning.NewGenerationError(FlowName, "no questions produced", nil)
	}

	if verr := runValidators(g.config.chain(), out.Questions); verr != nil {
		ge := learning.NewGenerationError(FlowName, "invalid quiz", verr)
		ge.QuestionIndex = verr.Index
		return nil, ge
	}
	return out.Questions, nil
}
