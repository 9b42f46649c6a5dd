// Package curriculum generates learning paths: the module outline for a goal
// and the detailed, sectioned content for each module.
package curriculum

import (
	"context"
	"errors"

	"github.com/hitensaxena/pathfinder/internal/flow"
	"github.com/hitensaxena/pathfinder/internal/learning"
	"github.com/hitensaxena/pathfinder/internal/llm"
	"github.com/hitensaxena/pathfinder/internal/logging"
)

// Draft is a generated but unsaved learning path. It is owned by the caller
// until it is saved.
type Draft struct {
	Input   learning.LearningGoalInput `json:"input"`
	Modules []learning.Module          `json:"modules"`
}

// Planner generates curriculum outlines.
type Planner struct {
	provider llm.Provider
	flow     *flow.Flow[learning.LearningGoalInput, outlineOutput]
	log      *logging.Logger
}

// NewPlanner creates a Planner.
func NewPlanner(provider llm.Provider, cfg Config, log *logging.Logger) *Planner {
	return &Planner{
		provider: provider,
		flow:     outlineFlow().WithLimits(cfg.OutlineMaxTokens, cfg.OutlineTemperature),
		log:      logging.OrNop(log),
	}
}

func outlineFlow() *flow.Flow[learning.LearningGoalInput, outlineOutput] {
	return &flow.Flow[learning.LearningGoalInput, outlineOutput]{
		Name:        OutlineFlowName,
		Input:       OutlineInputSchema,
		Output:      OutlineSchema,
		System:      outlineSystemPrompt,
		Prompt:      buildOutlineMessage,
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

// GeneratePath produces the module outline for in.
func (p *Planner) GeneratePath(ctx context.Context, in learning.LearningGoalInput) (Draft, error) {
	if err := in.Validate(); err != nil {
		return Draft{}, err
	}

	out, err := p.flow.Run(ctx, p.provider, in)
	if err != nil {
		if learning.IsValidation(err) {
			return Draft{}, err
		}
		return Draft{}, generationError(OutlineFlowName, -1, "outline", err)
	}
	if len(out.Modules) == 0 {
		return Draft{}, learning.NewGenerationError(OutlineFlowName, "no modules produced", nil)
	}

	p.log.Info("learning path generated", "goal", in.LearningGoal, "modules", len(out.Modules))
	return Draft{Input: in, Modules: out.Modules}, nil
}

// generationError attributes a flow failure. Deadline errors are marked as
// timeouts.
func generationError(flowName string, index int, msg string, err error) *learning.GenerationError {
	ge := learning.NewGenerationError(flowName, msg, err)
	ge.ModuleIndex = index
	ge.Timeout = errors.Is(err, context.DeadlineExceeded)
	return ge
}
