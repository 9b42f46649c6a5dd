// Package flow runs named, schema-validated prompts: a typed input is
// checked against the input schema, rendered into a prompt, sent to the
// model with the output schema, and decoded into a typed output.
package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hitensaxena/pathfinder/internal/learning"
	"github.com/hitensaxena/pathfinder/internal/llm"
)

// Flow is one named prompt with typed input and output.
type Flow[In, Out any] struct {
	// Name identifies the flow in logs, events and errors.
	Name string

	Input  *llm.Schema
	Output *llm.Schema

	System string
	Prompt func(In) string

	MaxTokens   int
	Temperature float64
}

// Run validates in, executes the flow on p and decodes the output.
//
// Input schema violations are returned as *learning.ValidationError. Every
// other failure is returned as-is (typically an llm error type) for the
// caller to attribute.
func (f *Flow[In, Out]) Run(ctx context.Context, p llm.Provider, in In) (Out, error) {
	var out Out

	if f.Input != nil {
		if err := llm.ValidateValue(f.Input, in); err != nil {
			var inv *llm.ErrInvalidResponse
			if errors.As(err, &inv) {
				return out, learning.Invalid("input", "%s: %v", f.Name, inv.Err)
			}
			return out, err
		}
	}

	resp, err := p.Generate(llm.WithPurpose(ctx, f.Name), llm.Request{
		System:      f.System,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: f.Prompt(in)}},
		Schema:      f.Output,
		MaxTokens:   f.MaxTokens,
		Temperature: f.Temperature,
	})
	if err != nil {
		return out, err
	}
	if len(resp.Content) == 0 {
		return out, &llm.ErrInvalidResponse{Err: errors.New("empty output")}
	}

	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return out, &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("decode %s output: %w", f.Name, err),
		}
	}
	return out, nil
}

// WithLimits returns a copy of f with the token and temperature settings
// replaced where the overrides are non-zero.
func (f *Flow[In, Out]) WithLimits(maxTokens int, temperature float64) *Flow[In, Out] {
	c := *f
	if maxTokens > 0 {
		c.MaxTokens = maxTokens
	}
	if temperature > 0 {
		c.Temperature = temperature
	}
	return &c
}
