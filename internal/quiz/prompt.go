package quiz

import (
	"fmt"
	"strings"

	"github.com/hitensaxena/pathfinder/internal/learning"
)

var systemPrompt = fmt.Sprintf(`You are an expert teacher writing a multiple-choice quiz for one module of a learning path.

Rules:
- Write exactly %d questions that test understanding of the module, not trivia.
- Every question has exactly %d options. Exactly one option is correct.
- correctAnswerIndex is the zero-based position of the correct option.
- Vary the position of the correct option across questions.
- Keep explanations to one or two sentences.
- Do not repeat any of the previously asked questions listed in the input.`,
	learning.QuizSize, learning.OptionsPerQuestion)

type generateInput struct {
	ModuleTitle       string   `json:"moduleTitle"`
	ModuleDescription string   `json:"moduleDescription"`
	PriorQuestions    []string `json:"priorQuestions,omitempty"`
}

type quizOutput struct {
	Questions []learning.QuizQuestion `json:"questions"`
}

func buildUserMessage(in generateInput, maxPrior int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Module: %s\n", in.ModuleTitle)
	if in.ModuleDescription != "" {
		fmt.Fprintf(&b, "Module description: %s\n", in.ModuleDescription)
	}
	fmt.Fprintf(&b, "\nPreviously asked questions:\n%s\n", buildDedup(in.PriorQuestions, maxPrior))
	return b.String()
}

// buildDedup lists prior questions for the prompt, keeping only the most
// recent max. Returns "None" when there are none.
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "None"
	}
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
