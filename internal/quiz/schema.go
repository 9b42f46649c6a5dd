package quiz

import "github.com/hitensaxena/pathfinder/internal/llm"

// FlowName identifies quiz generation in logs, events and errors.
const FlowName = "module-quiz"

// InputSchema validates the quiz generation input.
var InputSchema = &llm.Schema{
	Name:        "module-quiz-input",
	Description: "The module a quiz is generated for",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"moduleTitle":       map[string]any{"type": "string", "minLength": 1},
			"moduleDescription": map[string]any{"type": "string"},
			"priorQuestions": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"moduleTitle", "moduleDescription"},
	},
}

// QuizSchema defines the quiz output. Question count and option cardinality
// are stated here but re-checked after decoding, since providers do not all
// enforce array lengths.
var QuizSchema = &llm.Schema{
	Name:        "module-quiz",
	Description: "A multiple-choice quiz for one learning module",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":        "array",
				"description": "Exactly 10 questions",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"questionText": map[string]any{
							"type": "string",
						},
						"options": map[string]any{
							"type":        "array",
							"description": "Exactly 4 answer options",
							"items":       map[string]any{"type": "string"},
						},
						"correctAnswerIndex": map[string]any{
							"type":        "integer",
							"description": "Zero-based index of the correct option (0-3)",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the correct option is right",
						},
					},
					"required": []any{"questionText", "options", "correctAnswerIndex"},
				},
			},
		},
		"required": []any{"questions"},
	},
}
