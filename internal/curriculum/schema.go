package curriculum

import "github.com/hitensaxena/pathfinder/internal/llm"

// Flow names.
const (
	OutlineFlowName = "personalized-learning-path"
	DetailFlowName  = "module-detailed-content"
)

// OutlineInputSchema validates a LearningGoalInput before generation.
var OutlineInputSchema = &llm.Schema{
	Name:        "personalized-learning-path-input",
	Description: "A learner's goal, level, preferred style and weekly time budget",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"learningGoal": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"currentKnowledgeLevel": map[string]any{
				"type": "string",
				"enum": []any{"Beginner", "Intermediate", "Advanced"},
			},
			"preferredLearningStyle": map[string]any{
				"type": "string",
				"enum": []any{"Videos", "Articles", "InteractiveExercises"},
			},
			"weeklyTimeCommitment": map[string]any{
				"type":             "number",
				"exclusiveMinimum": 0,
			},
		},
		"required": []any{"learningGoal", "currentKnowledgeLevel", "preferredLearningStyle", "weeklyTimeCommitment"},
	},
}

// OutlineSchema defines the curriculum outline output. An empty module list
// is schema-valid and rejected after decoding.
var OutlineSchema = &llm.Schema{
	Name:        "personalized-learning-path",
	Description: "An ordered curriculum of learning modules",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"modules": map[string]any{
				"type":        "array",
				"description": "Modules in the order they should be studied",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "Short module title",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "What the module covers and why it matters (2-3 sentences)",
						},
						"suggestedResources": map[string]any{
							"type":        "string",
							"description": "Resources matching the learner's preferred style",
						},
						"estimatedTime": map[string]any{
							"type":        "string",
							"description": "Estimated time to complete, e.g. \"4 hours\"",
						},
					},
					"required": []any{"title", "description", "suggestedResources", "estimatedTime"},
				},
			},
		},
		"required": []any{"modules"},
	},
}

// DetailInputSchema validates the per-module generation input.
var DetailInputSchema = &llm.Schema{
	Name:        "module-detailed-content-input",
	Description: "A module and the learning goal it belongs to",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"moduleTitle":       map[string]any{"type": "string", "minLength": 1},
			"moduleDescription": map[string]any{"type": "string"},
			"learningGoal":      map[string]any{"type": "string"},
		},
		"required": []any{"moduleTitle", "moduleDescription", "learningGoal"},
	},
}

// DetailSchema defines the detailed module content output. Zero sections is
// schema-valid and rejected after decoding as "no content produced".
var DetailSchema = &llm.Schema{
	Name:        "module-detailed-content",
	Description: "Detailed teaching content for one module, split into sections",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sections": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"sectionTitle": map[string]any{
							"type": "string",
						},
						"sectionContent": map[string]any{
							"type":        "string",
							"description": "Markdown body of the section",
						},
						"recommendedYoutubeVideoQuery": map[string]any{
							"type":        "string",
							"description": "A YouTube search query for a video that complements this section",
						},
					},
					"required": []any{"sectionTitle", "sectionContent", "recommendedYoutubeVideoQuery"},
				},
			},
		},
		"required": []any{"sections"},
	},
}
