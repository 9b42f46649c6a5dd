package curriculum

import (
	"fmt"
	"strings"

	"github.com/hitensaxena/pathfinder/internal/learning"
)

const outlineSystemPrompt = `You are an expert curriculum designer building a personalized learning path.

Rules:
- Break the learning goal into an ordered sequence of modules, from foundations to mastery.
- Calibrate the starting point to the learner's current knowledge level. Do not re-teach what an Intermediate or Advanced learner already knows.
- Size the path to the learner's weekly time commitment. Each module's estimated time should be realistic for that budget.
- Suggested resources must match the preferred learning style (videos, articles, or interactive exercises).
- Keep titles short and descriptions to 2-3 sentences.`

const detailSystemPrompt = `You are an expert teacher writing the detailed content for one module of a learning path.

Rules:
- Write between 2 and 4 sections that together teach the module end to end.
- Each section has a short title and a markdown body with explanations, examples and, where useful, code or worked problems.
- For each section, give one YouTube search query that would find a good companion video.
- Stay within the module's scope; the learner's overall goal is context, not the topic.`

type detailInput struct {
	ModuleTitle       string `json:"moduleTitle"`
	ModuleDescription string `json:"moduleDescription"`
	LearningGoal      string `json:"learningGoal"`
}

type outlineOutput struct {
	Modules []learning.Module `json:"modules"`
}

type detailOutput struct {
	Sections []learning.ModuleSection `json:"sections"`
}

func buildOutlineMessage(in learning.LearningGoalInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Learning goal: %s\n", strings.TrimSpace(in.LearningGoal))
	fmt.Fprintf(&b, "Current knowledge level: %s\n", in.CurrentKnowledgeLevel)
	fmt.Fprintf(&b, "Preferred learning style: %s\n", styleLabel(in.PreferredLearningStyle))
	fmt.Fprintf(&b, "Weekly time commitment: %s hours\n", formatHours(in.WeeklyTimeCommitment))
	return b.String()
}

func buildDetailMessage(in detailInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Module: %s\n", in.ModuleTitle)
	if in.ModuleDescription != "" {
		fmt.Fprintf(&b, "Module description: %s\n", in.ModuleDescription)
	}
	if in.LearningGoal != "" {
		fmt.Fprintf(&b, "Learner's overall goal: %s\n", in.LearningGoal)
	}
	return b.String()
}

func styleLabel(s learning.LearningStyle) string {
	if s == learning.StyleInteractiveExercises {
		return "Interactive exercises"
	}
	return string(s)
}

// formatHours drops a trailing ".0" so whole hours read naturally.
func formatHours(h float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", h), ".0")
}
