package learning

import (
	"strconv"
	"time"
)

// Quiz shape and pass policy.
const (
	QuizSize           = 10
	OptionsPerQuestion = 4

	// PassThreshold is the minimum percentage that passes a module quiz.
	PassThreshold = 75
)

// KnowledgeLevel is the learner's self-reported starting level.
type KnowledgeLevel string

const (
	LevelBeginner     KnowledgeLevel = "Beginner"
	LevelIntermediate KnowledgeLevel = "Intermediate"
	LevelAdvanced     KnowledgeLevel = "Advanced"
)

// Valid reports whether l is one of the known levels.
func (l KnowledgeLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// LearningStyle is the learner's preferred way of consuming material.
type LearningStyle string

const (
	StyleVideos               LearningStyle = "Videos"
	StyleArticles             LearningStyle = "Articles"
	StyleInteractiveExercises LearningStyle = "InteractiveExercises"
)

// Valid reports whether s is one of the known styles.
func (s LearningStyle) Valid() bool {
	switch s {
	case StyleVideos, StyleArticles, StyleInteractiveExercises:
		return true
	}
	return false
}

// LearningGoalInput is a curriculum generation request. It is treated as
// immutable once submitted.
type LearningGoalInput struct {
	LearningGoal           string         `json:"learningGoal"`
	CurrentKnowledgeLevel  KnowledgeLevel `json:"currentKnowledgeLevel"`
	PreferredLearningStyle LearningStyle  `json:"preferredLearningStyle"`
	WeeklyTimeCommitment   float64        `json:"weeklyTimeCommitment"`
}

// Module is one unit of a generated curriculum. Its position in the
// curriculum is its identity and never changes after creation.
type Module struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	SuggestedResources string `json:"suggestedResources"`
	EstimatedTime      string `json:"estimatedTime"`
}

// ModuleSection is one sub-unit of detailed content for a module.
type ModuleSection struct {
	SectionTitle                 string `json:"sectionTitle"`
	SectionContent               string `json:"sectionContent"`
	RecommendedYoutubeVideoQuery string `json:"recommendedYoutubeVideoQuery"`
}

// ModuleDetail is the detailed content stored for one module.
//
// Records written before sections existed carry a single markdown blob in
// LegacyContent. Normalize converts those to the sectioned form; code that
// consumes a normalized detail only ever sees Sections.
type ModuleDetail struct {
	Sections      []ModuleSection `json:"sections,omitempty"`
	LegacyContent string          `json:"content,omitempty"`
}

// IsLegacy reports whether d still uses the flat content shape.
func (d ModuleDetail) IsLegacy() bool {
	return len(d.Sections) == 0 && d.LegacyContent != ""
}

// Normalize returns d in sectioned form. A legacy detail becomes a single
// section titled after the module.
func (d ModuleDetail) Normalize(moduleTitle string) ModuleDetail {
	if !d.IsLegacy() {
		return ModuleDetail{Sections: d.Sections}
	}
	title := moduleTitle
	if title == "" {
		title = "Overview"
	}
	return ModuleDetail{Sections: []ModuleSection{{
		SectionTitle:   title,
		SectionContent: d.LegacyContent,
	}}}
}

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	QuestionText       string   `json:"questionText"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation,omitempty"`
}

// QuizStatus is the stored outcome of the latest quiz attempt for a module.
type QuizStatus struct {
	LastScore float64 `json:"lastScore"`
	Passed    bool    `json:"passed"`
}

// PathRecord is the persisted aggregate for one saved learning path.
type PathRecord struct {
	ID               string                  `json:"id"`
	OwnerID          string                  `json:"ownerId"`
	LearningGoal     string                  `json:"learningGoal"`
	Modules          []Module                `json:"modules"`
	ModulesDetails   map[string]ModuleDetail `json:"modulesDetails"`
	ModuleQuizStatus map[string]QuizStatus   `json:"moduleQuizStatus"`
	CreatedAt        time.Time               `json:"createdAt"`
}

// Detail returns the stored detail for the module at index.
func (r *PathRecord) Detail(index int) (ModuleDetail, bool) {
	d, ok := r.ModulesDetails[IndexKey(index)]
	return d, ok
}

// QuizStatusFor returns the stored quiz status for the module at index.
func (r *PathRecord) QuizStatusFor(index int) (QuizStatus, bool) {
	s, ok := r.ModuleQuizStatus[IndexKey(index)]
	return s, ok
}

// IndexKey is the string key used for a module index in per-module maps.
func IndexKey(index int) string {
	return strconv.Itoa(index)
}
