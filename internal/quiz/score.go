package quiz

import "github.com/hitensaxena/pathfinder/internal/learning"

// Score is the outcome of a quiz attempt.
type Score struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
}

// ScoreQuiz grades answers (question index to chosen option) against
// questions. Unanswered questions count as incorrect. It has no side effects.
func ScoreQuiz(questions []learning.QuizQuestion, answers map[int]int) Score {
	s := Score{Total: len(questions)}
	for i, q := range questions {
		if a, ok := answers[i]; ok && a == q.CorrectAnswerIndex {
			s.Correct++
		}
	}
	if s.Total > 0 {
		s.Percentage = float64(100*s.Correct) / float64(s.Total)
	}
	s.Passed = s.Percentage >= learning.PassThreshold
	return s
}
