package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hitensaxena/pathfinder/internal/curriculum"
	"github.com/hitensaxena/pathfinder/internal/learning"
	"github.com/hitensaxena/pathfinder/internal/video"
)

type renameRequest struct {
	LearningGoal string `json:"learningGoal"`
}

type submitRequest struct {
	Questions []learning.QuizQuestion `json:"questions"`
	Answers   map[int]int             `json:"answers"`
}

type submitResponse struct {
	Score   float64 `json:"score"`
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
	Passed  bool    `json:"passed"`
}

type videoResponse struct {
	video.Video
	URL string `json:"url"`
}

// bind decodes the JSON body into v, reporting malformed bodies as 400.
func (s *Server) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		s.fail(c, learning.Invalid("body", "%v", err))
		return false
	}
	return true
}

// moduleIndex parses the :index path parameter.
func (s *Server) moduleIndex(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 {
		s.fail(c, learning.Invalid("moduleIndex", "must be a non-negative integer, got %q", c.Param("index")))
		return 0, false
	}
	return idx, true
}

func (s *Server) generatePath(c *gin.Context) {
	var in learning.LearningGoalInput
	if !s.bind(c, &in) {
		return
	}
	draft, err := s.app.GeneratePath(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (s *Server) savePath(c *gin.Context) {
	var draft curriculum.Draft
	if !s.bind(c, &draft) {
		return
	}
	res, err := s.app.SaveDraft(c.Request.Context(), owner(c), draft, nil)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) listPaths(c *gin.Context) {
	recs, err := s.app.Paths.ListByOwner(c.Request.Context(), owner(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paths": recs})
}

func (s *Server) getPath(c *gin.Context) {
	rec, err := s.app.Paths.Get(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) renamePath(c *gin.Context) {
	var req renameRequest
	if !s.bind(c, &req) {
		return
	}
	if err := s.app.Paths.RenameGoal(c.Request.Context(), owner(c), c.Param("id"), req.LearningGoal); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deletePath(c *gin.Context) {
	if err := s.app.Paths.Delete(c.Request.Context(), owner(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) backfillModule(c *gin.Context) {
	idx, ok := s.moduleIndex(c)
	if !ok {
		return
	}
	detail, err := s.app.BackfillModule(c.Request.Context(), owner(c), c.Param("id"), idx)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) generateQuiz(c *gin.Context) {
	idx, ok := s.moduleIndex(c)
	if !ok {
		return
	}
	qs, err := s.app.GenerateQuiz(c.Request.Context(), owner(c), c.Param("id"), idx)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": qs})
}

func (s *Server) submitQuiz(c *gin.Context) {
	idx, ok := s.moduleIndex(c)
	if !ok {
		return
	}
	var req submitRequest
	if !s.bind(c, &req) {
		return
	}
	score, err := s.app.Quiz.Submit(c.Request.Context(), owner(c), c.Param("id"), idx, req.Questions, req.Answers)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, submitResponse{
		Score:   score.Percentage,
		Correct: score.Correct,
		Total:   score.Total,
		Passed:  score.Passed,
	})
}

func (s *Server) searchVideo(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		s.fail(c, learning.Invalid("q", "must not be empty"))
		return
	}
	if s.app.Video == nil {
		s.fail(c, video.ErrMissingAPIKey)
		return
	}
	v, err := s.app.Video.Search(c.Request.Context(), q)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, videoResponse{Video: *v, URL: v.URL()})
}
