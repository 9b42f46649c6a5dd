package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/hitensaxena/pathfinder/internal/learning"
	"github.com/hitensaxena/pathfinder/internal/llm"
)

func TestAttempt_Lifecycle(t *testing.T) {
	qs := testQuestions(10)
	a, err := NewAttempt(qs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.State() != NotStarted || a.ID == "" {
		t.Fatalf("new attempt should be NotStarted with an id: %v %q", a.State(), a.ID)
	}
	if _, _, ok := a.Current(); ok {
		t.Fatal("no current question before start")
	}
	if err := a.Answer(0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("answering before start should fail, got %v", err)
	}

	if err := a.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := a.Start(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double start should fail, got %v", err)
	}

	for i := range 10 {
		idx, q, ok := a.Current()
		if !ok || idx != i || q.QuestionText != qs[i].QuestionText {
			t.Fatalf("step %d: unexpected current %d %q %v", i, idx, q.QuestionText, ok)
		}
		choice := q.CorrectAnswerIndex
		if i >= 8 {
			choice = (choice + 1) % 4
		}
		if err := a.Answer(choice); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	if a.State() != Completed {
		t.Fatalf("expected Completed, got %v", a.State())
	}
	s, ok := a.Score()
	if !ok || s.Percentage != 80 || !s.Passed {
		t.Fatalf("unexpected score: %+v %v", s, ok)
	}
	if err := a.Answer(0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completed attempt is terminal, got %v", err)
	}
}

func TestAttempt_RejectsOutOfRangeChoice(t *testing.T) {
	a, _ := NewAttempt(testQuestions(10))
	_ = a.Start()

	err := a.Answer(4)
	var ve *learning.ValidationError
	if !errors.As(err, &ve) || ve.Index != 0 {
		t.Fatalf("expected ValidationError for question 0, got %v", err)
	}
	if idx, _, _ := a.Current(); idx != 0 {
		t.Fatal("a rejected answer must not advance")
	}
}

func TestAttempt_AnswersAreCopied(t *testing.T) {
	a, _ := NewAttempt(testQuestions(10))
	_ = a.Start()
	_ = a.Answer(1)

	answers := a.Answers()
	answers[0] = 3
	if a.Answers()[0] != 1 {
		t.Fatal("Answers must not expose internal state")
	}
}

func TestNewAttempt_InvalidQuestions(t *testing.T) {
	if _, err := NewAttempt(testQuestions(9)); !learning.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

type recordedStatus struct {
	ownerID, pathID string
	index           int
	score           float64
	passed          bool
}

type fakeStatusWriter struct {
	calls []recordedStatus
	err   error
}

func (f *fakeStatusWriter) UpdateModuleQuizStatus(_ context.Context, ownerID, pathID string, moduleIndex int, score float64, passed bool) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, recordedStatus{ownerID, pathID, moduleIndex, score, passed})
	return nil
}

func TestService_Submit(t *testing.T) {
	w := &fakeStatusWriter{}
	svc := NewService(NewGenerator(llm.NewMockProvider(), DefaultConfig()), w, nil, nil)

	qs := testQuestions(10)
	score, err := svc.Submit(context.Background(), "owner-1", "path-1", 2, qs, answersFor([]int{0, 1, 2, 3, 4, 5, 6, 7}, []int{8, 9}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.Percentage != 80 || !score.Passed {
		t.Fatalf("unexpected score: %+v", score)
	}
	want := recordedStatus{"owner-1", "path-1", 2, 80, true}
	if len(w.calls) != 1 || w.calls[0] != want {
		t.Fatalf("unexpected status write: %+v", w.calls)
	}
}

func TestService_SubmitRejectsBadInput(t *testing.T) {
	w := &fakeStatusWriter{}
	svc := NewService(NewGenerator(llm.NewMockProvider(), DefaultConfig()), w, nil, nil)

	if _, err := svc.Submit(context.Background(), "o", "p", 0, testQuestions(3), nil); !learning.IsValidation(err) {
		t.Fatalf("expected ValidationError for short quiz, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), "o", "p", 0, testQuestions(10), map[int]int{10: 1}); !learning.IsValidation(err) {
		t.Fatalf("expected ValidationError for out-of-range answer key, got %v", err)
	}
	if len(w.calls) != 0 {
		t.Fatal("nothing should be persisted")
	}
}

func TestService_SubmitPropagatesStoreError(t *testing.T) {
	storeErr := &learning.PersistenceError{Op: "update quiz status", PathID: "p", ModuleIndex: 0, Err: errors.New("unavailable")}
	svc := NewService(NewGenerator(llm.NewMockProvider(), DefaultConfig()), &fakeStatusWriter{err: storeErr}, nil, nil)

	_, err := svc.Submit(context.Background(), "o", "p", 0, testQuestions(10), nil)
	if !learning.IsPersistence(err) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}

func TestService_SubmitAttemptRequiresCompletion(t *testing.T) {
	svc := NewService(NewGenerator(llm.NewMockProvider(), DefaultConfig()), &fakeStatusWriter{}, nil, nil)
	a, _ := NewAttempt(testQuestions(10))

	if _, err := svc.SubmitAttempt(context.Background(), "o", "p", 0, a); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestService_RetakeRegenerates(t *testing.T) {
	first := testQuestions(10)
	second := testQuestions(10)
	for i := range second {
		second[i].QuestionText = "Fresh " + second[i].QuestionText
	}
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: quizJSON(first)},
		llm.MockResponse{Content: quizJSON(second)},
	)
	svc := NewService(NewGenerator(mock, DefaultConfig()), &fakeStatusWriter{}, nil, nil)
	module := learning.Module{Title: "Channels", Description: "Pipes"}

	a, err := svc.NewAttempt(context.Background(), module)
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}
	b, err := svc.Retake(context.Background(), module, a)
	if err != nil {
		t.Fatalf("retake: %v", err)
	}
	if b.ID == a.ID || b.State() != NotStarted {
		t.Fatal("retake must be a new, unstarted attempt")
	}
	if b.Questions()[0].QuestionText != "Fresh Question 0?" {
		t.Fatalf("retake should use new questions, got %q", b.Questions()[0].QuestionText)
	}
	if !strings.Contains(mock.Calls[1].Messages[0].Content, "1. Question 0?") {
		t.Fatal("retake prompt should list the previous questions")
	}
}

func TestService_GenerateFailure(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions":[]}`)})
	svc := NewService(NewGenerator(mock, DefaultConfig()), &fakeStatusWriter{}, nil, nil)

	if _, err := svc.Generate(context.Background(), learning.Module{Title: "x"}); !learning.IsGeneration(err) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}
