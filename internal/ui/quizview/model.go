// Package quizview is the interactive terminal quiz: it generates an
// attempt, asks one question at a time, saves the score and offers a retake
// when the module was not passed.
package quizview

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/hitensaxena/pathfinder/internal/learning"
	"github.com/hitensaxena/pathfinder/internal/quiz"
	"github.com/hitensaxena/pathfinder/internal/ui/components"
	"github.com/hitensaxena/pathfinder/internal/ui/theme"
)

// GenerateFunc produces the next attempt. prev is nil for the first one and
// the last finished attempt on a retake.
type GenerateFunc func(ctx context.Context, prev *quiz.Attempt) (*quiz.Attempt, error)

// SubmitFunc scores a completed attempt and records it.
type SubmitFunc func(ctx context.Context, a *quiz.Attempt) (quiz.Score, error)

type phase int

const (
	phaseGenerating phase = iota
	phaseAnswering
	phaseFeedback
	phaseSaving
	phaseResult
	phaseDone
)

// attemptReadyMsg is sent when question generation finishes.
type attemptReadyMsg struct {
	Attempt *quiz.Attempt
	Err     error
}

// scoredMsg is sent when the attempt has been submitted.
type scoredMsg struct {
	Score quiz.Score
	Err   error
}

// Model drives one or more attempts at a module quiz.
type Model struct {
	ctx      context.Context
	title    string
	generate GenerateFunc
	submit   SubmitFunc

	phase   phase
	spinner spinner.Model
	attempt *quiz.Attempt
	index   int
	choice  components.MultiChoice

	score  quiz.Score
	scored bool
	err    error
}

// New creates a quiz model for the module titled title.
func New(ctx context.Context, title string, generate GenerateFunc, submit SubmitFunc) Model {
	return Model{
		ctx:      ctx,
		title:    title,
		generate: generate,
		submit:   submit,
		spinner:  spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(theme.Dim)),
	}
}

// Init starts generating the first attempt.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.generateCmd(nil))
}

func (m Model) generateCmd(prev *quiz.Attempt) tea.Cmd {
	return func() tea.Msg {
		a, err := m.generate(m.ctx, prev)
		return attemptReadyMsg{Attempt: a, Err: err}
	}
}

func (m Model) submitCmd() tea.Cmd {
	a := m.attempt
	return func() tea.Msg {
		s, err := m.submit(m.ctx, a)
		return scoredMsg{Score: s, Err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.phase != phaseGenerating && m.phase != phaseSaving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case attemptReadyMsg:
		return m.handleAttempt(msg)

	case scoredMsg:
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		m.score = msg.Score
		m.scored = true
		m.phase = phaseResult
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleAttempt(msg attemptReadyMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m.fail(msg.Err)
	}
	if err := msg.Attempt.Start(); err != nil {
		return m.fail(err)
	}
	m.attempt = msg.Attempt
	m.nextQuestion()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.phase = phaseDone
		return m, tea.Quit
	}

	switch m.phase {
	case phaseAnswering:
		if key == "q" || key == "esc" {
			m.phase = phaseDone
			return m, tea.Quit
		}
		m.choice, _ = m.choice.Update(msg)
		if !m.choice.Submitted {
			return m, nil
		}
		if err := m.attempt.Answer(m.choice.ChosenIndex); err != nil {
			return m.fail(err)
		}
		m.phase = phaseFeedback

	case phaseFeedback:
		switch key {
		case "q", "esc":
			m.phase = phaseDone
			return m, tea.Quit
		case "enter", "space", " ":
			if m.nextQuestion() {
				return m, nil
			}
			m.phase = phaseSaving
			return m, tea.Batch(m.spinner.Tick, m.submitCmd())
		}

	case phaseResult:
		if key == "r" && !m.score.Passed {
			prev := m.attempt
			m.attempt = nil
			m.phase = phaseGenerating
			return m, tea.Batch(m.spinner.Tick, m.generateCmd(prev))
		}
		if key == "q" || key == "esc" || key == "enter" {
			m.phase = phaseDone
			return m, tea.Quit
		}
	}
	return m, nil
}

// nextQuestion loads the attempt's current question. It reports false when
// every question has been answered.
func (m *Model) nextQuestion() bool {
	i, q, ok := m.attempt.Current()
	if !ok {
		return false
	}
	m.index = i
	m.choice = components.NewMultiChoice(q.QuestionText, q.Options, q.CorrectAnswerIndex)
	m.phase = phaseAnswering
	return true
}

func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	m.err = err
	m.phase = phaseDone
	return m, tea.Quit
}

// Err returns the error that ended the quiz, if any.
func (m Model) Err() error { return m.err }

// Score returns the most recent submitted score.
func (m Model) Score() (quiz.Score, bool) { return m.score, m.scored }

// Abandoned reports whether the learner quit before the latest attempt was
// answered in full.
func (m Model) Abandoned() bool {
	return m.err == nil && (m.attempt == nil || m.attempt.State() != quiz.Completed)
}

// View implements tea.Model.
func (m Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m Model) render() string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Quiz: "+m.title) + "\n\n")

	switch m.phase {
	case phaseGenerating:
		b.WriteString(m.spinner.View() + " " + theme.Dim.Render("Generating questions...") + "\n")

	case phaseAnswering, phaseFeedback:
		total := len(m.attempt.Questions())
		b.WriteString(theme.Heading.Render(fmt.Sprintf("Question %d/%d", m.index+1, total)) + "\n")
		b.WriteString(m.choice.View())
		if m.phase == phaseFeedback {
			b.WriteString("\n" + m.feedback() + "\n")
			b.WriteString(theme.Hint.Render("enter: continue  q: quit") + "\n")
		} else {
			b.WriteString("\n" + theme.Hint.Render("↑↓/a-d: choose  enter: answer  q: quit") + "\n")
		}

	case phaseSaving:
		b.WriteString(m.spinner.View() + " " + theme.Dim.Render("Saving score...") + "\n")

	case phaseResult:
		b.WriteString(RenderScore(m.score) + "\n")
		if m.score.Passed {
			b.WriteString(theme.Hint.Render("enter: done") + "\n")
		} else {
			b.WriteString(theme.Hint.Render("r: retake with new questions  q: quit") + "\n")
		}
	}
	return b.String()
}

func (m Model) feedback() string {
	q := m.attempt.Questions()[m.index]
	var line string
	if m.choice.IsCorrect() {
		line = theme.Good.Render("Correct!")
	} else {
		line = theme.Bad.Render(fmt.Sprintf("Not quite. The answer is %s) %s",
			components.Label(q.CorrectAnswerIndex), q.Options[q.CorrectAnswerIndex]))
	}
	if q.Explanation != "" {
		line += "\n" + theme.Dim.Render(q.Explanation)
	}
	return line
}

// RenderScore formats a score card.
func RenderScore(s quiz.Score) string {
	line := fmt.Sprintf("Score: %d/%d (%.0f%%)", s.Correct, s.Total, s.Percentage)
	if s.Passed {
		return theme.Card.Render(theme.Good.Render(line + " Passed!"))
	}
	return theme.Card.Render(theme.Bad.Render(fmt.Sprintf("%s Not passed, %d%% needed.", line, learning.PassThreshold)))
}
