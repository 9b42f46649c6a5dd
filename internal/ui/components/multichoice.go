// Package components contains reusable Bubble Tea widgets.
package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/hitensaxena/pathfinder/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector. Arrow keys (or j/k) move the
// cursor and enter submits; a letter or number submits that option directly.
type MultiChoice struct {
	Question     string
	Options      []string
	CorrectIndex int
	Selected     int
	Submitted    bool
	ChosenIndex  int
}

// NewMultiChoice creates a new multiple-choice component.
func NewMultiChoice(question string, options []string, correctIndex int) MultiChoice {
	return MultiChoice{
		Question:     question,
		Options:      options,
		CorrectIndex: correctIndex,
		ChosenIndex:  -1,
	}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation and selection.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		m.submit(m.Selected)
	default:
		if i, ok := m.shortcut(key); ok {
			m.submit(i)
		}
	}

	return m, nil
}

func (m *MultiChoice) submit(i int) {
	m.Selected = i
	m.ChosenIndex = i
	m.Submitted = true
}

// shortcut maps "a".."d" and "1".."4" (for four options) to an index.
func (m MultiChoice) shortcut(key string) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	n := len(m.Options)
	switch {
	case c >= 'a' && int(c-'a') < n:
		return int(c - 'a'), true
	case c >= '1' && int(c-'1') < n:
		return int(c - '1'), true
	}
	return 0, false
}

// Label returns the letter shown for option i.
func Label(i int) string {
	return string(rune('A' + i))
}

// View renders the question and its options. Once submitted, the correct
// option is green and a wrong choice red.
func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, Label(i), opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.Submitted && i == m.CorrectIndex:
			style = lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
		case m.Submitted && i == m.ChosenIndex:
			style = lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
		case m.Submitted:
			style = theme.Dim
		case i == m.Selected:
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	return b.String()
}

// IsCorrect reports whether the submitted choice is the correct one.
func (m MultiChoice) IsCorrect() bool {
	return m.Submitted && m.ChosenIndex == m.CorrectIndex
}
