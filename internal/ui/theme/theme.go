// Package theme holds the terminal color palette shared by the CLI and the
// interactive quiz.
package theme

import (
	"charm.land/lipgloss/v2"
)

var (
	Primary   = lipgloss.Color("#8B5CF6")
	Secondary = lipgloss.Color("#14B8A6")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
)

var (
	Title   = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Heading = lipgloss.NewStyle().Bold(true).Foreground(Secondary)
	Dim     = lipgloss.NewStyle().Foreground(TextDim)
	Hint    = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	Good    = lipgloss.NewStyle().Foreground(Success)
	Bad     = lipgloss.NewStyle().Foreground(Error)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(TextDim).
		Padding(0, 1)
)
