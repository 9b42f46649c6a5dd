package cmd

import (
	"fmt"
	"strings"

	"github.com/hitensaxena/pathfinder/internal/learning"
	"github.com/hitensaxena/pathfinder/internal/ui/theme"
)

var (
	titleStyle   = theme.Title
	headingStyle = theme.Heading
	dimStyle     = theme.Dim
	okStyle      = theme.Good
	errStyle     = theme.Bad
	cardStyle    = theme.Card
)

func rule(n int) string {
	return dimStyle.Render(strings.Repeat("─", n))
}

// renderModules prints the outline of a curriculum, one card per module.
func renderModules(modules []learning.Module, details map[string]learning.ModuleDetail, status map[string]learning.QuizStatus) string {
	var b strings.Builder
	for i, m := range modules {
		var body strings.Builder
		body.WriteString(headingStyle.Render(fmt.Sprintf("[%d] %s", i, m.Title)))
		if m.Description != "" {
			body.WriteString("\n" + m.Description)
		}
		if m.EstimatedTime != "" {
			body.WriteString("\n" + dimStyle.Render("Time: "+m.EstimatedTime))
		}
		if m.SuggestedResources != "" {
			body.WriteString("\n" + dimStyle.Render("Resources: "+m.SuggestedResources))
		}

		key := learning.IndexKey(i)
		if details != nil {
			if d, ok := details[key]; ok {
				body.WriteString("\n" + okStyle.Render(fmt.Sprintf("%d sections", len(d.Sections))))
			} else {
				body.WriteString("\n" + errStyle.Render("no detailed content"))
			}
		}
		if s, ok := status[key]; ok {
			label := errStyle.Render(fmt.Sprintf("quiz %.0f%%", s.LastScore))
			if s.Passed {
				label = okStyle.Render(fmt.Sprintf("quiz %.0f%% passed", s.LastScore))
			}
			body.WriteString("\n" + label)
		}

		b.WriteString(cardStyle.Render(body.String()))
		b.WriteString("\n")
	}
	return b.String()
}

// renderDetail prints the sections of one module.
func renderDetail(d learning.ModuleDetail) string {
	var b strings.Builder
	for _, s := range d.Sections {
		b.WriteString(headingStyle.Render(s.SectionTitle) + "\n")
		b.WriteString(s.SectionContent + "\n")
		if s.RecommendedYoutubeVideoQuery != "" {
			b.WriteString(dimStyle.Render("Video search: "+s.RecommendedYoutubeVideoQuery) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
