package cmd

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/hitensaxena/pathfinder/internal/quiz"
	"github.com/hitensaxena/pathfinder/internal/ui/quizview"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take the quiz for a module",
	Long: "Generate a 10-question quiz for a module and answer it one question " +
		"at a time. The score is saved as the module's quiz status; 75% passes.",
	Example: "  pathfinder quiz --owner alice --path 3f2c... --module 0",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		pathID, _ := cmd.Flags().GetString("path")
		idx, _ := cmd.Flags().GetInt("module")

		a, log, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()
		defer a.Close()

		ctx := cmd.Context()
		module, err := a.Module(ctx, owner, pathID, idx)
		if err != nil {
			return err
		}
		if err := a.LLMReady(); err != nil {
			return err
		}

		generate := func(ctx context.Context, prev *quiz.Attempt) (*quiz.Attempt, error) {
			if prev == nil {
				return a.Quiz.NewAttempt(ctx, module)
			}
			return a.Quiz.Retake(ctx, module, prev)
		}
		submit := func(ctx context.Context, at *quiz.Attempt) (quiz.Score, error) {
			return a.Quiz.SubmitAttempt(ctx, owner, pathID, idx, at)
		}

		p := tea.NewProgram(
			quizview.New(ctx, module.Title, generate, submit),
			tea.WithContext(ctx),
			tea.WithOutput(cmd.OutOrStdout()),
		)
		final, err := p.Run()
		if err != nil {
			return err
		}

		m := final.(quizview.Model)
		if err := m.Err(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if score, ok := m.Score(); ok {
			fmt.Fprintln(out, quizview.RenderScore(score))
		}
		if m.Abandoned() {
			fmt.Fprintln(out, dimStyle.Render("Quiz abandoned; the unfinished attempt was not saved."))
		}
		return nil
	},
}

func init() {
	quizCmd.Flags().String("owner", "", "Owner id the path belongs to")
	quizCmd.Flags().String("path", "", "Saved path id")
	quizCmd.Flags().Int("module", 0, "Zero-based module index")
	for _, name := range []string{"owner", "path", "module"} {
		_ = quizCmd.MarkFlagRequired(name)
	}
}
