package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hitensaxena/pathfinder/internal/curriculum"
	"github.com/hitensaxena/pathfinder/internal/learning"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a learning path outline",
	Long: "Generate a curriculum outline for a learning goal. With --save the " +
		"detailed content of every module is generated and the path is stored.",
	RunE: func(cmd *cobra.Command, args []string) error {
		goal, _ := cmd.Flags().GetString("goal")
		level, _ := cmd.Flags().GetString("level")
		style, _ := cmd.Flags().GetString("style")
		hours, _ := cmd.Flags().GetFloat64("hours")
		save, _ := cmd.Flags().GetBool("save")
		owner, _ := cmd.Flags().GetString("owner")
		asJSON, _ := cmd.Flags().GetBool("json")

		in := learning.LearningGoalInput{
			LearningGoal:           goal,
			CurrentKnowledgeLevel:  learning.KnowledgeLevel(level),
			PreferredLearningStyle: learning.LearningStyle(style),
			WeeklyTimeCommitment:   hours,
		}
		if err := in.Validate(); err != nil {
			return err
		}
		if save && owner == "" {
			return fmt.Errorf("--owner is required with --save")
		}

		a, log, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()
		defer a.Close()

		ctx := cmd.Context()
		fmt.Fprintln(os.Stderr, dimStyle.Render("Generating curriculum..."))
		draft, err := a.GeneratePath(ctx, in)
		if err != nil {
			return err
		}

		if asJSON && !save {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(draft)
		}

		fmt.Println(titleStyle.Render(draft.Input.LearningGoal))
		fmt.Println(renderModules(draft.Modules, nil, nil))
		if !save {
			return nil
		}

		total := len(draft.Modules)
		res, err := a.SaveDraft(ctx, owner, draft, func(p curriculum.Progress) {
			switch p.Status {
			case curriculum.StatusSucceeded:
				fmt.Fprintf(os.Stderr, "  %s %s\n", okStyle.Render("✓"), draft.Modules[p.Index].Title)
			case curriculum.StatusFailed:
				fmt.Fprintf(os.Stderr, "  %s %s: %v\n", errStyle.Render("✗"), draft.Modules[p.Index].Title, p.Err)
			}
		})
		if err != nil {
			return err
		}

		fmt.Printf("Saved path %s (%d/%d modules with content)\n", res.PathID, total-len(res.Failed), total)
		for _, f := range res.Failed {
			fmt.Printf("  run `pathfinder paths backfill --owner %s %s %d` to retry %q\n", owner, res.PathID, f.Index, f.Title)
		}
		return nil
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringP("goal", "g", "", "What you want to learn")
	f.StringP("level", "l", string(learning.LevelBeginner), "Current knowledge level (Beginner, Intermediate, Advanced)")
	f.StringP("style", "s", string(learning.StyleArticles), "Preferred learning style (Videos, Articles, InteractiveExercises)")
	f.Float64("hours", 5, "Weekly time commitment in hours")
	f.Bool("save", false, "Generate module content and save the path")
	f.String("owner", "", "Owner id for the saved path")
	f.Bool("json", false, "Print the outline as JSON")
	_ = generateCmd.MarkFlagRequired("goal")
}
