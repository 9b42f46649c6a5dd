package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hitensaxena/pathfinder/internal/learning"
	"github.com/hitensaxena/pathfinder/internal/pathrecord"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Manage saved learning paths",
}

// withPaths opens the store and runs fn against the path service.
func withPaths(cmd *cobra.Command, fn func(svc *pathrecord.Service, owner string) error) error {
	owner, _ := cmd.Flags().GetString("owner")
	if owner == "" {
		return fmt.Errorf("--owner is required")
	}
	docs, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer docs.Close()
	return fn(pathrecord.NewService(docs, nil, nil), owner)
}

var pathsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved paths, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPaths(cmd, func(svc *pathrecord.Service, owner string) error {
			recs, err := svc.ListByOwner(cmd.Context(), owner)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("No saved paths.")
				return nil
			}

			fmt.Printf("%-36s  %-16s  %-7s  %-7s  %s\n", "ID", "Created", "Modules", "Passed", "Goal")
			fmt.Println(rule(100))
			for _, r := range recs {
				passed := 0
				for _, s := range r.ModuleQuizStatus {
					if s.Passed {
						passed++
					}
				}
				fmt.Printf("%-36s  %-16s  %-7d  %-7s  %s\n",
					r.ID,
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					len(r.Modules),
					fmt.Sprintf("%d/%d", passed, len(r.Modules)),
					r.LearningGoal,
				)
			}
			return nil
		})
	},
}

var pathsShowCmd = &cobra.Command{
	Use:   "show <path-id> [module]",
	Short: "Show a path, or the detailed content of one module",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPaths(cmd, func(svc *pathrecord.Service, owner string) error {
			rec, err := svc.Get(cmd.Context(), owner, args[0])
			if err != nil {
				return err
			}

			if len(args) == 1 {
				fmt.Println(titleStyle.Render(rec.LearningGoal))
				fmt.Println(dimStyle.Render("Created " + rec.CreatedAt.Local().Format("2006-01-02 15:04")))
				fmt.Println(renderModules(rec.Modules, rec.ModulesDetails, rec.ModuleQuizStatus))
				return nil
			}

			idx, err := parseModuleArg(args[1], len(rec.Modules))
			if err != nil {
				return err
			}
			fmt.Println(titleStyle.Render(rec.Modules[idx].Title))
			fmt.Println(rule(60))
			d, ok := rec.Detail(idx)
			if !ok {
				fmt.Println(errStyle.Render("No detailed content yet. Run `pathfinder paths backfill` to generate it."))
				return nil
			}
			fmt.Print(renderDetail(d))
			return nil
		})
	},
}

var pathsRenameCmd = &cobra.Command{
	Use:   "rename <path-id> <new goal>",
	Short: "Change the learning goal of a path",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPaths(cmd, func(svc *pathrecord.Service, owner string) error {
			if err := svc.RenameGoal(cmd.Context(), owner, args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("Renamed.")
			return nil
		})
	},
}

var pathsDeleteCmd = &cobra.Command{
	Use:   "delete <path-id>",
	Short: "Delete a path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPaths(cmd, func(svc *pathrecord.Service, owner string) error {
			if err := svc.Delete(cmd.Context(), owner, args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		})
	},
}

var pathsBackfillCmd = &cobra.Command{
	Use:   "backfill <path-id> <module>",
	Short: "Generate missing detailed content for a module",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		if owner == "" {
			return fmt.Errorf("--owner is required")
		}
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid module %q: %w", args[1], err)
		}

		a, log, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()
		defer a.Close()

		d, err := a.BackfillModule(cmd.Context(), owner, args[0], idx)
		if err != nil {
			return err
		}
		fmt.Print(renderDetail(d))
		return nil
	},
}

// parseModuleArg parses a zero-based module index and checks it against n.
func parseModuleArg(s string, n int) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid module %q: %w", s, err)
	}
	if idx < 0 || idx >= n {
		return 0, &learning.NotFoundError{Kind: "module", ID: s}
	}
	return idx, nil
}

func init() {
	pathsCmd.PersistentFlags().String("owner", "", "Owner id the paths belong to")

	pathsCmd.AddCommand(pathsListCmd)
	pathsCmd.AddCommand(pathsShowCmd)
	pathsCmd.AddCommand(pathsRenameCmd)
	pathsCmd.AddCommand(pathsDeleteCmd)
	pathsCmd.AddCommand(pathsBackfillCmd)
}
