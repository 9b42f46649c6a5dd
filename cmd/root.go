package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hitensaxena/pathfinder/internal/app"
	"github.com/hitensaxena/pathfinder/internal/config"
	"github.com/hitensaxena/pathfinder/internal/logging"
	"github.com/hitensaxena/pathfinder/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "pathfinder",
	Short: "Personalized learning paths",
	Long: "PathFinder generates personalized learning curricula with an LLM, " +
		"expands each module into detailed content, and quizzes learners on it.",
	SilenceUsage: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides PATHFINDER_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PATHFINDER_DB env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file named by --config (or the default path)
// and applies the --db override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if err := store.EnsureDir(p); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		cfg.Store.Driver = "sqlite"
		cfg.Store.SQLitePath = p
	}
	return cfg, nil
}

// openApp loads configuration and builds every component. The caller closes
// the returned App and syncs the logger.
func openApp(cmd *cobra.Command) (*app.App, *logging.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return a, log, nil
}

// openStore opens only the document store, for commands that inspect data
// without generating anything.
func openStore(cmd *cobra.Command) (store.DocumentStore, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(cmd.Context(), cfg.Store)
}
