package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bookclub/roster-admin/cmd/cli/commands"
	"github.com/bookclub/roster-admin/internal/config"
	"github.com/bookclub/roster-admin/pkg/postgres"
	"github.com/bookclub/roster-admin/pkg/utils/logging"
)

var (
	env string
	app = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "roster",
		Short: "Roster Admin CLI - Manage book-club participants",
		Long:  `A CLI tool for importing rosters, searching and exporting participants, managing meetings and leaders, and running the roster API.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Database != nil {
				app.Database.Close()
			}
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.ImportRosterCmd(app))
	rootCmd.AddCommand(commands.ImportSheetCmd(app))
	rootCmd.AddCommand(commands.SearchParticipantsCmd(app))
	rootCmd.AddCommand(commands.ExportParticipantsCmd(app))
	rootCmd.AddCommand(commands.ListMeetingsCmd(app))
	rootCmd.AddCommand(commands.CreateMeetingCmd(app))
	rootCmd.AddCommand(commands.RenameMeetingCmd(app))
	rootCmd.AddCommand(commands.DeleteMeetingCmd(app))
	rootCmd.AddCommand(commands.ListLeadersCmd(app))
	rootCmd.AddCommand(commands.AddLeaderCmd(app))
	rootCmd.AddCommand(commands.AssignLeaderCmd(app))
	rootCmd.AddCommand(commands.RemoveLeaderCmd(app))
	rootCmd.AddCommand(commands.ResolveRoleCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp loads config, then sets up the logger and database
func initApp() error {
	var err error
	app.Env = env
	app.Ctx = context.Background()

	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.Logger, err = logging.InitLogger(env, app.Cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Info("Connecting to database")
	database, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.Database = database
	app.Logger.Info("Database initialized successfully")

	return nil
}
