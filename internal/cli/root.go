package cli

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"todolists/config"
	"todolists/internal/database"
	"todolists/internal/logging"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "todolists",
		Short:        "To-do lists server with public and private lists",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "settings file (defaults apply when missing)")

	cmd.AddCommand(serveCmd(&configPath))
	cmd.AddCommand(migrateCmd(&configPath))
	cmd.AddCommand(userCmd(&configPath))
	return cmd
}

// env bundles what every subcommand needs: settings, logging and the database.
type env struct {
	settings config.Settings
	db       *database.DB
	closeLog func() error
}

func openEnv(configPath string) (*env, error) {
	mgr := config.NewManager(configPath)
	settings, err := mgr.Load()
	if err != nil {
		return nil, err
	}

	closeLog, err := logging.Setup(settings.LoggingConfig())
	if err != nil {
		return nil, err
	}
	log.Printf("[config] settings from %s", mgr.Path())

	db, err := database.NewDB(settings.DatabaseConfig())
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	return &env{settings: settings, db: db, closeLog: closeLog}, nil
}

func (e *env) Close() {
	_ = e.db.Close()
	_ = e.closeLog()
}
