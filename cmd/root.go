// Package cmd is the quill command line: the HTTP server plus the
// maintenance commands an operator needs around it.
package cmd

import (
	"fmt"

	"quill/config"
	"quill/database"
	"quill/logging"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "A small blogging platform with posts, tags, likes and comments",
	Long: `Quill serves a JSON blog API backed by PostgreSQL or SQLite.

Configuration is read from .env, config.yaml and the environment
(DB_DRIVER, DB_HOST, JWT_SECRET, MEDIA_ROOT, ...).

Running quill without a subcommand starts the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
}

// bootstrap loads configuration, installs the default logger and opens the
// store. Callers own the returned connection.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg := config.Load()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}
	return cfg, db, nil
}

func closeDB(db *gorm.DB) {
	if err := database.Close(db); err != nil {
		fmt.Printf("failed to close database: %v\n", err)
	}
}
