package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/library-api/internal/config"
	"github.com/library-api/internal/database"
	"github.com/library-api/pkg/logger"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "library-api",
		Short:         "Article publishing API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "directory containing config.yaml")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newCreateStaffCmd())
	return root
}

// bootstrap loads configuration, builds the logger and connects to the database
func bootstrap() (*config.Config, zerolog.Logger, *database.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, log, nil, err
	}
	return cfg, log, db, nil
}
