package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, db, err := bootstrap()
				if err != nil {
					return err
				}
				defer db.Close()
				return db.RunMigrations(cfg.Database.MigrationsPath)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, db, err := bootstrap()
				if err != nil {
					return err
				}
				defer db.Close()
				return db.MigrateDown(cfg.Database.MigrationsPath)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, db, err := bootstrap()
				if err != nil {
					return err
				}
				defer db.Close()

				version, dirty, err := db.MigrationVersion(cfg.Database.MigrationsPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
				return nil
			},
		},
	)
	return cmd
}
