package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/eduflux/internal/database"
)

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migration commands",
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending schema migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigration(func(m *database.Migrator) error {
					return m.Up()
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all schema migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigration(func(m *database.Migrator) error {
					return m.Down()
				})
			},
		},
	)

	return migrateCmd
}

func runMigration(fn func(*database.Migrator) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("database.Open() > %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	migrator, err := database.NewMigrator(db, cfg.Database.Database)
	if err != nil {
		return fmt.Errorf("database.NewMigrator() > %w", err)
	}
	return fn(migrator)
}
