package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/dom/gemrealm/internal/config"
	"github.com/dom/gemrealm/internal/repository/postgres"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the account and session tables and their indexes",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	cmd.Println("Connecting to database...")
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	cmd.Println("Running migrations...")
	if err := postgres.Migrate(db); err != nil {
		return err
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
