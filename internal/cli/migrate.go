package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/snapquiz/backend/internal/config"
	"github.com/snapquiz/backend/internal/store"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(*configPath)
		},
	}
}

func runMigrations(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !cfg.DatabaseConfigured() {
		return fmt.Errorf("database not configured")
	}

	db, err := store.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Migrate(db); err != nil {
		return err
	}
	log.Println("Schema applied")
	return nil
}
