package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-assistant/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  "Apply the users and interview_sessions schema to DATABASE_URL. Running it again is a no-op.",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if err := appConfig.Validate(); err != nil {
		return err
	}

	store, err := db.Open(cmd.Context(), appConfig.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer store.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date (%s)\n", db.Dialect(appConfig.DatabaseURL))
	return nil
}
