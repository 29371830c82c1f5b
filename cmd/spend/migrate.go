package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendsense/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE:  runMigrate,
	}

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	// initStorage migrates as part of opening the database.
	store, err := initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	fmt.Printf("Database schema is at version %d.\n", storage.ExpectedSchemaVersion)
	return nil
}
