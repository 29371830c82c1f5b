package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"spendsense/internal/insights"
	"spendsense/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the insights report to Google Sheets",
		Long: `Export the spending insights report to a Google Sheets spreadsheet.

Requires service account credentials; configure via GOOGLE_SHEETS_*
environment variables.`,
		RunE: runExport,
	}

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}

	cfg := sheets.DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	report, err := insights.New(store, eng).Build(ctx, userID)
	if err != nil {
		return err
	}

	writer, err := sheets.NewWriter(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}

	if err := writer.Write(ctx, report); err != nil {
		return err
	}

	fmt.Println("Report exported to Google Sheets.")
	return nil
}
