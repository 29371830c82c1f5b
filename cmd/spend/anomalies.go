package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func anomaliesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anomalies",
		Short: "Flag statistically unusual expenses",
		RunE:  runAnomalies,
	}

	cmd.Flags().Int("months", 6, "lookback window in months")

	return cmd
}

func runAnomalies(cmd *cobra.Command, _ []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}
	months, _ := cmd.Flags().GetInt("months")

	ctx := cmd.Context()
	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	anomalies, err := eng.DetectAnomalies(ctx, userID, months)
	if err != nil {
		return err
	}

	if len(anomalies) == 0 {
		fmt.Println("No anomalies detected.")
		return nil
	}

	fmt.Println(warnStyle.Render(fmt.Sprintf("%d unusual expense(s)", len(anomalies))))
	for _, a := range anomalies {
		fmt.Printf("  %s  %10.2f  %s  (score %.3f)\n",
			a.Date.Format("2006-01-02"), a.Amount, a.Description, a.Score)
	}
	return nil
}
