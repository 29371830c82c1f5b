package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendsense/internal/insights"
)

func insightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show spending summaries and anomalies",
		RunE:  runInsights,
	}
}

func runInsights(cmd *cobra.Command, _ []string) error {
	userID, err := requireUser()
	if err != nil {
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

	fmt.Println(titleStyle.Render("Spending Insights"))

	fmt.Println(headerStyle.Render("Weekly totals (last 30 days)"))
	if len(report.Weekly) == 0 {
		fmt.Println(subtleStyle.Render("  no expenses"))
	}
	for _, w := range report.Weekly {
		fmt.Printf("  week of %s  %10.2f\n", w.WeekStart.Format("2006-01-02"), w.Total)
	}

	fmt.Println(headerStyle.Render("Monthly totals (last 6 months)"))
	for _, m := range report.Monthly {
		fmt.Printf("  %s  %10.2f\n", m.MonthStart.Format("2006-01"), m.Total)
	}

	fmt.Println(headerStyle.Render("Top categories"))
	for _, c := range report.TopCategories {
		fmt.Printf("  %-20s  %10.2f\n", c.Category, c.Total)
	}

	if len(report.Anomalies) > 0 {
		fmt.Println(warnStyle.Render("Unusual expenses"))
		for _, a := range report.Anomalies {
			fmt.Printf("  %s  %10.2f  %s\n",
				a.Date.Format("2006-01-02"), a.Amount, a.Description)
		}
	}

	return nil
}
