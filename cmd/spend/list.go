package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendsense/internal/service"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent expenses",
		RunE:  runList,
	}

	cmd.Flags().Int("limit", 20, "maximum number of expenses to show")
	cmd.Flags().String("category", "", "only show this category")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	category, _ := cmd.Flags().GetString("category")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	expenses, err := store.GetExpenses(ctx, userID, service.ExpenseFilter{
		Limit:    limit,
		Category: category,
	})
	if err != nil {
		return err
	}

	if len(expenses) == 0 {
		fmt.Println("No expenses recorded.")
		return nil
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%-10s  %10s  %-16s  %s", "Date", "Amount", "Category", "Description")))
	for _, e := range expenses {
		line := fmt.Sprintf("%-10s  %10.2f  %-16s  %s",
			e.Date.Format("2006-01-02"), e.Amount, e.Category, e.Description)
		if e.UserOverride {
			line += subtleStyle.Render("  (corrected)")
		}
		fmt.Println(line)
	}
	return nil
}
