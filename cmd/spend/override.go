package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func overrideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "override <expense-id> <category>",
		Short: "Correct an expense's category",
		Long: `Set an expense's category by hand. The correction becomes ground
truth and retrains your personal model from your full correction history.`,
		Args: cobra.ExactArgs(2),
		RunE: runOverride,
	}
}

func runOverride(cmd *cobra.Command, args []string) error {
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

	expense, err := eng.OverrideCategory(ctx, userID, args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Printf("Expense %s is now %q\n", expense.ID, expense.Category)
	return nil
}
