package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"spendsense/internal/model"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new expense",
		Long: `Record an expense. When --category is omitted, a category is
predicted from the description and stored alongside its confidence.`,
		RunE: runAdd,
	}

	cmd.Flags().Float64("amount", 0, "expense amount (required)")
	cmd.Flags().String("description", "", "free-text description")
	cmd.Flags().String("category", "", "category (omit to let the model predict)")
	cmd.Flags().String("date", "", "expense date as YYYY-MM-DD (default: today)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runAdd(cmd *cobra.Command, _ []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}

	amount, _ := cmd.Flags().GetFloat64("amount")
	description, _ := cmd.Flags().GetString("description")
	category, _ := cmd.Flags().GetString("category")
	dateStr, _ := cmd.Flags().GetString("date")

	date := time.Now()
	if dateStr != "" {
		date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", dateStr, err)
		}
	}

	ctx := cmd.Context()
	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	expense := &model.Expense{
		UserID:      userID,
		Amount:      amount,
		Description: description,
		Category:    category,
		Date:        date,
	}

	if err := eng.CreateExpense(ctx, expense); err != nil {
		return err
	}

	fmt.Printf("Recorded expense %s\n", expense.ID)
	if expense.UserOverride {
		fmt.Printf("  category: %s (yours)\n", expense.Category)
	} else {
		fmt.Printf("  category: %s (predicted, confidence %.2f)\n",
			expense.Category, *expense.AIConfidence)
	}
	return nil
}
