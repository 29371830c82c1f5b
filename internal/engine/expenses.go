package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"spendsense/internal/common"
	"spendsense/internal/model"
)

// CreateExpense records a new expense, predicting a category when the caller
// did not supply one. A supplied category counts as human ground truth and
// sets the override flag.
func (e *Engine) CreateExpense(ctx context.Context, expense *model.Expense) error {
	if expense.ID == "" {
		expense.ID = model.NewExpenseID()
	}

	if strings.TrimSpace(expense.Category) == "" {
		result := e.PredictCategory(ctx, expense.Description, expense.UserID)
		confidence := result.Confidence
		expense.PredictedCategory = result.Label
		expense.AIConfidence = &confidence
		expense.Category = result.Label
		expense.UserOverride = false
	} else {
		expense.UserOverride = true
	}

	if err := e.storage.CreateExpense(ctx, expense); err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// OverrideCategory sets a human-chosen category on an existing expense and
// feeds the correction into the user's model. Repeated identical overrides
// simply re-include the same example; minor model drift is acceptable.
func (e *Engine) OverrideCategory(ctx context.Context, userID, expenseID, category string) (*model.Expense, error) {
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("%w: missing category", common.ErrInvalidFeedback)
	}

	if err := e.storage.UpdateExpenseCategory(ctx, userID, expenseID, category, true); err != nil {
		return nil, err
	}

	// The updated row is already part of the override history, so a plain
	// retrain picks it up without double-counting.
	if err := e.retrainUser(ctx, userID, nil); err != nil {
		slog.Warn("override saved but model retrain failed",
			"user", userID, "expense", expenseID, "error", err)
	}

	return e.storage.GetExpenseByID(ctx, userID, expenseID)
}
