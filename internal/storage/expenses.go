package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"spendsense/internal/common"
	"spendsense/internal/model"
	"spendsense/internal/service"
)

// CreateExpense inserts a new expense row.
func (s *SQLiteStorage) CreateExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}

	query := `
		INSERT INTO expenses (id, user_id, amount, description, category,
			predicted_category, ai_confidence, user_override, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		expense.ID,
		expense.UserID,
		expense.Amount,
		expense.Description,
		expense.Category,
		expense.PredictedCategory,
		expense.AIConfidence,
		expense.UserOverride,
		expense.Date,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("%w: expense %s", common.ErrDuplicateEntry, expense.ID)
		}
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	slog.Debug("created expense", "id", expense.ID, "user", expense.UserID)
	return nil
}

// GetExpenseByID returns one expense owned by the given user.
func (s *SQLiteStorage) GetExpenseByID(ctx context.Context, userID, id string) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, amount, description, category, predicted_category,
			ai_confidence, user_override, date, created_at, updated_at
		FROM expenses
		WHERE id = ? AND user_id = ?`

	var e model.Expense
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&e.ID, &e.UserID, &e.Amount, &e.Description, &e.Category,
		&e.PredictedCategory, &e.AIConfidence, &e.UserOverride,
		&e.Date, &e.CreatedAt, &e.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: expense %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query expense: %w", err)
	}

	return &e, nil
}

// GetExpenses returns a user's expenses matching the filter, newest first.
func (s *SQLiteStorage) GetExpenses(ctx context.Context, userID string, filter service.ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return nil, ErrInvalidDateRange
	}

	query := `
		SELECT id, user_id, amount, description, category, predicted_category,
			ai_confidence, user_override, date, created_at, updated_at
		FROM expenses
		WHERE user_id = ?`
	args := []any{userID}

	if filter.StartDate != nil {
		query += " AND date >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND date <= ?"
		args = append(args, *filter.EndDate)
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.OverrideOnly {
		query += " AND user_override = 1 AND category <> ''"
	}

	query += " ORDER BY date DESC, created_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Amount, &e.Description, &e.Category,
			&e.PredictedCategory, &e.AIConfidence, &e.UserOverride,
			&e.Date, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

// UpdateExpenseCategory sets the category on an expense. When userOverride is
// true the category is treated as human ground truth from then on.
func (s *SQLiteStorage) UpdateExpenseCategory(ctx context.Context, userID, id, category string, userOverride bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}

	query := `
		UPDATE expenses
		SET category = ?, user_override = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`

	result, err := s.db.ExecContext(ctx, query, category, userOverride, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to update expense category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: expense %s", common.ErrNotFound, id)
	}

	return nil
}

// CountExpenses returns the number of expenses recorded for a user.
func (s *SQLiteStorage) CountExpenses(ctx context.Context, userID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM expenses WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}

// ListUserIDs returns the distinct user ids present in the expense table.
func (s *SQLiteStorage) ListUserIDs(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT user_id FROM expenses ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		users = append(users, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
