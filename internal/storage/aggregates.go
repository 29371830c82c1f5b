package storage

import (
	"context"
	"fmt"
	"time"

	"spendsense/internal/model"
)

// SumByWeek returns per-week spend totals for a user within [start, end].
// Weeks start on Monday.
func (s *SQLiteStorage) SumByWeek(ctx context.Context, userID string, start, end time.Time) ([]model.WeeklyTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}

	// 'weekday 0','-6 days' truncates any date to the Monday of its week
	query := `
		SELECT date(date, 'weekday 0', '-6 days') AS week_start, SUM(amount)
		FROM expenses
		WHERE user_id = ? AND date >= ? AND date <= ?
		GROUP BY week_start
		ORDER BY week_start`

	rows, err := s.db.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly totals: %w", err)
	}
	defer rows.Close()

	var totals []model.WeeklyTotal
	for rows.Next() {
		var bucket string
		var total float64
		if err := rows.Scan(&bucket, &total); err != nil {
			return nil, fmt.Errorf("failed to scan weekly total: %w", err)
		}
		weekStart, err := time.Parse("2006-01-02", bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to parse week bucket %q: %w", bucket, err)
		}
		totals = append(totals, model.WeeklyTotal{WeekStart: weekStart, Total: total})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weekly totals: %w", err)
	}

	return totals, nil
}

// SumByMonth returns per-month spend totals for a user within [start, end].
func (s *SQLiteStorage) SumByMonth(ctx context.Context, userID string, start, end time.Time) ([]model.MonthlyTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}

	query := `
		SELECT date(date, 'start of month') AS month_start, SUM(amount)
		FROM expenses
		WHERE user_id = ? AND date >= ? AND date <= ?
		GROUP BY month_start
		ORDER BY month_start`

	rows, err := s.db.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly totals: %w", err)
	}
	defer rows.Close()

	var totals []model.MonthlyTotal
	for rows.Next() {
		var bucket string
		var total float64
		if err := rows.Scan(&bucket, &total); err != nil {
			return nil, fmt.Errorf("failed to scan monthly total: %w", err)
		}
		monthStart, err := time.Parse("2006-01-02", bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to parse month bucket %q: %w", bucket, err)
		}
		totals = append(totals, model.MonthlyTotal{MonthStart: monthStart, Total: total})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly totals: %w", err)
	}

	return totals, nil
}

// SumByCategory returns a user's all-time spend per category, largest first.
// Uncategorized expenses are grouped under "Uncategorized".
func (s *SQLiteStorage) SumByCategory(ctx context.Context, userID string, limit int) ([]model.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT CASE WHEN category = '' THEN 'Uncategorized' ELSE category END AS cat,
			SUM(amount) AS total
		FROM expenses
		WHERE user_id = ?
		GROUP BY cat
		ORDER BY total DESC`
	args := []any{userID}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer rows.Close()

	var totals []model.CategoryTotal
	for rows.Next() {
		var t model.CategoryTotal
		if err := rows.Scan(&t.Category, &t.Total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}

	return totals, nil
}
