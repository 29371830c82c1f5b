// Package testutil provides shared helpers for tests that need a real
// migrated database with seeded expense history.
package testutil

import (
	"context"
	"testing"
	"time"

	"spendsense/internal/model"
	"spendsense/internal/storage"
)

// TestDB wraps an in-memory migrated store for a single test.
type TestDB struct {
	Store *storage.SQLiteStorage
	t     *testing.T
}

// SetupTestDB creates an in-memory database, runs migrations, and registers
// cleanup on the test.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Store: store, t: t}
}

// SeedExpense inserts one expense and fails the test on error. Zero-value
// fields get sensible defaults so callers only set what they assert on.
func (db *TestDB) SeedExpense(expense model.Expense) model.Expense {
	db.t.Helper()

	if expense.ID == "" {
		expense.ID = model.NewExpenseID()
	}
	if expense.UserID == "" {
		expense.UserID = "test-user"
	}
	if expense.Date.IsZero() {
		expense.Date = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	}

	if err := db.Store.CreateExpense(context.Background(), &expense); err != nil {
		db.t.Fatalf("failed to seed expense %q: %v", expense.Description, err)
	}
	return expense
}

// SeedOverrides inserts one corrected expense per description/category pair,
// spacing dates a day apart. Corrected rows are the training corpus for
// per-user models, so tests seeding at least ten of these exercise the
// personalization path.
func (db *TestDB) SeedOverrides(userID string, labeled map[string]string) []model.Expense {
	db.t.Helper()

	seeded := make([]model.Expense, 0, len(labeled))
	day := 0
	for description, category := range labeled {
		expense := db.SeedExpense(model.Expense{
			UserID:            userID,
			Description:       description,
			Category:          category,
			PredictedCategory: category,
			Amount:            25.00,
			UserOverride:      true,
			Date:              time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		})
		seeded = append(seeded, expense)
		day++
	}
	return seeded
}
