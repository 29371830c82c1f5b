// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"spendsense/internal/model"
)

// ExpenseFilter defines filtering options for expense queries.
type ExpenseFilter struct {
	StartDate    *time.Time
	EndDate      *time.Time
	Category     string
	OverrideOnly bool
	Limit        int
	Offset       int
}

// Storage defines the contract for the expense persistence layer.
type Storage interface {
	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) error
	GetExpenseByID(ctx context.Context, userID, id string) (*model.Expense, error)
	GetExpenses(ctx context.Context, userID string, filter ExpenseFilter) ([]model.Expense, error)
	UpdateExpenseCategory(ctx context.Context, userID, id, category string, userOverride bool) error
	CountExpenses(ctx context.Context, userID string) (int, error)
	ListUserIDs(ctx context.Context) ([]string, error)

	// Aggregation
	SumByWeek(ctx context.Context, userID string, start, end time.Time) ([]model.WeeklyTotal, error)
	SumByMonth(ctx context.Context, userID string, start, end time.Time) ([]model.MonthlyTotal, error)
	SumByCategory(ctx context.Context, userID string, limit int) ([]model.CategoryTotal, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// BlobStore persists opaque model artifacts keyed by path.
type BlobStore interface {
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Embedder converts free text into fixed-length numeric vectors.
// Implementations must be deterministic for fixed model weights.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dim() int
}

// ModelState describes where a category model sits in its lifecycle.
type ModelState int

// Model lifecycle states. Uninitialized is the in-memory default before any
// load attempt; Untrained means no usable artifact exists; Trained means a
// decision boundary over at least two labels is available.
const (
	StateUninitialized ModelState = iota
	StateUntrained
	StateTrained
)

func (s ModelState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateUntrained:
		return "untrained"
	case StateTrained:
		return "trained"
	default:
		return "unknown"
	}
}

// CategoryModel is the contract shared by the global and per-user category
// classifiers. Predict never returns an error; it yields the uncertain
// sentinel on untrained state or internal failure. PredictStrict reports the
// failure instead so an orchestrator can match on it and invoke a fallback.
type CategoryModel interface {
	Train(ctx context.Context, examples []model.TrainingExample, seed int64) error
	PartialTrain(ctx context.Context, examples []model.TrainingExample) error
	Predict(ctx context.Context, texts []string) []model.PredictionResult
	PredictStrict(ctx context.Context, texts []string) ([]model.PredictionResult, error)
	Save(ctx context.Context) error
	Load(ctx context.Context) error
	State() ModelState
	Labels() []string
}

// ReportWriter exports an insights report to an external surface.
type ReportWriter interface {
	Write(ctx context.Context, report *model.InsightsReport) error
}

// RetryOptions configures retry behavior for transient failures.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
