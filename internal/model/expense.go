// Package model defines the core domain models used throughout the application.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Expense represents a single recorded expense for a user.
type Expense struct {
	Date              time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	AIConfidence      *float64
	ID                string
	UserID            string
	Description       string
	Category          string
	PredictedCategory string
	Amount            float64
	UserOverride      bool
}

// NewExpenseID returns a fresh expense identifier.
func NewExpenseID() string {
	return uuid.NewString()
}

// IsGroundTruth reports whether this expense carries a human-confirmed
// category usable as a training label.
func (e *Expense) IsGroundTruth() bool {
	return e.UserOverride && strings.TrimSpace(e.Category) != ""
}
