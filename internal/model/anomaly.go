package model

import "time"

// Anomaly identifies an expense flagged as a statistical outlier.
type Anomaly struct {
	Date        time.Time
	ExpenseID   string
	Description string
	Amount      float64
	Score       float64
}
