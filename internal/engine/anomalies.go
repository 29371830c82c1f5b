package engine

import (
	"context"
	"fmt"
	"time"

	"spendsense/internal/anomaly"
	"spendsense/internal/model"
	"spendsense/internal/service"
)

// DefaultLookbackMonths bounds anomaly detection to recent history.
const DefaultLookbackMonths = 6

// DetectAnomalies flags statistically unusual amounts in a user's recent
// expense history. Fewer than the detector's floor of historical expenses
// yields an empty result.
func (e *Engine) DetectAnomalies(ctx context.Context, userID string, months int) ([]model.Anomaly, error) {
	if months <= 0 {
		months = DefaultLookbackMonths
	}
	start := time.Now().AddDate(0, -months, 0)

	expenses, err := e.storage.GetExpenses(ctx, userID, service.ExpenseFilter{StartDate: &start})
	if err != nil {
		return nil, fmt.Errorf("failed to load expense history: %w", err)
	}

	opts := anomaly.DefaultOptions()
	opts.Contamination = e.cfg.AnomalyContamination
	opts.Seed = e.cfg.Seed
	return anomaly.Detect(expenses, opts), nil
}
