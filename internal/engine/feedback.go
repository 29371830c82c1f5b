package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"spendsense/internal/common"
	"spendsense/internal/model"
	"spendsense/internal/service"
)

// RecordFeedback handles a user manually setting a category: the pair joins
// the user's override history and the user's model is fully retrained from
// that complete set, then persisted. Full retrain over incremental is
// deliberate: the label vocabulary may grow with each correction, and
// incremental fitting cannot add unseen classes. Correction events are rare
// relative to predictions, so the O(history) cost is acceptable.
//
// Only malformed input is an error. A model backend failure leaves the
// feedback recorded and the model stale, which the next retrain repairs.
func (e *Engine) RecordFeedback(ctx context.Context, userID, text, category string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: missing user", common.ErrInvalidFeedback)
	}
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("%w: missing category", common.ErrInvalidFeedback)
	}

	extra := model.TrainingExample{Text: text, Label: category}
	if err := e.retrainUser(ctx, userID, &extra); err != nil {
		slog.Warn("feedback recorded but model retrain failed",
			"user", userID, "error", err)
	}
	return nil
}

// RetrainGlobal force-retrains the shared model on the seed corpus and
// persists the artifact, discarding any previous global surface.
func (e *Engine) RetrainGlobal(ctx context.Context) error {
	gm, err := e.globalModel(ctx)
	if err != nil {
		return err
	}
	if err := gm.Train(ctx, SeedCorpus(), e.cfg.Seed); err != nil {
		return fmt.Errorf("failed to train global model: %w", err)
	}
	if err := gm.Save(ctx); err != nil {
		return fmt.Errorf("failed to persist global model: %w", err)
	}
	slog.Info("retrained global model on seed corpus")
	return nil
}

// RetrainUser rebuilds one user's model from their persisted override
// history and saves the artifact.
func (e *Engine) RetrainUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: missing user", common.ErrInvalidFeedback)
	}
	return e.retrainUser(ctx, userID, nil)
}

// retrainUser performs the full retrain: read back every override, add the
// optional in-flight example, train a fresh surface off to the side, and let
// the classifier publish it in one swap. Concurrent readers keep seeing the
// previous complete surface until the swap lands.
func (e *Engine) retrainUser(ctx context.Context, userID string, extra *model.TrainingExample) error {
	expenses, err := e.storage.GetExpenses(ctx, userID, service.ExpenseFilter{OverrideOnly: true})
	if err != nil {
		return fmt.Errorf("failed to load override history: %w", err)
	}

	examples := model.ExamplesFromExpenses(expenses)
	if extra != nil {
		examples = append(examples, *extra)
	}

	um, err := e.userModel(ctx, userID)
	if err != nil {
		return err
	}

	if err := um.Train(ctx, examples, e.cfg.Seed); err != nil {
		return fmt.Errorf("failed to retrain user model: %w", err)
	}
	if err := um.Save(ctx); err != nil {
		return fmt.Errorf("failed to persist user model: %w", err)
	}

	slog.Info("retrained user model",
		"user", userID, "examples", len(examples), "state", um.State().String())
	return nil
}
