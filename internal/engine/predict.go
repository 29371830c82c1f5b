package engine

import (
	"context"
	"log/slog"

	"spendsense/internal/model"
	"spendsense/internal/service"
)

// PredictCategory categorizes a free-text expense description. It never
// fails: the per-user model, the global model, and the keyword rules form a
// three-tier fallback, so a category always comes back even on cold-start
// data or model-loading failure.
//
// A confidence below the threshold replaces the label with Uncertain but
// passes the numeric confidence through unchanged; callers must treat
// Uncertain as a low-trust signal, not an error.
func (e *Engine) PredictCategory(ctx context.Context, text, userID string) model.PredictionResult {
	if e.cfg.PredictTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.PredictTimeout)
		defer cancel()
	}

	m := e.pickModel(ctx, userID)
	if m == nil {
		return PredictByRules(text)
	}

	results, err := m.PredictStrict(ctx, []string{text})
	if err != nil || len(results) == 0 {
		slog.Debug("model prediction failed, using keyword rules",
			"user", userID, "error", err)
		return PredictByRules(text)
	}

	result := results[0]
	if result.Confidence < e.cfg.ConfidenceThreshold {
		result.Label = model.LabelUncertain
	}
	return result
}

// pickModel selects the per-user model when it is trained, otherwise the
// global model. A nil return means no model tier is usable and the caller
// should go straight to the rules.
func (e *Engine) pickModel(ctx context.Context, userID string) service.CategoryModel {
	if userID != "" {
		um, err := e.userModel(ctx, userID)
		if err == nil && um.State() == service.StateTrained {
			return um
		}
		if err != nil {
			slog.Debug("per-user model unavailable", "user", userID, "error", err)
		}
	}

	gm, err := e.globalModel(ctx)
	if err != nil {
		slog.Debug("global model unavailable", "error", err)
		return nil
	}
	return gm
}
