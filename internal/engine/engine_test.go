package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"spendsense/internal/classifier"
	"spendsense/internal/common"
	"spendsense/internal/embedding"
	"spendsense/internal/model"
	"spendsense/internal/testutil"
)

// brokenEmbedder simulates a model backend whose files cannot be loaded.
type brokenEmbedder struct{}

func (brokenEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, fmt.Errorf("onnx runtime not available")
}

func (brokenEmbedder) Dim() int { return embedding.DefaultDim }

// slowEmbedder stands in for a backend with expensive startup, delaying
// every call while honoring cancellation.
type slowEmbedder struct {
	delay time.Duration
	inner *embedding.HashingEmbedder
}

func (s slowEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.inner.Embed(ctx, texts)
}

func (s slowEmbedder) Dim() int { return s.inner.Dim() }

func newTestEngine(t *testing.T, cfg Config) (*Engine, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	eng := NewWithConfig(db.Store, db.Store, embedding.NewHashingEmbedder(0), cfg)
	return eng, db
}

// seedCorrections inserts n corrected expenses alternating between two
// well-separated vocabularies so a per-user model can actually fit.
func seedCorrections(t *testing.T, db *testutil.TestDB, userID string, n int) {
	t.Helper()
	transport := []string{
		"uber ride downtown", "taxi to the airport", "monthly bus pass",
		"tram ticket", "train to the suburbs", "bolt ride home",
	}
	food := []string{
		"dinner at the italian restaurant", "weekly grocery run",
		"coffee and croissant", "sushi takeout", "brunch with friends",
		"kebab lunch",
	}
	for i := 0; i < n; i++ {
		var description, category string
		if i%2 == 0 {
			description = transport[(i/2)%len(transport)]
			category = "Transport"
		} else {
			description = food[(i/2)%len(food)]
			category = "Food"
		}
		db.SeedExpense(model.Expense{
			UserID:            userID,
			Description:       description,
			Category:          category,
			PredictedCategory: category,
			UserOverride:      true,
			Amount:            20.00,
			Date:              time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
		})
	}
}

func TestPredictByRules(t *testing.T) {
	tests := []struct {
		text string
		want model.PredictionResult
	}{
		{"uber ride to airport", model.PredictionResult{Label: "Transport", Confidence: 0.6}},
		{"Dinner with friends", model.PredictionResult{Label: "Food", Confidence: 0.6}},
		{"ELECTRIC BILL", model.PredictionResult{Label: "Utilities", Confidence: 0.6}},
		{"new shoes", model.PredictionResult{Label: "Shopping", Confidence: 0.6}},
		{"mysterious payment", model.PredictionResult{Label: "Other", Confidence: 0.4}},
		{"", model.PredictionResult{Label: "Other", Confidence: 0.4}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := PredictByRules(tt.text); got != tt.want {
				t.Errorf("PredictByRules(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestPredictCategoryFallsBackToRules(t *testing.T) {
	// With a broken embedder no model tier can train or predict, so every
	// request must land on the keyword rules.
	db := testutil.SetupTestDB(t)
	eng := NewWithConfig(db.Store, db.Store, brokenEmbedder{}, DefaultConfig())
	ctx := context.Background()

	result := eng.PredictCategory(ctx, "uber ride to airport", "alice")
	if result.Label != "Transport" || result.Confidence != 0.6 {
		t.Errorf("Result = %+v, want Transport at 0.6 from rules", result)
	}

	result = eng.PredictCategory(ctx, "something unmatchable", "alice")
	if result.Label != model.LabelOther || result.Confidence != 0.4 {
		t.Errorf("Result = %+v, want Other at 0.4 from rules", result)
	}
}

func TestPredictCategoryThresholdRelabels(t *testing.T) {
	// An unreachable threshold forces every model answer to Uncertain while
	// the numeric confidence passes through untouched.
	cfg := DefaultConfig()
	cfg.ConfidenceThreshold = 1.01
	eng, _ := newTestEngine(t, cfg)

	result := eng.PredictCategory(context.Background(), "taxi to the airport", "alice")
	if result.Label != model.LabelUncertain {
		t.Errorf("Label = %q, want %q", result.Label, model.LabelUncertain)
	}
	if result.Confidence <= 0 || result.Confidence > 1 {
		t.Errorf("Confidence = %f, want the model's probability in (0, 1]", result.Confidence)
	}
}

func TestPredictCategoryUsesGlobalModelOnColdStart(t *testing.T) {
	// A brand-new user has no personal model; the seed-trained global model
	// answers and its artifact lands in the blob store.
	cfg := DefaultConfig()
	cfg.ConfidenceThreshold = 0.01
	eng, db := newTestEngine(t, cfg)
	ctx := context.Background()

	result := eng.PredictCategory(ctx, "taxi to the airport", "brand-new-user")
	if result.Label == "" || result.Label == model.LabelUncertain {
		t.Errorf("Cold-start result = %+v, want a seed-corpus label", result)
	}

	_, found, err := db.Store.Get(ctx, classifier.GlobalArtifactKey)
	if err != nil {
		t.Fatalf("Failed to read global artifact: %v", err)
	}
	if !found {
		t.Error("Global model artifact not persisted after seed training")
	}
}

func TestPredictCategoryBoundedDuringColdStart(t *testing.T) {
	// While the global model is still seed-training, predictions must not
	// queue behind it: each request waits at most its own timeout and then
	// answers from the keyword rules. The shared artifact still persists
	// even though every request's deadline is far shorter than training.
	db := testutil.SetupTestDB(t)
	cfg := DefaultConfig()
	cfg.PredictTimeout = 100 * time.Millisecond
	eng := NewWithConfig(db.Store, db.Store, slowEmbedder{
		delay: time.Second,
		inner: embedding.NewHashingEmbedder(0),
	}, cfg)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		eng.PredictCategory(ctx, "coffee and croissant", "alice")
	}()

	start := time.Now()
	result := eng.PredictCategory(ctx, "uber ride to airport", "bob")
	elapsed := time.Since(start)
	wg.Wait()

	if result.Label != "Transport" {
		t.Errorf("Rules-tier result = %+v, want Transport", result)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("Prediction blocked %v during global model init, want at most the predict timeout", elapsed)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		_, found, err := db.Store.Get(ctx, classifier.GlobalArtifactKey)
		if err != nil {
			t.Fatalf("Failed to read global artifact: %v", err)
		}
		if found {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Global artifact never persisted after cold-start training")
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func TestPredictCategoryPrefersUserModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConfidenceThreshold = 0.01
	eng, db := newTestEngine(t, cfg)
	ctx := context.Background()

	seedCorrections(t, db, "alice", 12)

	if err := eng.RetrainUser(ctx, "alice"); err != nil {
		t.Fatalf("Retrain failed: %v", err)
	}

	result := eng.PredictCategory(ctx, "taxi to the airport", "alice")
	if result.Label != "Transport" {
		t.Errorf("Label = %q, want Transport from the personal model", result.Label)
	}
}

func TestCreateExpensePredictsWhenCategoryEmpty(t *testing.T) {
	eng, db := newTestEngine(t, DefaultConfig())
	ctx := context.Background()

	expense := model.Expense{
		UserID:      "alice",
		Description: "uber ride downtown",
		Amount:      18.50,
		Date:        time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	}
	if err := eng.CreateExpense(ctx, &expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if expense.ID == "" {
		t.Error("Expense ID not assigned")
	}
	if expense.PredictedCategory == "" {
		t.Error("PredictedCategory not set")
	}
	if expense.Category != expense.PredictedCategory {
		t.Errorf("Category %q diverges from prediction %q", expense.Category, expense.PredictedCategory)
	}
	if expense.AIConfidence == nil {
		t.Error("AIConfidence not recorded")
	}
	if expense.UserOverride {
		t.Error("UserOverride = true for a predicted category")
	}

	stored, err := db.Store.GetExpenseByID(ctx, "alice", expense.ID)
	if err != nil {
		t.Fatalf("Failed to read back expense: %v", err)
	}
	if stored.Category != expense.Category {
		t.Errorf("Stored category = %q, want %q", stored.Category, expense.Category)
	}
}

func TestCreateExpenseKeepsSuppliedCategory(t *testing.T) {
	eng, db := newTestEngine(t, DefaultConfig())
	ctx := context.Background()

	expense := model.Expense{
		UserID:      "alice",
		Description: "vet appointment",
		Category:    "Pets",
		Amount:      80.00,
		Date:        time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	}
	if err := eng.CreateExpense(ctx, &expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if !expense.UserOverride {
		t.Error("UserOverride = false for a human-supplied category")
	}

	stored, err := db.Store.GetExpenseByID(ctx, "alice", expense.ID)
	if err != nil {
		t.Fatalf("Failed to read back expense: %v", err)
	}
	if stored.Category != "Pets" || !stored.UserOverride {
		t.Errorf("Stored = %q override=%v, want Pets with override", stored.Category, stored.UserOverride)
	}
}

func TestOverrideCategory(t *testing.T) {
	eng, db := newTestEngine(t, DefaultConfig())
	ctx := context.Background()

	expense := model.Expense{
		UserID:      "alice",
		Description: "uber ride downtown",
		Amount:      18.50,
		Date:        time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	}
	if err := eng.CreateExpense(ctx, &expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	updated, err := eng.OverrideCategory(ctx, "alice", expense.ID, "Business Travel")
	if err != nil {
		t.Fatalf("OverrideCategory failed: %v", err)
	}
	if updated.Category != "Business Travel" || !updated.UserOverride {
		t.Errorf("Updated = %q override=%v, want Business Travel with override",
			updated.Category, updated.UserOverride)
	}
	// The original prediction survives the correction.
	if updated.PredictedCategory != expense.PredictedCategory {
		t.Errorf("PredictedCategory = %q, want %q preserved",
			updated.PredictedCategory, expense.PredictedCategory)
	}

	stored, err := db.Store.GetExpenseByID(ctx, "alice", expense.ID)
	if err != nil {
		t.Fatalf("Failed to read back expense: %v", err)
	}
	if stored.Category != "Business Travel" {
		t.Errorf("Stored category = %q, want Business Travel", stored.Category)
	}
}

func TestOverrideCategoryValidation(t *testing.T) {
	eng, _ := newTestEngine(t, DefaultConfig())
	ctx := context.Background()

	if _, err := eng.OverrideCategory(ctx, "alice", "some-id", "  "); !errors.Is(err, common.ErrInvalidFeedback) {
		t.Errorf("Blank category error = %v, want ErrInvalidFeedback", err)
	}
	if _, err := eng.OverrideCategory(ctx, "alice", "no-such-id", "Food"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Missing expense error = %v, want ErrNotFound", err)
	}
}

func TestRecordFeedbackValidation(t *testing.T) {
	eng, _ := newTestEngine(t, DefaultConfig())
	ctx := context.Background()

	if err := eng.RecordFeedback(ctx, "", "text", "Food"); !errors.Is(err, common.ErrInvalidFeedback) {
		t.Errorf("Missing user error = %v, want ErrInvalidFeedback", err)
	}
	if err := eng.RecordFeedback(ctx, "alice", "text", ""); !errors.Is(err, common.ErrInvalidFeedback) {
		t.Errorf("Missing category error = %v, want ErrInvalidFeedback", err)
	}
	// Valid feedback below the training floor is accepted; the model simply
	// stays untrained.
	if err := eng.RecordFeedback(ctx, "alice", "dog grooming", "Pets"); err != nil {
		t.Errorf("Valid feedback failed: %v", err)
	}
}

func TestRetrainUserPersistsArtifact(t *testing.T) {
	eng, db := newTestEngine(t, DefaultConfig())
	ctx := context.Background()

	seedCorrections(t, db, "alice", 12)
	if err := eng.RetrainUser(ctx, "alice"); err != nil {
		t.Fatalf("Retrain failed: %v", err)
	}

	_, found, err := db.Store.Get(ctx, classifier.UserArtifactKey("alice"))
	if err != nil {
		t.Fatalf("Failed to read user artifact: %v", err)
	}
	if !found {
		t.Error("User model artifact not persisted after retrain")
	}
}

func TestRetrainGlobal(t *testing.T) {
	eng, db := newTestEngine(t, DefaultConfig())
	ctx := context.Background()

	if err := eng.RetrainGlobal(ctx); err != nil {
		t.Fatalf("RetrainGlobal failed: %v", err)
	}

	_, found, err := db.Store.Get(ctx, classifier.GlobalArtifactKey)
	if err != nil {
		t.Fatalf("Failed to read global artifact: %v", err)
	}
	if !found {
		t.Error("Global model artifact not persisted")
	}
}

func TestRetrainAllUsers(t *testing.T) {
	eng, db := newTestEngine(t, DefaultConfig())
	ctx := context.Background()

	seedCorrections(t, db, "alice", 12)
	seedCorrections(t, db, "bob", 12)

	var mu sync.Mutex
	done := make(map[string]error)
	err := eng.RetrainAllUsers(ctx, 2, func(userID string, err error) {
		mu.Lock()
		done[userID] = err
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("RetrainAllUsers failed: %v", err)
	}

	for _, user := range []string{"alice", "bob"} {
		retrainErr, ok := done[user]
		if !ok {
			t.Errorf("Callback never fired for %s", user)
			continue
		}
		if retrainErr != nil {
			t.Errorf("Retrain of %s failed: %v", user, retrainErr)
		}
	}
}

func TestDetectAnomalies(t *testing.T) {
	eng, db := newTestEngine(t, DefaultConfig())
	ctx := context.Background()

	t.Run("below floor", func(t *testing.T) {
		anomalies, err := eng.DetectAnomalies(ctx, "nobody", 0)
		if err != nil {
			t.Fatalf("DetectAnomalies failed: %v", err)
		}
		if len(anomalies) != 0 {
			t.Errorf("Got %d anomalies for empty history, want 0", len(anomalies))
		}
	})

	t.Run("flags outlier", func(t *testing.T) {
		now := time.Now().UTC()
		for i := 0; i < 19; i++ {
			db.SeedExpense(model.Expense{
				UserID:      "alice",
				Description: "groceries",
				Amount:      15 + float64(i%4),
				Date:        now.AddDate(0, 0, -i-1),
			})
		}
		db.SeedExpense(model.Expense{
			UserID:      "alice",
			Description: "emergency car repair",
			Amount:      4200,
			Date:        now.AddDate(0, 0, -3),
		})

		anomalies, err := eng.DetectAnomalies(ctx, "alice", 6)
		if err != nil {
			t.Fatalf("DetectAnomalies failed: %v", err)
		}

		found := false
		for _, a := range anomalies {
			if a.Amount == 4200 {
				found = true
			}
		}
		if !found {
			t.Errorf("The 4200 outlier was not flagged; got %+v", anomalies)
		}
	})
}
