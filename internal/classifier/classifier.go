// Package classifier implements the trainable category models: a linear
// softmax decision surface over text embeddings, with a shared global variant
// and incrementally retrained per-user variants.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"spendsense/internal/common"
	"spendsense/internal/model"
	"spendsense/internal/service"
)

// Minimum-sample policy per variant. The global model only needs a usable
// vocabulary; per-user models refuse to fit on a handful of corrections to
// avoid overfitting.
const (
	MinGlobalSamples = 2
	MinUserSamples   = 10
)

// Storage keys for persisted artifacts.
const (
	GlobalArtifactKey     = "models/global"
	userArtifactKeyPrefix = "models/user/"
)

// UserArtifactKey returns the blob key for a user's model artifact.
func UserArtifactKey(userID string) string {
	return userArtifactKeyPrefix + userID
}

// Classifier maps text embeddings to category labels with a confidence.
// It moves through Uninitialized → Untrained → Trained; while not Trained,
// Predict yields the uncertain sentinel for every input.
type Classifier struct {
	embedder   service.Embedder
	blobs      service.BlobStore
	key        string
	minSamples int

	mu      sync.RWMutex
	state   service.ModelState
	surface *fitted
}

// NewGlobal creates the shared classifier backed by the fixed artifact key.
func NewGlobal(embedder service.Embedder, blobs service.BlobStore) *Classifier {
	return &Classifier{
		embedder:   embedder,
		blobs:      blobs,
		key:        GlobalArtifactKey,
		minSamples: MinGlobalSamples,
		state:      service.StateUninitialized,
	}
}

// NewUser creates a per-user classifier keyed by the user's id.
func NewUser(userID string, embedder service.Embedder, blobs service.BlobStore) *Classifier {
	return &Classifier{
		embedder:   embedder,
		blobs:      blobs,
		key:        UserArtifactKey(userID),
		minSamples: MinUserSamples,
		state:      service.StateUninitialized,
	}
}

// State returns the current lifecycle state.
func (c *Classifier) State() service.ModelState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Labels returns the current label vocabulary in training order.
func (c *Classifier) Labels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.surface == nil {
		return nil
	}
	return append([]string(nil), c.surface.labels...)
}

// Train fits the decision surface from scratch. Fewer examples than the
// variant's floor, or fewer than two distinct labels, regresses the model to
// Untrained rather than fitting on insufficient data. Training is
// deterministic for a fixed (examples, seed) pair: the vocabulary is the
// sorted set of distinct labels and the optimizer runs a fixed epoch count.
func (c *Classifier) Train(ctx context.Context, examples []model.TrainingExample, seed int64) error {
	labels := distinctLabels(examples)

	if len(examples) < c.minSamples || len(labels) < 2 {
		c.mu.Lock()
		c.state = service.StateUntrained
		c.surface = nil
		c.mu.Unlock()
		slog.Info("not enough examples to train, model regressed to untrained",
			"key", c.key, "examples", len(examples), "labels", len(labels))
		return nil
	}

	// Embed outside the lock; this can block on model I/O.
	texts := make([]string, len(examples))
	for i, ex := range examples {
		texts[i] = ex.Text
	}
	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed training set: %w", err)
	}

	labelIndex := make(map[string]int, len(labels))
	for i, l := range labels {
		labelIndex[l] = i
	}
	targets := make([]int, len(examples))
	for i, ex := range examples {
		targets[i] = labelIndex[ex.Label]
	}

	surface := newFitted(labels, c.embedder.Dim(), seed)
	surface.fit(vectors, targets, trainEpochs, trainLearningRate)

	c.mu.Lock()
	c.surface = surface
	c.state = service.StateTrained
	c.mu.Unlock()

	slog.Info("trained category model",
		"key", c.key, "examples", len(examples), "labels", len(labels))
	return nil
}

// PartialTrain incrementally updates an already-trained surface. A label
// outside the current vocabulary returns ErrVocabularyChanged so the caller
// can issue a full Train instead; incremental fitting cannot safely add
// unseen classes.
func (c *Classifier) PartialTrain(ctx context.Context, examples []model.TrainingExample) error {
	if len(examples) == 0 {
		return nil
	}

	c.mu.RLock()
	state := c.state
	base := c.surface
	c.mu.RUnlock()

	if state != service.StateTrained || base == nil {
		return common.ErrNotTrained
	}
	for _, ex := range examples {
		if base.labelIndex(ex.Label) < 0 {
			return fmt.Errorf("%w: %q not in vocabulary", common.ErrVocabularyChanged, ex.Label)
		}
	}

	texts := make([]string, len(examples))
	targets := make([]int, len(examples))
	for i, ex := range examples {
		texts[i] = ex.Text
		targets[i] = base.labelIndex(ex.Label)
	}
	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed examples: %w", err)
	}

	surface := base.clone()
	surface.fit(vectors, targets, partialEpochs, partialRate)

	c.mu.Lock()
	// Another writer may have replaced the surface while we were fitting;
	// last write wins, matching full-retrain semantics.
	c.surface = surface
	c.state = service.StateTrained
	c.mu.Unlock()

	return nil
}

// Predict categorizes each text. A model that is not Trained yields the
// uncertain sentinel for every input, and so does any embedding or numeric
// failure: prediction never surfaces an error to the caller.
func (c *Classifier) Predict(ctx context.Context, texts []string) []model.PredictionResult {
	results, err := c.PredictStrict(ctx, texts)
	if err != nil {
		slog.Debug("prediction failed, returning sentinel", "key", c.key, "error", err)
		results = make([]model.PredictionResult, len(texts))
		for i := range results {
			results[i] = model.Uncertain()
		}
	}
	return results
}

// PredictStrict categorizes each text but reports embedding or numeric
// failures to the caller instead of masking them. An untrained model is not
// a failure; it yields sentinels like Predict does.
func (c *Classifier) PredictStrict(ctx context.Context, texts []string) ([]model.PredictionResult, error) {
	results := make([]model.PredictionResult, len(texts))
	for i := range results {
		results[i] = model.Uncertain()
	}

	c.mu.RLock()
	state := c.state
	surface := c.surface
	c.mu.RUnlock()

	if state != service.StateTrained || surface == nil {
		return results, nil
	}

	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrModelUnavailable, err)
	}

	for i, vec := range vectors {
		if len(vec) == 0 {
			continue
		}
		probs := surface.probabilities(vec)
		best := argmax(probs)
		results[i] = model.PredictionResult{
			Label:      surface.labels[best],
			Confidence: probs[best],
		}
	}
	return results, nil
}

// distinctLabels returns the sorted set of labels present in the examples.
func distinctLabels(examples []model.TrainingExample) []string {
	seen := make(map[string]struct{}, len(examples))
	var labels []string
	for _, ex := range examples {
		if ex.Label == "" {
			continue
		}
		if _, ok := seen[ex.Label]; ok {
			continue
		}
		seen[ex.Label] = struct{}{}
		labels = append(labels, ex.Label)
	}
	sort.Strings(labels)
	return labels
}
