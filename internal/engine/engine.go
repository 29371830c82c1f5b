// Package engine implements the prediction orchestrator: it routes each
// request to the per-user model, the global model, or the keyword rules, and
// runs the feedback loop that retrains per-user models from corrections.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"spendsense/internal/classifier"
	"spendsense/internal/service"
)

// Config holds configuration options for the prediction engine.
type Config struct {
	// ConfidenceThreshold is the minimum probability required to accept a
	// model's label instead of reporting Uncertain.
	ConfidenceThreshold float64
	// PredictTimeout bounds how long one prediction may block on the model
	// backend before falling through to the keyword rules.
	PredictTimeout time.Duration
	// Seed fixes the random state of every training run.
	Seed int64
	// AnomalyContamination is the expected outlier share passed to the
	// anomaly detector.
	AnomalyContamination float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold:  0.7,
		PredictTimeout:       5 * time.Second,
		Seed:                 42,
		AnomalyContamination: 0.02,
	}
}

// Engine orchestrates prediction, feedback, and anomaly detection.
type Engine struct {
	storage  service.Storage
	blobs    service.BlobStore
	embedder service.Embedder
	cfg      Config

	// The global model initializes once, off to the side, and is published
	// by closing globalReady. Callers never block on its load or training
	// beyond their own context.
	globalOnce  sync.Once
	globalReady chan struct{}
	global      *classifier.Classifier
	globalErr   error

	usersMu sync.Mutex
	users   map[string]*userCell
}

// userCell serializes lazy load and retrain for one user's model. The model
// itself publishes trained surfaces by atomic swap, so readers never need
// this lock once they hold the classifier pointer.
type userCell struct {
	mu     sync.Mutex
	model  *classifier.Classifier
	loaded bool
}

// New creates a prediction engine with default configuration.
func New(storage service.Storage, blobs service.BlobStore, embedder service.Embedder) *Engine {
	return NewWithConfig(storage, blobs, embedder, DefaultConfig())
}

// NewWithConfig creates a prediction engine with custom configuration.
func NewWithConfig(storage service.Storage, blobs service.BlobStore, embedder service.Embedder, cfg Config) *Engine {
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = DefaultConfig().ConfidenceThreshold
	}
	if cfg.AnomalyContamination <= 0 {
		cfg.AnomalyContamination = DefaultConfig().AnomalyContamination
	}
	return &Engine{
		storage:     storage,
		blobs:       blobs,
		embedder:    embedder,
		cfg:         cfg,
		globalReady: make(chan struct{}),
		users:       make(map[string]*userCell),
	}
}

// globalModel returns the shared classifier, kicking off one-time
// initialization on first use. Callers wait only as long as their own context
// allows; during a cold start a short-deadline request gets ctx.Err and falls
// through to the keyword rules instead of queueing behind load and training.
func (e *Engine) globalModel(ctx context.Context) (*classifier.Classifier, error) {
	e.globalOnce.Do(func() {
		go e.initGlobalModel()
	})

	select {
	case <-e.globalReady:
		return e.global, e.globalErr
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// initGlobalModel loads the persisted artifact if present, otherwise
// seed-trains and persists, then publishes the result by closing globalReady.
// The model is shared state, not part of any one request, so this runs under a
// background context rather than whichever caller happened to arrive first.
func (e *Engine) initGlobalModel() {
	defer close(e.globalReady)

	ctx := context.Background()
	m := classifier.NewGlobal(e.embedder, e.blobs)
	if err := m.Load(ctx); err != nil {
		e.globalErr = err
		return
	}

	if m.State() != service.StateTrained {
		slog.Info("no persisted global model, training on seed corpus")
		if err := m.Train(ctx, SeedCorpus(), e.cfg.Seed); err != nil {
			e.globalErr = err
			return
		}
		if err := m.Save(ctx); err != nil {
			slog.Warn("failed to persist seed-trained global model", "error", err)
		}
	}

	e.global = m
}

// userModel returns the lazily-loaded classifier for one user, creating the
// cell on first request.
func (e *Engine) userModel(ctx context.Context, userID string) (*classifier.Classifier, error) {
	e.usersMu.Lock()
	cell, ok := e.users[userID]
	if !ok {
		cell = &userCell{}
		e.users[userID] = cell
	}
	e.usersMu.Unlock()

	cell.mu.Lock()
	defer cell.mu.Unlock()

	if !cell.loaded {
		m := classifier.NewUser(userID, e.embedder, e.blobs)
		if err := m.Load(ctx); err != nil {
			return nil, err
		}
		cell.model = m
		cell.loaded = true
	}
	return cell.model, nil
}
