package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"spendsense/internal/service"
)

// artifactVersion guards against loading blobs written by an incompatible
// build. A mismatch is treated the same as a corrupt artifact.
const artifactVersion = 1

// artifact is the serialized form of a trained surface.
type artifact struct {
	Labels  []string    `json:"labels"`
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
	Version int         `json:"version"`
	Dim     int         `json:"dim"`
}

// Save persists the trained surface to the blob store. Saving an untrained
// model removes any stale artifact so the next load regresses cleanly.
func (c *Classifier) Save(ctx context.Context) error {
	c.mu.RLock()
	state := c.state
	surface := c.surface
	c.mu.RUnlock()

	if state != service.StateTrained || surface == nil {
		return c.blobs.Delete(ctx, c.key)
	}

	data, err := json.Marshal(artifact{
		Version: artifactVersion,
		Dim:     surface.dim,
		Labels:  surface.labels,
		Weights: surface.weights,
		Bias:    surface.bias,
	})
	if err != nil {
		return fmt.Errorf("failed to encode model artifact: %w", err)
	}

	if err := c.blobs.Put(ctx, c.key, data); err != nil {
		return fmt.Errorf("failed to persist model artifact: %w", err)
	}
	return nil
}

// Load restores the surface from the blob store. A missing or corrupt
// artifact leaves the model Untrained and returns nil; persistence problems
// are never fatal to the prediction path.
func (c *Classifier) Load(ctx context.Context) error {
	data, found, err := c.blobs.Get(ctx, c.key)
	if err != nil {
		return fmt.Errorf("failed to read model artifact: %w", err)
	}

	if !found {
		c.setUntrained()
		return nil
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		slog.Warn("discarding corrupt model artifact", "key", c.key, "error", err)
		c.setUntrained()
		return nil
	}
	if art.Version != artifactVersion || len(art.Labels) < 2 ||
		len(art.Weights) != len(art.Labels) || len(art.Bias) != len(art.Labels) {
		slog.Warn("discarding incompatible model artifact", "key", c.key, "version", art.Version)
		c.setUntrained()
		return nil
	}

	surface := &fitted{
		labels:  art.Labels,
		weights: art.Weights,
		bias:    art.Bias,
		dim:     art.Dim,
	}

	c.mu.Lock()
	c.surface = surface
	c.state = service.StateTrained
	c.mu.Unlock()

	slog.Debug("loaded model artifact", "key", c.key, "labels", len(art.Labels))
	return nil
}

func (c *Classifier) setUntrained() {
	c.mu.Lock()
	c.state = service.StateUntrained
	c.surface = nil
	c.mu.Unlock()
}
