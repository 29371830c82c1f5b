package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"spendsense/internal/common"
	"spendsense/internal/service"
)

// LazyEmbedder defers expensive model loading until the first Embed call and
// memoizes the result process-wide. Concurrent first use is serialized so only
// one load happens and no caller observes partial state. A failed load is
// remembered: subsequent calls report ErrModelUnavailable immediately instead
// of reloading on every request.
type LazyEmbedder struct {
	load     func() (service.Embedder, error)
	dim      int
	mu       sync.Mutex
	delegate service.Embedder
	loadErr  error
	loaded   bool
}

// NewLazyEmbedder wraps a loader function. dim must match the loaded
// embedder's dimensionality so callers can size structures before load.
func NewLazyEmbedder(dim int, load func() (service.Embedder, error)) *LazyEmbedder {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &LazyEmbedder{load: load, dim: dim}
}

// Dim returns the embedding dimensionality.
func (l *LazyEmbedder) Dim() int {
	return l.dim
}

// Embed loads the delegate on first use, then forwards the call. The load
// lock is not held during embedding, which may block on model I/O.
func (l *LazyEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	delegate, err := l.get()
	if err != nil {
		return nil, err
	}
	return delegate.Embed(ctx, texts)
}

func (l *LazyEmbedder) get() (service.Embedder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.loaded {
		l.loaded = true
		delegate, err := l.load()
		if err != nil {
			slog.Warn("embedding model failed to load, predictions will fall back to rules", "error", err)
			l.loadErr = fmt.Errorf("%w: %v", common.ErrModelUnavailable, err)
		} else {
			l.delegate = delegate
			if delegate.Dim() != l.dim {
				l.loadErr = fmt.Errorf("%w: embedder dim %d does not match configured %d",
					common.ErrModelUnavailable, delegate.Dim(), l.dim)
				l.delegate = nil
			}
		}
	}

	if l.loadErr != nil {
		return nil, l.loadErr
	}
	return l.delegate, nil
}
