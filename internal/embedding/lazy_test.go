package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"spendsense/internal/common"
	"spendsense/internal/service"
)

func TestLazyEmbedderLoadsOnce(t *testing.T) {
	loads := 0
	lazy := NewLazyEmbedder(64, func() (service.Embedder, error) {
		loads++
		return NewHashingEmbedder(64), nil
	})

	if loads != 0 {
		t.Fatalf("Loader ran %d times before first Embed", loads)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := lazy.Embed(ctx, []string{"coffee"}); err != nil {
			t.Fatalf("Embed %d failed: %v", i, err)
		}
	}
	if loads != 1 {
		t.Errorf("Loader ran %d times, want 1", loads)
	}
}

func TestLazyEmbedderRemembersFailure(t *testing.T) {
	loads := 0
	lazy := NewLazyEmbedder(64, func() (service.Embedder, error) {
		loads++
		return nil, fmt.Errorf("model file not found")
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := lazy.Embed(ctx, []string{"coffee"})
		if !errors.Is(err, common.ErrModelUnavailable) {
			t.Fatalf("Embed %d error = %v, want ErrModelUnavailable", i, err)
		}
	}
	if loads != 1 {
		t.Errorf("Loader retried %d times after failure, want 1", loads)
	}
}

func TestLazyEmbedderDimMismatch(t *testing.T) {
	lazy := NewLazyEmbedder(128, func() (service.Embedder, error) {
		return NewHashingEmbedder(64), nil
	})

	_, err := lazy.Embed(context.Background(), []string{"coffee"})
	if !errors.Is(err, common.ErrModelUnavailable) {
		t.Errorf("Embed error = %v, want ErrModelUnavailable on dim mismatch", err)
	}
	// Dim reports the configured size regardless of load outcome.
	if lazy.Dim() != 128 {
		t.Errorf("Dim = %d, want 128", lazy.Dim())
	}
}
