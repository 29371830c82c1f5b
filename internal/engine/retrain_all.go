package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RetrainAllUsers rebuilds every user's model from their override history,
// running at most concurrency retrains in parallel. The onDone callback, if
// set, fires after each user completes; bulk callers use it to drive a
// progress display.
func (e *Engine) RetrainAllUsers(ctx context.Context, concurrency int, onDone func(userID string, err error)) error {
	if concurrency <= 0 {
		concurrency = 4
	}

	users, err := e.storage.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, userID := range users {
		g.Go(func() error {
			retrainErr := e.retrainUser(ctx, userID, nil)
			if onDone != nil {
				onDone(userID, retrainErr)
			}
			// One broken user should not abort the sweep.
			return nil
		})
	}

	return g.Wait()
}
