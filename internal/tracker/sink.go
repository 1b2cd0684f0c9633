package tracker

import (
	"context"
	"time"

	"ludilens/internal/models"
	"ludilens/internal/store"
)

// StoreSink appends flushed batches to the event store.
func StoreSink(s store.EventStore) Sink {
	return func(ctx context.Context, events []models.DecisionEvent) error {
		return s.Append(ctx, events)
	}
}

// WithRetry wraps a sink with a fixed number of additional attempts. The
// tracker itself never retries; callers that need better-than-at-most-once
// delivery opt in here, and the wrapped sink must tolerate duplicates.
func WithRetry(next Sink, attempts int, backoff time.Duration) Sink {
	return func(ctx context.Context, events []models.DecisionEvent) error {
		var err error
		for i := 0; i <= attempts; i++ {
			if err = next(ctx, events); err == nil {
				return nil
			}
			select {
			case <-ctx.Done():
				return err
			case <-time.After(backoff):
			}
		}
		return err
	}
}
