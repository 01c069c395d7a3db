package pipeline

import (
	"context"
	"time"
)

// withRetry runs fn until it succeeds, doubling the delay after each
// failure. onFailure, when set, sees every failed attempt that will be
// retried.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, onFailure func(attempt int, err error), fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}
		if onFailure != nil {
			onFailure(attempt, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}
