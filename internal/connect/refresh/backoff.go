package refresh

import (
	"context"
	"time"
)

// backoff computes the wait before a retry: exponential from base, capped at
// max. A provider-supplied Retry-After overrides the schedule.
type backoff struct {
	base time.Duration
	max  time.Duration
}

func (b backoff) delay(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		if retryAfter > b.max {
			return b.max
		}
		return retryAfter
	}
	d := b.base << attempt
	if d > b.max || d <= 0 {
		return b.max
	}
	return d
}

// wait blocks for d or until the context ends.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
