package common

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy describes how many times an idempotent remote call is attempted in total, and how long to wait between
// attempts (zero means retry immediately).
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// RetryFunc is a fallible operation; `attempt` starts at 1.
type RetryFunc[T any] func(ctx context.Context, attempt int) (T, error)

// Retry runs `operation` until it succeeds or the attempt budget is exhausted, in which case the error of the last
// attempt is returned. `onFailure` (optional) is called after every failed attempt. Errors wrapped with
// StopRetrying end the loop immediately, as does a cancelled context.
func Retry[T any](ctx context.Context, policy RetryPolicy, operation RetryFunc[T], onFailure func(attempt int, err error)) (T, error) {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var strategy backoff.BackOff = &backoff.ZeroBackOff{}
	if policy.Delay > 0 {
		strategy = backoff.NewConstantBackOff(policy.Delay)
	}
	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, backoff.Permanent(err)
		}
		attempt++
		result, err := operation(ctx, attempt)
		if err != nil && onFailure != nil {
			onFailure(attempt, err)
		}
		return result, err
	}, backoff.WithBackOff(strategy), backoff.WithMaxTries(uint(attempts)))
}

// StopRetrying marks an error as final: Retry returns it right away instead of making another attempt.
func StopRetrying(err error) error {
	return backoff.Permanent(err)
}
