package common

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	var failedAttempts []int
	result, err := Retry(context.Background(), RetryPolicy{Attempts: 3}, func(ctx context.Context, attempt int) (string, error) {
		calls++
		if attempt < 3 {
			return "", errFlaky
		}
		return "ok", nil
	}, func(attempt int, err error) {
		failedAttempts = append(failedAttempts, attempt)
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, failedAttempts)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), RetryPolicy{Attempts: 3}, func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, errFlaky
	}, nil)

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopRetrying(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), RetryPolicy{Attempts: 5}, func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, StopRetrying(errFlaky)
	}, nil)

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 1, calls)
}

func TestRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := Retry(ctx, RetryPolicy{Attempts: 3}, func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, errFlaky
	}, nil)

	assert.Error(t, err)
	assert.Equal(t, 0, calls)
}

func TestRetry_AtLeastOneAttempt(t *testing.T) {
	calls := 0
	_, _ = Retry(context.Background(), RetryPolicy{}, func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, errFlaky
	}, nil)

	assert.Equal(t, 1, calls)
}
