package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/floodroute/backend/observation"
)

func TestRetryCollectSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	obs, stats, err := retryCollect(context.Background(), "test", policy, func(ctx context.Context) ([]observation.Observation, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient")
		}
		return []observation.Observation{{Kind: observation.KindRaster}}, nil
	})

	require.NoError(t, err)
	require.Len(t, obs, 1)
	require.Equal(t, 3, stats.Attempts)
}

func TestRetryCollectReturnsPartialOnExhaustion(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	obs, stats, err := retryCollect(context.Background(), "test", policy, func(ctx context.Context) ([]observation.Observation, error) {
		return []observation.Observation{{Kind: observation.KindRaster}}, errors.New("still broken")
	})

	require.Error(t, err)
	require.Len(t, obs, 1)
	require.Equal(t, 2, stats.Attempts)
	require.NotEmpty(t, stats.LastError)
}

func TestRetryCollectHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxAttempts: 10, BaseDelay: 50 * time.Millisecond, MaxDelay: 100 * time.Millisecond}

	calls := 0
	cancel() // already cancelled before the first attempt completes its backoff

	_, stats, err := retryCollect(ctx, "test", policy, func(ctx context.Context) ([]observation.Observation, error) {
		calls++
		return nil, errors.New("fail")
	})

	require.Error(t, err)
	require.LessOrEqual(t, stats.Attempts, 2)
	require.GreaterOrEqual(t, calls, 1)
}
