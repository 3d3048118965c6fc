// Package sources implements the uniform collection contract every
// upstream feed honors, plus the concrete gauge/weather/raster/crowd
// collectors. Each Source owns its own retry policy and never blocks its
// peers: a slow or failing source only delays its own return.
package sources

import (
	"context"
	"math/rand"
	"time"

	"github.com/example/floodroute/backend/observation"
)

// RetryPolicy configures exponential backoff with full jitter between
// attempts, grounded on the chaos-utils injector's retry loop.
type RetryPolicy struct {
	MaxAttempts  int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryPolicy is used by sources that don't override it.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 5 * time.Second}

// nextDelay computes the full-jitter backoff delay for the given attempt
// (0-indexed): a uniformly random duration in [0, min(maxDelay, base*2^attempt)).
func (p RetryPolicy) nextDelay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultRetryPolicy.BaseDelay
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultRetryPolicy.MaxDelay
	}
	ceiling := base << attempt
	if ceiling <= 0 || ceiling > maxDelay { // overflow or clamp
		ceiling = maxDelay
	}
	if ceiling <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(ceiling)))
}

func (p RetryPolicy) maxAttempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultRetryPolicy.MaxAttempts
	}
	return p.MaxAttempts
}

// Stats summarizes one collect() call, surfaced by source_status().
type Stats struct {
	Name             string
	Attempts         int
	ObservationsSent int
	ParseErrors      int
	LastError        string
	Duration         time.Duration
}

// Source is the uniform contract every upstream feed implements.
type Source interface {
	Name() string
	Enabled() bool
	Collect(ctx context.Context) ([]observation.Observation, Stats, error)
}

// retryCollect runs fn under policy, retrying transient failures with
// full-jitter backoff, honoring ctx cancellation between attempts. fn
// should return the partial observations it gathered even on error so a
// retry exhaustion never discards prior progress silently: retryCollect
// keeps the most recent non-empty partial result and returns it together
// with the last error.
func retryCollect(ctx context.Context, name string, policy RetryPolicy, fn func(ctx context.Context) ([]observation.Observation, error)) ([]observation.Observation, Stats, error) {
	started := time.Now()
	stats := Stats{Name: name}
	var lastErr error
	var best []observation.Observation

	for attempt := 0; attempt < policy.maxAttempts(); attempt++ {
		stats.Attempts++
		obs, err := fn(ctx)
		if len(obs) > 0 {
			best = obs
		}
		if err == nil {
			stats.ObservationsSent = len(obs)
			stats.Duration = time.Since(started)
			return obs, stats, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
		if attempt == policy.maxAttempts()-1 {
			break
		}

		delay := policy.nextDelay(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			lastErr = ctx.Err()
			attempt = policy.maxAttempts() // break outer loop
		case <-timer.C:
		}
	}

	stats.ObservationsSent = len(best)
	stats.Duration = time.Since(started)
	if lastErr != nil {
		stats.LastError = lastErr.Error()
	}
	return best, stats, lastErr
}
