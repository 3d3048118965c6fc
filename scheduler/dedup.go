package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

// dedupBackend is the storage strategy behind dedupWindow: either the
// default in-process LRU (single replica) or a shared Redis instance so
// multiple Scheduler replicas agree on which critical_alert was already
// emitted.
type dedupBackend interface {
	// markIfAbsent records key as seen and returns true if it was not
	// already present within window; false means a duplicate.
	markIfAbsent(ctx context.Context, key string, window time.Duration) bool
}

// dedupWindow suppresses repeat critical_alert emission for the same
// (location, severity_bucket) pair within a fixed window, grounded on the
// h3-spatial-cache module's LRU-backed lookup cache pattern.
type dedupWindow struct {
	backend dedupBackend
	window  time.Duration
}

func newDedupWindow(window time.Duration) *dedupWindow {
	if window <= 0 {
		window = 10 * time.Minute
	}
	return &dedupWindow{backend: newLRUDedupBackend(), window: window}
}

// newDedupWindowWithRedis builds a dedup window backed by a shared Redis
// instance instead of the in-process LRU, for multi-replica deployments
// where critical-alert de-duplication must be durable across instances.
func newDedupWindowWithRedis(client *redis.Client, window time.Duration) *dedupWindow {
	if window <= 0 {
		window = 10 * time.Minute
	}
	return &dedupWindow{backend: &redisDedupBackend{client: client}, window: window}
}

// shouldEmit reports whether an alert for (location, bucket) should be
// published now, recording the emission if so.
func (d *dedupWindow) shouldEmit(location, bucket string, now time.Time) bool {
	key := location + "|" + bucket
	return d.backend.markIfAbsent(context.Background(), key, d.window)
}

// lruDedupBackend is the default single-replica backend. Keys are hashed
// with xxhash rather than kept as strings: at a few thousand locations
// reporting every cycle, this keeps the cache's per-entry footprint to a
// fixed 8 bytes instead of the underlying location/severity string.
type lruDedupBackend struct {
	mu    sync.Mutex
	cache *lru.Cache[uint64, time.Time]
}

func newLRUDedupBackend() *lruDedupBackend {
	cache, err := lru.New[uint64, time.Time](4096)
	if err != nil {
		panic("scheduler: failed to allocate dedup cache: " + err.Error())
	}
	return &lruDedupBackend{cache: cache}
}

func (b *lruDedupBackend) markIfAbsent(_ context.Context, key string, window time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	hashedKey := xxhash.Sum64String(key)
	now := time.Now()
	if last, ok := b.cache.Get(hashedKey); ok {
		if now.Sub(last) < window {
			return false
		}
	}
	b.cache.Add(hashedKey, now)
	return true
}

// redisDedupBackend uses SETNX-with-TTL semantics so every replica of the
// Scheduler shares the same de-duplication window. Exercised in tests
// against an alicebob/miniredis/v2 in-process server.
type redisDedupBackend struct {
	client *redis.Client
}

func (b *redisDedupBackend) markIfAbsent(ctx context.Context, key string, window time.Duration) bool {
	ok, err := b.client.SetNX(ctx, "floodroute:dedup:"+key, 1, window).Result()
	if err != nil {
		// Fail open: a transient Redis error must not suppress a real
		// critical alert.
		return true
	}
	return ok
}
