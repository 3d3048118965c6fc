package scheduler

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisDedupBackendSuppressesRepeatWithinWindow(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	d := newDedupWindowWithRedis(client, 10*time.Minute)

	now := time.Now()
	require.True(t, d.shouldEmit("Marikina", "critical", now))
	require.False(t, d.shouldEmit("Marikina", "critical", now))

	mr.FastForward(11 * time.Minute)
	require.True(t, d.shouldEmit("Marikina", "critical", now))
}
