package broadcast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestSubscriber(queueSize int) *Subscriber {
	return &Subscriber{id: "sub-1", queue: make(chan Event, queueSize)}
}

func TestEnqueueDropsOldestForNonCriticalKinds(t *testing.T) {
	s := newTestSubscriber(2)

	require.False(t, s.enqueue(NewEvent(KindRiskUpdate, 1)))
	require.False(t, s.enqueue(NewEvent(KindRiskUpdate, 2)))
	// Queue full: the third publish drops the oldest (1) and keeps (2),(3).
	require.False(t, s.enqueue(NewEvent(KindRiskUpdate, 3)))

	require.Equal(t, int64(1), s.dropped.Load())
	first := <-s.queue
	require.Equal(t, 2, first.Payload)
	second := <-s.queue
	require.Equal(t, 3, second.Payload)
}

func TestEnqueueSignalsDisconnectForCriticalAlertWhenFull(t *testing.T) {
	s := newTestSubscriber(1)

	require.False(t, s.enqueue(NewEvent(KindCriticalAlert, "first")))
	// Queue is now full; a second critical_alert must not be dropped
	// silently — enqueue reports the subscriber should be disconnected.
	require.True(t, s.enqueue(NewEvent(KindCriticalAlert, "second")))

	// The original alert is still queued, untouched.
	require.Equal(t, int64(0), s.dropped.Load())
	pending := <-s.queue
	require.Equal(t, "first", pending.Payload)
}
