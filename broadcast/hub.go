package broadcast

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/example/floodroute/backend/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub is the single process-wide Broadcast Hub: a multi-producer,
// multi-subscriber fan-out of typed Events.
type Hub struct {
	mu             sync.RWMutex
	subscribers    map[string]*Subscriber
	queueSize      int
	maxSubscribers int
}

// New builds a Hub with the given per-subscriber queue capacity and
// subscriber-count ceiling (0 disables the ceiling).
func New(queueSize, maxSubscribers int) *Hub {
	return &Hub{
		subscribers:    make(map[string]*Subscriber),
		queueSize:      queueSize,
		maxSubscribers: maxSubscribers,
	}
}

// Subscribe upgrades an incoming HTTP request to a websocket connection,
// registers a new Subscriber, and serves it until the connection drops or
// ctx is cancelled. It blocks for the lifetime of the connection; callers
// invoke it from the request-handling goroutine per connection.
func (h *Hub) Subscribe(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.mu.Lock()
	if h.maxSubscribers > 0 && len(h.subscribers) >= h.maxSubscribers {
		h.mu.Unlock()
		http.Error(w, "too many subscribers", http.StatusServiceUnavailable)
		return errTooManySubscribers
	}
	h.mu.Unlock()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := newSubscriber(uuid.NewString(), conn, h.queueSize)

	h.mu.Lock()
	h.subscribers[sub.ID()] = sub
	h.mu.Unlock()
	metrics.BroadcastSubscribers.Inc()

	defer h.unregister(sub.ID())
	defer sub.close()

	sub.enqueue(NewEvent(KindConnectionOpened, map[string]string{"subscriber_id": sub.ID()}))

	return sub.serve(ctx)
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	_, existed := h.subscribers[id]
	delete(h.subscribers, id)
	h.mu.Unlock()
	if existed {
		metrics.BroadcastSubscribers.Dec()
	}
}

// Publish fans out an event to every subscriber, applying the per-kind
// policy: critical_alert disconnects a subscriber whose queue is full
// instead of dropping the alert; every other kind drops that
// subscriber's oldest queued event instead.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	targets := make([]*Subscriber, 0, len(h.subscribers))
	for _, s := range h.subscribers {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	var toDisconnect []string
	for _, s := range targets {
		if s.enqueue(ev) {
			toDisconnect = append(toDisconnect, s.ID())
		}
	}

	for _, id := range toDisconnect {
		h.mu.Lock()
		sub, ok := h.subscribers[id]
		delete(h.subscribers, id)
		h.mu.Unlock()
		if ok {
			metrics.BroadcastSubscribers.Dec()
			metrics.BroadcastDisconnects.Inc()
			sub.sendBye("critical_alert queue full")
			sub.close()
		}
	}
}

// SubscriberCount reports the number of currently registered subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

var errTooManySubscribers = httpError("broadcast: subscriber limit reached")

type httpError string

func (e httpError) Error() string { return string(e) }
