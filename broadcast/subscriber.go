package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"github.com/example/floodroute/backend/metrics"
)

const (
	writeWait      = 2 * time.Second
	heartbeatEvery = 30 * time.Second
	// A subscriber missing two consecutive heartbeats is disconnected.
	pongWait = 2 * heartbeatEvery
)

// Stats tracks per-subscriber delivery counters.
type Stats struct {
	Dropped     int64
	Delivered   int64
	Disconnects int64
}

// ErrPongDeadlineExceeded is returned from the pump when a subscriber
// misses two consecutive heartbeats.
var ErrPongDeadlineExceeded = errors.New("broadcast: subscriber missed two heartbeats")

// Subscriber is one connected client: a bounded outbound queue plus the
// websocket connection serving it.
type Subscriber struct {
	id           string
	queue        chan Event
	conn         *websocket.Conn
	writeMu      sync.Mutex
	dropped      atomic.Int64
	sent         atomic.Int64
	disconnected atomic.Int64
	closeFn      func()
	closedAt     atomic.Bool
}

func newSubscriber(id string, conn *websocket.Conn, queueSize int) *Subscriber {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Subscriber{id: id, queue: make(chan Event, queueSize), conn: conn}
}

// ID returns the subscriber's connection identity.
func (s *Subscriber) ID() string { return s.id }

// Stats reports this subscriber's delivery counters.
func (s *Subscriber) Stats() Stats {
	return Stats{
		Dropped:     s.dropped.Load(),
		Delivered:   s.sent.Load(),
		Disconnects: s.disconnected.Load(),
	}
}

// enqueue applies the Hub's publication policy for kind: critical_alert
// may never be silently dropped, so a full queue instead signals the
// caller to disconnect this subscriber. Every other kind drops the oldest
// queued event to make room, per §4.8.
func (s *Subscriber) enqueue(ev Event) (disconnect bool) {
	select {
	case s.queue <- ev:
		return false
	default:
	}

	if ev.Kind == KindCriticalAlert {
		s.disconnected.Add(1)
		return true
	}

	select {
	case <-s.queue:
		s.dropped.Add(1)
		metrics.BroadcastDropped.Inc()
	default:
	}
	select {
	case s.queue <- ev:
	default:
	}
	return false
}

// serve runs the subscriber's write pump, ping/pong liveness check, and
// read pump (draining client-sent pong/close frames) until ctx is
// cancelled or the connection fails, grounded on the teacher's
// client.Sync() errgroup join.
func (s *Subscriber) serve(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	pong := make(chan struct{}, 1)
	s.conn.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	group.Go(func() error { return s.readLoop(groupCtx) })
	group.Go(func() error { return s.pingLoop(groupCtx, pong) })
	group.Go(func() error { return s.writeLoop(groupCtx) })

	return group.Wait()
}

// clientMessage is the shape of an inbound application-level frame. The
// only client-originated message the Hub understands is a JSON-level
// ping, answered with a JSON-level pong; this is independent of the
// websocket control-frame ping/pong heartbeat driven by pingLoop.
type clientMessage struct {
	Kind Kind `json:"kind"`
}

func (s *Subscriber) readLoop(ctx context.Context) error {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg clientMessage
		if json.Unmarshal(data, &msg) == nil && msg.Kind == "ping" {
			_ = s.writeJSON(NewEvent(KindPong, nil))
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}

func (s *Subscriber) pingLoop(ctx context.Context, pong <-chan struct{}) error {
	ticker := channerics.NewTicker(ctx.Done(), heartbeatEvery)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker:
			if time.Since(lastPong) > pongWait {
				s.sendBye("missed two consecutive heartbeats")
				metrics.BroadcastDisconnects.Inc()
				return ErrPongDeadlineExceeded
			}
			if err := s.writeControl(websocket.PingMessage); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (s *Subscriber) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-s.queue:
			if !ok {
				return nil
			}
			if err := s.writeJSON(ev); err != nil {
				return err
			}
			s.sent.Add(1)
		}
	}
}

func (s *Subscriber) writeJSON(ev Event) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	return s.conn.WriteJSON(ev)
}

func (s *Subscriber) writeControl(messageType int) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteControl(messageType, nil, time.Now().Add(writeWait))
}

// sendBye writes the terminal bye event directly, bypassing the bounded
// queue: the connection is about to be torn down regardless of backlog,
// and §7 requires this message precede any Hub-initiated disconnect.
// Best-effort; a write failure here just means the peer is already gone.
func (s *Subscriber) sendBye(reason string) {
	_ = s.writeJSON(NewEvent(KindBye, map[string]string{"reason": reason}))
}

// close tears down the connection. Safe to call more than once.
func (s *Subscriber) close() {
	if s.closedAt.CompareAndSwap(false, true) {
		_ = s.conn.Close()
	}
}
