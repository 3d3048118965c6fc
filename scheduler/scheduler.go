// Package scheduler implements the single periodic collection loop that
// fans out to every enabled Source in parallel, hands their union to the
// Fusion Engine, and publishes the result. Grounded on chaos-utils's
// MonitorContinuous ticker loop, generalized from a single callback to a
// parallel fan-out/fan-in over a Source slice.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/example/floodroute/backend/fusion"
	"github.com/example/floodroute/backend/graph"
	"github.com/example/floodroute/backend/metrics"
	"github.com/example/floodroute/backend/observation"
	"github.com/example/floodroute/backend/sources"
)

// ErrBusy is returned by Trigger when a cycle is already running.
var ErrBusy = errors.New("scheduler: a collection cycle is already running")

// Stats mirrors the `{runs, successes, failures, observations_emitted,
// last_error}` contract from the spec's Scheduler section.
type Stats struct {
	Runs                uint64
	Successes           uint64
	Failures            uint64
	ObservationsEmitted uint64
	LastError           string
	LastRunTS           time.Time
}

// CriticalAlert is a dedup-worthy event surfaced by Fusion, handed to
// whatever publisher (broadcast.Hub normally) the Scheduler is wired to.
type CriticalAlert struct {
	Location   string
	Reason     string
	Risk       float64
	WaterLevel float64
	TS         time.Time
}

// Publisher is the Scheduler's narrow view of the Broadcast Hub: four
// independently-failing sinks, none of which may block collection.
type Publisher interface {
	PublishRiskUpdate(result fusion.ApplyResult)
	PublishFloodUpdate(locations map[string]fusion.LocationRisk)
	PublishCriticalAlert(alert CriticalAlert)
	PublishSystemStatus(stats Stats)
}

// Scheduler is the single per-process collection loop.
type Scheduler struct {
	graph   *graph.Graph
	fusion  *fusion.Engine
	sources []sources.Source
	pub     Publisher
	dedup   *dedupWindow

	guard time.Duration

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	loopDone chan struct{}
	busy     atomic.Bool
	stats    Stats
	statsMu  sync.Mutex

	sourceStatsMu sync.Mutex
	sourceStats   map[string]sources.Stats
}

// New builds a Scheduler over a fixed Source list. guard is subtracted
// from the tick period to bound each cycle's overall collection budget
// (late sources are cancelled once the budget elapses).
func New(g *graph.Graph, f *fusion.Engine, srcs []sources.Source, pub Publisher, guard time.Duration, dedupWindow time.Duration) *Scheduler {
	if guard <= 0 {
		guard = 2 * time.Second
	}
	return &Scheduler{
		graph:       g,
		fusion:      f,
		sources:     srcs,
		pub:         pub,
		dedup:       newDedupWindow(dedupWindow),
		guard:       guard,
		sourceStats: make(map[string]sources.Stats, len(srcs)),
	}
}

// UseRedisDedup swaps the Scheduler's critical-alert de-duplication onto a
// shared Redis instance, for deployments running more than one Scheduler
// replica against the same topology.
func (s *Scheduler) UseRedisDedup(client *redis.Client, window time.Duration) {
	s.dedup = newDedupWindowWithRedis(client, window)
}

// Start begins the cooperative loop with the given tick period. Calling
// Start twice without an intervening Stop is a no-op.
func (s *Scheduler) Start(period time.Duration) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true
	s.loopDone = make(chan struct{})
	s.mu.Unlock()

	go s.loop(ctx, period)
}

func (s *Scheduler) loop(ctx context.Context, period time.Duration) {
	defer close(s.loopDone)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx, period)
		}
	}
}

// Trigger forces one immediate cycle without resetting the periodic
// ticker. A second concurrent call returns ErrBusy.
func (s *Scheduler) Trigger(ctx context.Context, period time.Duration) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)
	s.runCycle(ctx, period)
	return nil
}

// Stop cancels the loop and waits up to grace for the in-flight cycle to
// finish.
func (s *Scheduler) Stop(grace time.Duration) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.loopDone
	s.running = false
	s.mu.Unlock()

	cancel()

	if grace <= 0 {
		return
	}
	select {
	case <-done:
	case <-time.After(grace):
	}
}

// runCycle performs one full collection-fusion-publish cycle. It holds
// the busy flag only via Trigger's caller; the periodic loop invokes it
// directly since ticker.C cannot fire re-entrantly on the same goroutine.
func (s *Scheduler) runCycle(parent context.Context, period time.Duration) {
	budget := period - s.guard
	if budget <= 0 {
		budget = period
	}
	ctx, cancel := context.WithTimeout(parent, budget)
	defer cancel()

	batch, successes, failures, lastErr := s.collectAll(ctx)

	now := time.Now()
	result := s.fusion.Apply(s.graph, batch, now)

	s.recordStats(result, successes, failures, lastErr)

	if s.pub != nil {
		s.pub.PublishRiskUpdate(result)
		s.pub.PublishFloodUpdate(result.Locations)
		for _, crossing := range result.CriticalCrossings {
			if s.dedup.shouldEmit(crossing.Location, severityBucket(crossing.Risk), now) {
				s.pub.PublishCriticalAlert(CriticalAlert{
					Location:   crossing.Location,
					Reason:     crossing.Reason,
					Risk:       crossing.Risk,
					WaterLevel: crossing.WaterLevel,
					TS:         now,
				})
			}
		}
		s.pub.PublishSystemStatus(s.Stats())
	}
}

// collectAll dispatches Collect on every enabled source in parallel via
// errgroup, gathering results within ctx's deadline; sources still running
// when ctx expires see their context cancelled, and collectAll waits for
// every source to return, so a source that ignores cancellation delays
// the cycle.
// successes/failures are counted per source, per §8 scenario S3 ("one
// cycle completes; stats show successes=1, failures=1" for a two-source
// cycle where one source succeeds and the other times out) rather than
// collapsed into a single cycle-level pass/fail flag.
func (s *Scheduler) collectAll(ctx context.Context) (batch []observation.Observation, successes int, failures int, lastErr error) {
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range s.sources {
		src := src
		if !src.Enabled() {
			continue
		}
		g.Go(func() error {
			obs, stat, err := src.Collect(gctx)
			mu.Lock()
			batch = append(batch, obs...)
			if err != nil {
				failures++
				lastErr = err
			} else {
				successes++
			}
			mu.Unlock()
			s.recordSourceStats(stat)
			return nil // a source error never aborts its siblings
		})
	}
	_ = g.Wait()

	return batch, successes, failures, lastErr
}

func (s *Scheduler) recordSourceStats(stat sources.Stats) {
	if stat.Name == "" {
		return
	}
	s.sourceStatsMu.Lock()
	s.sourceStats[stat.Name] = stat
	s.sourceStatsMu.Unlock()

	metrics.SourceObservations.WithLabelValues(stat.Name).Add(float64(stat.ObservationsSent))
	metrics.SourceParseErrors.WithLabelValues(stat.Name).Add(float64(stat.ParseErrors))
}

// SourceStatus returns the most recent per-source Stats from the last
// completed cycle, for the Query Surface's source_status() operation.
func (s *Scheduler) SourceStatus() map[string]sources.Stats {
	s.sourceStatsMu.Lock()
	defer s.sourceStatsMu.Unlock()
	out := make(map[string]sources.Stats, len(s.sourceStats))
	for k, v := range s.sourceStats {
		out[k] = v
	}
	return out
}

func (s *Scheduler) recordStats(result fusion.ApplyResult, successes, failures int, lastErr error) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.stats.Runs++
	s.stats.LastRunTS = time.Now()
	s.stats.ObservationsEmitted += uint64(result.LocationsChanged)
	s.stats.Successes += uint64(successes)
	s.stats.Failures += uint64(failures)
	metrics.SchedulerRuns.Inc()
	if lastErr != nil {
		s.stats.LastError = lastErr.Error()
	}
	if failures > 0 {
		metrics.SchedulerFailures.Add(float64(failures))
	}
}

// Stats returns a snapshot of the scheduler's run counters.
func (s *Scheduler) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

func severityBucket(risk float64) string {
	switch {
	case risk >= 0.95:
		return "critical"
	case risk >= 0.8:
		return "high"
	default:
		return "moderate"
	}
}
