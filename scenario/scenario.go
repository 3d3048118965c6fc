// Package scenario implements the replayable event-list driver used for
// demos and deterministic testing: a logical clock advances over a
// pre-authored, time-ordered event list and feeds the same Fusion path the
// live Scheduler uses. Grounded on the teacher's Simulator (a
// mutex-guarded state machine with a buffered event channel), generalized
// from satellite/ground-station recompute to flood-observation replay.
package scenario

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/floodroute/backend/fusion"
	"github.com/example/floodroute/backend/graph"
	"github.com/example/floodroute/backend/observation"
)

// State is the Scenario Driver's run state.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// Event is one entry of the authored, time-ordered event list. TimeOffset
// is seconds from scenario start; InsertIndex breaks ties deterministically
// per the spec's ordering invariant.
type Event struct {
	TimeOffsetS float64
	InsertIndex int
	Observation observation.Observation
}

// Publisher is the Scenario Driver's narrow view of the Broadcast Hub,
// tagging every publish with the simulated tick and clock per §4.6.
type Publisher interface {
	PublishRiskUpdate(tick int, clock float64, result fusion.ApplyResult)
	PublishFloodUpdate(tick int, clock float64, locations map[string]fusion.LocationRisk)
	PublishCriticalAlert(tick int, clock float64, crossing fusion.CriticalCrossing)
	PublishScenarioState(event string, tick int, clock float64)
}

// Driver is the single Scenario Driver instance.
type Driver struct {
	graph  *graph.Graph
	fusion *fusion.Engine
	pub    Publisher

	mu       sync.Mutex
	state    State
	clock    float64
	tick     int
	tickSize time.Duration
	speed    float64
	events   []Event
	cursor   int
	cancel   context.CancelFunc
	loopDone chan struct{}
}

// New builds a Scenario Driver over a fixed, pre-sorted event list.
// Events are sorted by (TimeOffsetS, InsertIndex) at construction, which is
// the order the spec requires for same-tick processing.
func New(g *graph.Graph, f *fusion.Engine, pub Publisher, events []Event) *Driver {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TimeOffsetS != sorted[j].TimeOffsetS {
			return sorted[i].TimeOffsetS < sorted[j].TimeOffsetS
		}
		return sorted[i].InsertIndex < sorted[j].InsertIndex
	})
	return &Driver{
		graph:    g,
		fusion:   f,
		pub:      pub,
		state:    StateStopped,
		tickSize: time.Second,
		speed:    1.0,
		events:   sorted,
	}
}

// Fusion returns the Fusion Engine this driver replays events into, so a
// Query Surface wired to the same process can serve flood_status pulls
// against the same state the scenario_state broadcasts describe.
func (d *Driver) Fusion() *fusion.Engine {
	return d.fusion
}

// State returns the driver's current run state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Start transitions stopped|paused -> running and begins the tick loop at
// the given speed factor (1.0 = real time). Calling Start while already
// running is a no-op.
func (d *Driver) Start(speed float64) {
	d.mu.Lock()
	if d.state == StateRunning {
		d.mu.Unlock()
		return
	}
	if speed <= 0 {
		speed = 1.0
	}
	d.speed = speed
	d.state = StateRunning
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.loopDone = make(chan struct{})
	tick, clock := d.tick, d.clock
	d.mu.Unlock()

	go d.loop(ctx)

	if d.pub != nil {
		d.pub.PublishScenarioState("started", tick, clock)
	}
}

// Stop transitions running -> paused. Idempotent: stopping an
// already-stopped or already-paused driver is a no-op.
func (d *Driver) Stop() {
	d.mu.Lock()
	if d.state != StateRunning {
		d.mu.Unlock()
		return
	}
	cancel := d.cancel
	done := d.loopDone
	d.state = StatePaused
	d.mu.Unlock()

	cancel()
	<-done

	d.mu.Lock()
	tick, clock := d.tick, d.clock
	d.mu.Unlock()
	if d.pub != nil {
		d.pub.PublishScenarioState("stopped", tick, clock)
	}
}

// Reset transitions any state -> stopped, zeroes the logical clock and
// cursor, restores all edges to risk = 0, and discards fused state and
// alert de-dup memory (the latter is the caller's responsibility via the
// Scheduler's dedup window; Reset only clears what the Driver itself owns).
// Idempotent.
func (d *Driver) Reset() {
	d.mu.Lock()
	running := d.state == StateRunning
	cancel := d.cancel
	done := d.loopDone
	d.mu.Unlock()

	if running {
		cancel()
		<-done
	}

	d.mu.Lock()
	d.state = StateStopped
	d.clock = 0
	d.tick = 0
	d.cursor = 0
	d.graph.ResetAllRisk()
	d.fusion.Reset()
	d.mu.Unlock()

	// scenario_state:{event:"reset"} must be the last message a subscriber
	// sees before it observes the post-reset steady state.
	if d.pub != nil {
		d.pub.PublishScenarioState("reset", 0, 0)
	}
}

func (d *Driver) loop(ctx context.Context) {
	defer close(d.loopDone)
	ticker := time.NewTicker(d.tickSize)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !d.advance() {
				return
			}
		}
	}
}

// advance performs one tick: advances the clock, pops due events, runs
// Fusion, and publishes. Returns false when the event list is exhausted
// and there is nothing left to process.
func (d *Driver) advance() bool {
	d.mu.Lock()
	d.clock += d.tickSize.Seconds() * d.speed
	d.tick++
	clock := d.clock
	tick := d.tick

	var due []Event
	for d.cursor < len(d.events) && d.events[d.cursor].TimeOffsetS <= clock {
		due = append(due, d.events[d.cursor])
		d.cursor++
	}
	exhausted := d.cursor >= len(d.events)
	d.mu.Unlock()

	if len(due) > 0 {
		now := time.Now()
		batch := make([]observation.Observation, 0, len(due))
		for _, ev := range due {
			o := ev.Observation
			o.TS = now // rewrite to wall-clock so time-windowed readers see these as fresh
			batch = append(batch, o)
		}

		result := d.fusion.Apply(d.graph, batch, now)

		if d.pub != nil {
			d.pub.PublishRiskUpdate(tick, clock, result)
			d.pub.PublishFloodUpdate(tick, clock, result.Locations)
			for _, crossing := range result.CriticalCrossings {
				d.pub.PublishCriticalAlert(tick, clock, crossing)
			}
		}
	}

	if d.pub != nil {
		d.pub.PublishScenarioState("tick", tick, clock)
	}

	return !exhausted
}

// Status reports the driver's current clock/tick/state, for the Query
// Surface's simulation_status operation.
type Status struct {
	State State
	Clock float64
	Tick  int
	Total int
	Done  int
}

func (d *Driver) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Status{State: d.state, Clock: d.clock, Tick: d.tick, Total: len(d.events), Done: d.cursor}
}
