package broadcast

import (
	"github.com/example/floodroute/backend/fusion"
	"github.com/example/floodroute/backend/scheduler"
)

// SchedulerPublisher adapts a Hub to the scheduler.Publisher contract used
// by the live collection loop.
type SchedulerPublisher struct{ Hub *Hub }

func (p SchedulerPublisher) PublishRiskUpdate(result fusion.ApplyResult) {
	p.Hub.Publish(NewEvent(KindRiskUpdate, map[string]int{
		"locations_changed": result.LocationsChanged,
		"edges_changed":     result.EdgesChanged,
	}))
}

func (p SchedulerPublisher) PublishFloodUpdate(locations map[string]fusion.LocationRisk) {
	p.Hub.Publish(NewEvent(KindFloodUpdate, locations))
}

func (p SchedulerPublisher) PublishCriticalAlert(alert scheduler.CriticalAlert) {
	p.Hub.Publish(NewEvent(KindCriticalAlert, alert))
}

func (p SchedulerPublisher) PublishSystemStatus(stats scheduler.Stats) {
	p.Hub.Publish(NewEvent(KindSystemStatus, stats))
}

// ScenarioPublisher adapts a Hub to the scenario.Publisher contract,
// tagging every event with the simulated tick and clock per §4.6.
type ScenarioPublisher struct{ Hub *Hub }

type scenarioEnvelope struct {
	SimTick  int         `json:"sim_tick"`
	SimClock float64     `json:"sim_clock"`
	Data     interface{} `json:"data"`
}

func (p ScenarioPublisher) PublishRiskUpdate(tick int, clock float64, result fusion.ApplyResult) {
	p.Hub.Publish(NewEvent(KindRiskUpdate, scenarioEnvelope{SimTick: tick, SimClock: clock, Data: map[string]int{
		"locations_changed": result.LocationsChanged,
		"edges_changed":     result.EdgesChanged,
	}}))
}

func (p ScenarioPublisher) PublishFloodUpdate(tick int, clock float64, locations map[string]fusion.LocationRisk) {
	p.Hub.Publish(NewEvent(KindFloodUpdate, scenarioEnvelope{SimTick: tick, SimClock: clock, Data: locations}))
}

func (p ScenarioPublisher) PublishCriticalAlert(tick int, clock float64, crossing fusion.CriticalCrossing) {
	p.Hub.Publish(NewEvent(KindCriticalAlert, scenarioEnvelope{SimTick: tick, SimClock: clock, Data: crossing}))
}

func (p ScenarioPublisher) PublishScenarioState(event string, tick int, clock float64) {
	p.Hub.Publish(NewEvent(KindScenarioState, scenarioEnvelope{SimTick: tick, SimClock: clock, Data: map[string]string{
		"event": event,
	}}))
}
