package scenario

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/example/floodroute/backend/fusion"
	"github.com/example/floodroute/backend/graph"
	"github.com/example/floodroute/backend/observation"
)

type recordingPublisher struct {
	riskUpdates   int
	alerts        []fusion.CriticalCrossing
	scenarioState []string
}

func (p *recordingPublisher) PublishRiskUpdate(tick int, clock float64, result fusion.ApplyResult) {
	p.riskUpdates++
}
func (p *recordingPublisher) PublishFloodUpdate(tick int, clock float64, locations map[string]fusion.LocationRisk) {
}
func (p *recordingPublisher) PublishCriticalAlert(tick int, clock float64, crossing fusion.CriticalCrossing) {
	p.alerts = append(p.alerts, crossing)
}
func (p *recordingPublisher) PublishScenarioState(event string, tick int, clock float64) {
	p.scenarioState = append(p.scenarioState, event)
}

func buildGraph(t *testing.T) *graph.Graph {
	t.Helper()
	nodes := []graph.Node{{ID: 1, Lon: 0, Lat: 0}, {ID: 2, Lon: 0.001, Lat: 0}}
	edges := []graph.TopologyEdge{{
		Key: graph.EdgeKey{U: 1, V: 2, K: 0}, LengthM: 100, RoadClass: graph.RoadResidential,
		Influences: []graph.LocationWeight{{Location: "Sto Nino", DistanceM: 0}},
	}}
	g, err := graph.NewGraph(nodes, edges)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestScenarioDriverLifecycle(t *testing.T) {
	Convey("Given a Scenario Driver with a two-event list", t, func() {
		g := buildGraph(t)
		f := fusion.NewEngine()
		pub := &recordingPublisher{}

		events := []Event{
			{
				TimeOffsetS: 2, InsertIndex: 0,
				Observation: observation.Observation{
					Kind: observation.KindGauge,
					Gauge: &observation.GaugeReading{
						StationID: "s1", Location: "Sto Nino",
						WaterLevelM: 19, AlertM: 14, AlarmM: 16, CriticalM: 18,
					},
				},
			},
			{
				TimeOffsetS: 1, InsertIndex: 1,
				Observation: observation.Observation{
					Kind: observation.KindGauge,
					Gauge: &observation.GaugeReading{
						StationID: "s1", Location: "Sto Nino",
						WaterLevelM: 10, AlertM: 14, AlarmM: 16, CriticalM: 18,
					},
				},
			},
		}
		d := New(g, f, pub, events)

		Convey("events are sorted by time offset regardless of insertion order", func() {
			So(d.events[0].TimeOffsetS, ShouldEqual, 1)
			So(d.events[1].TimeOffsetS, ShouldEqual, 2)
		})

		Convey("starts in the stopped state", func() {
			So(d.State(), ShouldEqual, StateStopped)
		})

		Convey("advance() processes only events due by the new clock", func() {
			d.mu.Lock()
			d.tickSize = time.Second
			d.speed = 1.0
			d.mu.Unlock()

			more := d.advance() // clock=1: first sorted event (offset 1) is due
			So(more, ShouldBeTrue)
			So(pub.riskUpdates, ShouldEqual, 1)

			more = d.advance() // clock=2: second sorted event (offset 2) is due
			So(more, ShouldBeFalse)
			So(pub.riskUpdates, ShouldEqual, 2)
		})

		Convey("Reset restores edges to zero and discards fused state", func() {
			d.mu.Lock()
			d.tickSize = time.Second
			d.mu.Unlock()
			d.advance()
			d.advance()

			d.Reset()

			So(d.State(), ShouldEqual, StateStopped)
			ev, _ := g.EdgeByKey(graph.EdgeKey{U: 1, V: 2, K: 0})
			So(ev.Risk, ShouldEqual, 0.0)
			So(len(f.Snapshot()), ShouldEqual, 0)

			So(pub.scenarioState[len(pub.scenarioState)-1], ShouldEqual, "reset")
		})

		Convey("Stop and Reset are idempotent when already stopped", func() {
			d.Stop()
			d.Stop()
			d.Reset()
			d.Reset()
			So(d.State(), ShouldEqual, StateStopped)
		})
	})
}
