package fusion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/floodroute/backend/graph"
	"github.com/example/floodroute/backend/observation"
)

func twoNodeGraph(t *testing.T, influences []graph.LocationWeight) (*graph.Graph, graph.EdgeKey) {
	t.Helper()
	nodes := []graph.Node{
		{ID: 1, Lon: 0, Lat: 0},
		{ID: 2, Lon: 0.001, Lat: 0},
	}
	key := graph.EdgeKey{U: 1, V: 2, K: 0}
	edges := []graph.TopologyEdge{
		{Key: key, LengthM: 100, RoadClass: graph.RoadResidential, Influences: influences},
	}
	g, err := graph.NewGraph(nodes, edges)
	require.NoError(t, err)
	return g, key
}

func TestApplyGaugeAboveCriticalSetsEdgeRiskToDampenedMax(t *testing.T) {
	influences := []graph.LocationWeight{{Location: "Sto Nino", DistanceM: 0}}
	g, key := twoNodeGraph(t, influences)
	e := NewEngine()

	now := time.Unix(1000, 0)
	batch := []observation.Observation{
		{
			Kind: observation.KindGauge,
			TS:   now,
			Gauge: &observation.GaugeReading{
				StationID: "sta-1", Location: "Sto Nino",
				WaterLevelM: 19, AlertM: 14, AlarmM: 16, CriticalM: 18,
			},
		},
	}

	result := e.Apply(g, batch, now)
	require.Equal(t, 1, result.LocationsChanged)
	require.Equal(t, 1, result.EdgesChanged)

	ev, ok := g.EdgeByKey(key)
	require.True(t, ok)
	// r_gauge = 1, no crowd reports: combined = 1*(0.75) + 0*0.25 = 0.75
	require.Equal(t, 0.75, ev.Risk)
	require.Len(t, result.CriticalCrossings, 1)
	require.Equal(t, "gauge_critical", result.CriticalCrossings[0].Reason)
}

func TestApplyDecaysUntouchedLocations(t *testing.T) {
	influences := []graph.LocationWeight{{Location: "Sto Nino", DistanceM: 0}}
	g, key := twoNodeGraph(t, influences)
	e := NewEngine()

	now := time.Unix(1000, 0)
	batch := []observation.Observation{
		{
			Kind: observation.KindGauge,
			TS:   now,
			Gauge: &observation.GaugeReading{
				StationID: "sta-1", Location: "Sto Nino",
				WaterLevelM: 18, AlertM: 14, AlarmM: 16, CriticalM: 18,
			},
		},
	}
	e.Apply(g, batch, now)
	ev, _ := g.EdgeByKey(key)
	require.Equal(t, 0.75, ev.Risk)

	// Next cycle: no observations at all, location should decay.
	result := e.Apply(g, nil, now.Add(time.Minute))
	require.Greater(t, result.LocationsChanged, 0)

	ev2, _ := g.EdgeByKey(key)
	require.Less(t, ev2.Risk, ev.Risk)
}

func TestCrowdSeverityCappedWithoutAgreement(t *testing.T) {
	influences := []graph.LocationWeight{{Location: "Marikina", DistanceM: 0}}
	g, key := twoNodeGraph(t, influences)
	e := NewEngine()

	now := time.Unix(2000, 0)
	batch := []observation.Observation{
		{
			Kind: observation.KindCrowd,
			TS:   now,
			Crowd: &observation.CrowdReport{
				Location: "Marikina", Severity: 1.0,
				Coord: observation.Coord{Lon: 121.0, Lat: 14.6},
			},
		},
	}
	e.Apply(g, batch, now)
	ev, _ := g.EdgeByKey(key)
	// Envelope is 0, so combined = 0*(0.75) + min(0.8,1.0)*0.25 = 0.2
	require.InDelta(t, 0.2, ev.Risk, 1e-9)
}

func TestCrowdAgreementUnlocksFullSeverity(t *testing.T) {
	influences := []graph.LocationWeight{{Location: "Marikina", DistanceM: 0}}
	g, key := twoNodeGraph(t, influences)
	e := NewEngine()

	now := time.Unix(2000, 0)
	batch := []observation.Observation{
		{
			Kind: observation.KindCrowd, TS: now,
			Crowd: &observation.CrowdReport{
				Location: "Marikina", Severity: 1.0,
				Coord: observation.Coord{Lon: 121.0, Lat: 14.6},
			},
		},
		{
			Kind: observation.KindCrowd, TS: now,
			Crowd: &observation.CrowdReport{
				Location: "Marikina", Severity: 0.9,
				Coord: observation.Coord{Lon: 121.001, Lat: 14.6},
			},
		},
	}
	e.Apply(g, batch, now)
	ev, _ := g.EdgeByKey(key)
	require.InDelta(t, 0.25, ev.Risk, 1e-9)
}

func TestUnInfluencedEdgeDecaysOnly(t *testing.T) {
	g, key := twoNodeGraph(t, nil)
	e := NewEngine()
	_, err := g.UpdateRisk(key, 0.5)
	require.NoError(t, err)

	now := time.Unix(3000, 0)
	e.Apply(g, nil, now)

	ev, _ := g.EdgeByKey(key)
	require.Less(t, ev.Risk, 0.5)
}
