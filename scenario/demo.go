package scenario

import (
	"github.com/example/floodroute/backend/fusion"
	"github.com/example/floodroute/backend/graph"
	"github.com/example/floodroute/backend/observation"
)

// NewDemoScenario builds a small synthetic topology and a short, scripted
// event list, for manual smoke testing of the API server without an
// external topology artifact or upstream feeds. Grounded on the teacher's
// NewDemoSimulator (a panic-on-error constructor: a broken demo fixture is
// a programming error, not a runtime condition).
func NewDemoScenario() (*graph.Graph, *Driver) {
	nodes := []graph.Node{
		{ID: 1, Lon: 121.00, Lat: 14.60},
		{ID: 2, Lon: 121.01, Lat: 14.60},
		{ID: 3, Lon: 121.02, Lat: 14.61},
	}
	edges := []graph.TopologyEdge{
		{
			Key: graph.EdgeKey{U: 1, V: 2, K: 0}, LengthM: 900, RoadClass: graph.RoadPrimary,
			Influences: []graph.LocationWeight{{Location: "Sto Nino", DistanceM: 150}},
		},
		{
			Key: graph.EdgeKey{U: 2, V: 1, K: 0}, LengthM: 900, RoadClass: graph.RoadPrimary,
			Influences: []graph.LocationWeight{{Location: "Sto Nino", DistanceM: 150}},
		},
		{
			Key: graph.EdgeKey{U: 2, V: 3, K: 0}, LengthM: 1100, RoadClass: graph.RoadSecondary,
			Influences: []graph.LocationWeight{{Location: "Sto Nino", DistanceM: 600}},
		},
		{
			Key: graph.EdgeKey{U: 3, V: 2, K: 0}, LengthM: 1100, RoadClass: graph.RoadSecondary,
			Influences: []graph.LocationWeight{{Location: "Sto Nino", DistanceM: 600}},
		},
	}

	g, err := graph.NewGraph(nodes, edges)
	if err != nil {
		panic("scenario: demo topology is invalid: " + err.Error())
	}

	events := []Event{
		{TimeOffsetS: 0, InsertIndex: 0, Observation: observation.Observation{
			Kind: observation.KindGauge,
			Gauge: &observation.GaugeReading{
				StationID: "demo-1", Location: "Sto Nino", WaterLevelM: 12.0,
				AlertM: 14.0, AlarmM: 16.0, CriticalM: 18.0,
				Coord: observation.Coord{Lon: 121.005, Lat: 14.60},
			},
		}},
		{TimeOffsetS: 30, InsertIndex: 1, Observation: observation.Observation{
			Kind: observation.KindGauge,
			Gauge: &observation.GaugeReading{
				StationID: "demo-1", Location: "Sto Nino", WaterLevelM: 17.5,
				AlertM: 14.0, AlarmM: 16.0, CriticalM: 18.0,
				Coord: observation.Coord{Lon: 121.005, Lat: 14.60},
			},
		}},
	}

	driver := New(g, fusion.NewEngine(), nil, events)
	return g, driver
}
