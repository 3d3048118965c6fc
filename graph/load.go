package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// topologyPayload is the on-disk shape of the topology artifact: a flat
// node list and edge list, the same encode-then-decode style the
// observation parsers use for upstream payloads.
type topologyPayload struct {
	Nodes []struct {
		ID  int64   `json:"id"`
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"nodes"`
	Edges []struct {
		U         int64      `json:"u"`
		V         int64      `json:"v"`
		K         int        `json:"k"`
		LengthM   float64    `json:"length_m"`
		RoadClass string     `json:"road_class"`
		Geometry  []LatLon   `json:"geometry"`
		Influence []struct {
			Location  string  `json:"location"`
			DistanceM float64 `json:"distance_m"`
		} `json:"influences"`
	} `json:"edges"`
}

// LoadTopology reads the opaque topology artifact from graph_source_uri
// (a "file://" path, or a bare filesystem path) and builds a Graph. This is
// the one-time load the Road Graph performs at process startup; nodes and
// edge attributes are never re-read afterward.
func LoadTopology(uri string) (*Graph, error) {
	path := strings.TrimPrefix(uri, "file://")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("graph: read topology %s: %w", uri, err)
	}

	var payload topologyPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("graph: parse topology %s: %w", uri, err)
	}

	nodes := make([]Node, 0, len(payload.Nodes))
	for _, n := range payload.Nodes {
		nodes = append(nodes, Node{ID: NodeID(n.ID), Lon: n.Lon, Lat: n.Lat})
	}

	edges := make([]TopologyEdge, 0, len(payload.Edges))
	for _, e := range payload.Edges {
		influences := make([]LocationWeight, 0, len(e.Influence))
		for _, inf := range e.Influence {
			influences = append(influences, LocationWeight{Location: inf.Location, DistanceM: inf.DistanceM})
		}
		edges = append(edges, TopologyEdge{
			Key:        EdgeKey{U: NodeID(e.U), V: NodeID(e.V), K: e.K},
			LengthM:    e.LengthM,
			RoadClass:  RoadClass(e.RoadClass),
			Geometry:   e.Geometry,
			Influences: influences,
		})
	}

	return NewGraph(nodes, edges)
}
