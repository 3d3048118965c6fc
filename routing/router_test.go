package routing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/floodroute/backend/graph"
)

// diamondGraph builds a 3x1 line: 1 -> 2 -> 3, plus a longer bypass 1 -> 4 -> 3
// so there is always an alternative route around a blocked segment.
func diamondGraph(t *testing.T) *graph.Graph {
	t.Helper()
	nodes := []graph.Node{
		{ID: 1, Lon: 0.000, Lat: 0},
		{ID: 2, Lon: 0.001, Lat: 0},
		{ID: 3, Lon: 0.002, Lat: 0},
		{ID: 4, Lon: 0.001, Lat: 0.001},
	}
	edges := []graph.TopologyEdge{
		{Key: graph.EdgeKey{U: 1, V: 2, K: 0}, LengthM: 100, RoadClass: graph.RoadResidential},
		{Key: graph.EdgeKey{U: 2, V: 3, K: 0}, LengthM: 100, RoadClass: graph.RoadResidential},
		{Key: graph.EdgeKey{U: 1, V: 4, K: 0}, LengthM: 300, RoadClass: graph.RoadResidential},
		{Key: graph.EdgeKey{U: 4, V: 3, K: 0}, LengthM: 300, RoadClass: graph.RoadResidential},
	}
	g, err := graph.NewGraph(nodes, edges)
	require.NoError(t, err)
	return g
}

func TestRouteFindsShortestPathWhenNoRisk(t *testing.T) {
	g := diamondGraph(t)
	r := New(DefaultSpeedTable, 0)

	result, err := r.Route(g, 0.000, 0, 0.002, 0, PolicyBalanced)
	require.NoError(t, err)
	require.Equal(t, StatusOK, result.Status)
	require.Equal(t, []graph.NodeID{1, 2, 3}, result.Nodes)
}

func TestRouteAvoidsHighRiskEdgeUnderSafestPolicy(t *testing.T) {
	g := diamondGraph(t)
	_, err := g.UpdateRisk(graph.EdgeKey{U: 1, V: 2, K: 0}, 0.7)
	require.NoError(t, err)
	_, err = g.UpdateRisk(graph.EdgeKey{U: 2, V: 3, K: 0}, 0.7)
	require.NoError(t, err)

	r := New(DefaultSpeedTable, 0)
	result, err := r.Route(g, 0.000, 0, 0.002, 0, PolicySafest)
	require.NoError(t, err)
	require.Equal(t, StatusOK, result.Status)
	require.Equal(t, []graph.NodeID{1, 4, 3}, result.Nodes)
}

func TestRouteReturnsNoSafeRouteWhenOnlyRiskyPathExists(t *testing.T) {
	g, err := graph.NewGraph(
		[]graph.Node{{ID: 1, Lon: 0, Lat: 0}, {ID: 2, Lon: 0.001, Lat: 0}},
		[]graph.TopologyEdge{{Key: graph.EdgeKey{U: 1, V: 2, K: 0}, LengthM: 100, RoadClass: graph.RoadResidential}},
	)
	require.NoError(t, err)
	_, err = g.UpdateRisk(graph.EdgeKey{U: 1, V: 2, K: 0}, 0.85)
	require.NoError(t, err)

	r := New(DefaultSpeedTable, 0)
	result, err := r.Route(g, 0, 0, 0.001, 0, PolicySafest)
	require.NoError(t, err)
	require.Equal(t, StatusNoSafeRoute, result.Status)
	require.Equal(t, []graph.NodeID{1, 2}, result.Nodes)
}

func TestRouteReturnsImpassableWhenAllEdgesAboveFastestThreshold(t *testing.T) {
	g, err := graph.NewGraph(
		[]graph.Node{{ID: 1, Lon: 0, Lat: 0}, {ID: 2, Lon: 0.001, Lat: 0}},
		[]graph.TopologyEdge{{Key: graph.EdgeKey{U: 1, V: 2, K: 0}, LengthM: 100, RoadClass: graph.RoadResidential}},
	)
	require.NoError(t, err)
	_, err = g.UpdateRisk(graph.EdgeKey{U: 1, V: 2, K: 0}, 0.99)
	require.NoError(t, err)

	r := New(DefaultSpeedTable, 0)
	result, err := r.Route(g, 0, 0, 0.001, 0, PolicySafest)
	require.NoError(t, err)
	require.Equal(t, StatusImpassable, result.Status)
	require.NotEmpty(t, result.Warnings)
}

func TestRouteHonorsMaxExpansionsBound(t *testing.T) {
	g := diamondGraph(t)
	r := New(DefaultSpeedTable, 1)

	result, err := r.Route(g, 0.000, 0, 0.002, 0, PolicyBalanced)
	require.NoError(t, err)
	require.Equal(t, StatusImpassable, result.Status)
	require.Contains(t, result.Warnings, "search_bound_exceeded")
}

func TestAlternateRoutesReturnsPrimaryAndBypass(t *testing.T) {
	g := diamondGraph(t)
	r := New(DefaultSpeedTable, 0)
	view := g.Snapshot()

	results := r.AlternateRoutes(view, 1, 3, PolicyBalanced, 2)
	require.Len(t, results, 2)
	require.Equal(t, []graph.NodeID{1, 2, 3}, results[0].Nodes)
	require.Equal(t, []graph.NodeID{1, 4, 3}, results[1].Nodes)
}
