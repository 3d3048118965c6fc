package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lineTopology(n int) ([]Node, []TopologyEdge) {
	nodes := make([]Node, 0, n)
	edges := make([]TopologyEdge, 0, n-1)
	for i := 0; i < n; i++ {
		nodes = append(nodes, Node{ID: NodeID(i), Lon: float64(i) * 0.001, Lat: 0})
	}
	for i := 0; i < n-1; i++ {
		edges = append(edges, TopologyEdge{
			Key:       EdgeKey{U: NodeID(i), V: NodeID(i + 1), K: 0},
			LengthM:   100,
			RoadClass: RoadResidential,
		})
	}
	return nodes, edges
}

func TestUpdateRiskClampsToUnitInterval(t *testing.T) {
	nodes, edges := lineTopology(3)
	g, err := NewGraph(nodes, edges)
	require.NoError(t, err)

	key := EdgeKey{U: 0, V: 1, K: 0}
	tok, err := g.UpdateRisk(key, 1.5)
	require.NoError(t, err)
	require.Equal(t, 1.0, tok.Risk)

	tok, err = g.UpdateRisk(key, -0.2)
	require.NoError(t, err)
	require.Equal(t, 0.0, tok.Risk)
}

func TestSnapshotIsImmutableAgainstLaterWrites(t *testing.T) {
	nodes, edges := lineTopology(3)
	g, err := NewGraph(nodes, edges)
	require.NoError(t, err)

	key := EdgeKey{U: 0, V: 1, K: 0}
	_, err = g.UpdateRisk(key, 0.4)
	require.NoError(t, err)

	view := g.Snapshot()
	_, err = g.UpdateRisk(key, 0.9)
	require.NoError(t, err)

	ev, ok := view.Edge(key)
	require.True(t, ok)
	require.Equal(t, 0.4, ev.Risk)

	fresh := g.Snapshot()
	ev2, ok := fresh.Edge(key)
	require.True(t, ok)
	require.Equal(t, 0.9, ev2.Risk)
}

func TestEdgesAboveTracksMaintainedCounters(t *testing.T) {
	nodes, edges := lineTopology(5)
	g, err := NewGraph(nodes, edges)
	require.NoError(t, err)

	require.Equal(t, 0, g.EdgesAbove(0.6))

	_, err = g.UpdateRisk(EdgeKey{U: 0, V: 1, K: 0}, 0.7)
	require.NoError(t, err)
	_, err = g.UpdateRisk(EdgeKey{U: 1, V: 2, K: 0}, 0.65)
	require.NoError(t, err)

	require.Equal(t, 2, g.EdgesAbove(0.6))

	_, err = g.UpdateRisk(EdgeKey{U: 0, V: 1, K: 0}, 0.1)
	require.NoError(t, err)
	require.Equal(t, 1, g.EdgesAbove(0.6))
}

func TestNearestNodeBreaksTiesBySmallerID(t *testing.T) {
	nodes := []Node{
		{ID: 5, Lon: 0, Lat: 0},
		{ID: 2, Lon: 0, Lat: 0},
		{ID: 9, Lon: 1, Lat: 1},
	}
	g, err := NewGraph(nodes, nil)
	require.NoError(t, err)

	id, ok := g.NearestNode(0, 0)
	require.True(t, ok)
	require.Equal(t, NodeID(2), id)
}

func TestResetAllRiskZeroesEveryEdge(t *testing.T) {
	nodes, edges := lineTopology(4)
	g, err := NewGraph(nodes, edges)
	require.NoError(t, err)

	for _, e := range edges {
		_, err := g.UpdateRisk(e.Key, 0.8)
		require.NoError(t, err)
	}

	g.ResetAllRisk()

	view := g.Snapshot()
	for _, ev := range view.Edges() {
		require.Equal(t, 0.0, ev.Risk)
	}
}
