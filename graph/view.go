package graph

import "sort"

// View is an immutable read handle over the road graph sufficient for one
// Router request: edge risk values are copied out of their atomic cells at
// snapshot time, so a risk update mid-computation never affects a request
// already holding a View.
type View struct {
	nodes     map[NodeID]Node
	adjacency map[NodeID][]EdgeKey
	edges     map[EdgeKey]EdgeView
}

// Snapshot takes a cheap, read-only handle whose edge iteration reflects
// risk values at snapshot time.
func (g *Graph) Snapshot() *View {
	edges := make(map[EdgeKey]EdgeView, len(g.edges))
	for key, me := range g.edges {
		edges[key] = EdgeView{
			Key:        me.attrs.Key,
			LengthM:    me.attrs.LengthM,
			RoadClass:  me.attrs.RoadClass,
			Geometry:   me.attrs.Geometry,
			Influences: me.attrs.Influences,
			Risk:       round3(me.risk.load()),
		}
	}
	// Nodes and adjacency are frozen after load, so the maps can be shared
	// directly rather than copied.
	return &View{
		nodes:     g.nodes,
		adjacency: g.adjacency,
		edges:     edges,
	}
}

// Node looks up a node in the view.
func (v *View) Node(id NodeID) (Node, bool) {
	n, ok := v.nodes[id]
	return n, ok
}

// Neighbors returns the outgoing edge keys of u in stable order.
func (v *View) Neighbors(u NodeID) []EdgeKey {
	return v.adjacency[u]
}

// Edge returns the edge view for a key.
func (v *View) Edge(key EdgeKey) (EdgeView, bool) {
	e, ok := v.edges[key]
	return e, ok
}

// Edges returns a finite, stably-ordered sequence of all edges, for tests
// and for computing policy-wide statistics.
func (v *View) Edges() []EdgeView {
	out := make([]EdgeView, 0, len(v.edges))
	for _, e := range v.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key, out[j].Key
		if a.U != b.U {
			return a.U < b.U
		}
		if a.V != b.V {
			return a.V < b.V
		}
		return a.K < b.K
	})
	return out
}
