package graph

import (
	"errors"
	"sort"
	"sync"

	"github.com/example/floodroute/backend/metrics"
)

// TopologyEdge is the shape the external topology artifact supplies for one
// segment; Graph converts these into internally-managed edges with an
// atomic risk cell. The artifact also supplies the influence list used by
// the Fusion Engine to propagate location risk onto this edge.
type TopologyEdge struct {
	Key        EdgeKey
	LengthM    float64
	RoadClass  RoadClass
	Geometry   []LatLon
	Influences []LocationWeight
}

type managedEdge struct {
	attrs edgeAttrs
	risk  *riskCell
	// version increments on every accepted write so ChangeToken lets
	// callers observe write order.
	version uint64
	mu      sync.Mutex
}

// Graph is the mutable road multigraph: frozen topology plus per-edge
// atomic risk. Node/edge storage is exclusively owned here; the Router
// only ever touches it through a GraphView.
type Graph struct {
	nodes map[NodeID]Node
	// adjacency from U -> outgoing edge keys, stable-sorted for
	// reproducible snapshot iteration order.
	adjacency map[NodeID][]EdgeKey
	edges     map[EdgeKey]*managedEdge
	sortedKeys []EdgeKey

	spatial *spatialIndex

	// aboveThreshold maintains O(1) counters for graph_status(), avoiding
	// a full edge scan on every query-surface status call.
	statusMu        sync.Mutex
	aboveThreshold  map[string]int // keyed by the threshold formatted to three decimals
}

// NewGraph constructs a Graph from a frozen node set and edge list. This is
// the one-time load from the topology artifact; nodes and edge attributes
// are never mutated afterward, only risk cells are.
func NewGraph(nodes []Node, edges []TopologyEdge) (*Graph, error) {
	g := &Graph{
		nodes:          make(map[NodeID]Node, len(nodes)),
		adjacency:      make(map[NodeID][]EdgeKey),
		edges:          make(map[EdgeKey]*managedEdge, len(edges)),
		aboveThreshold: make(map[string]int),
	}

	for _, n := range nodes {
		if _, exists := g.nodes[n.ID]; exists {
			return nil, errors.New("duplicate node id in topology")
		}
		g.nodes[n.ID] = n
	}

	for _, e := range edges {
		if _, ok := g.nodes[e.Key.U]; !ok {
			return nil, errors.New("edge references unknown source node")
		}
		if _, ok := g.nodes[e.Key.V]; !ok {
			return nil, errors.New("edge references unknown destination node")
		}
		if e.LengthM <= 0 {
			return nil, errors.New("edge length must be positive")
		}
		if _, exists := g.edges[e.Key]; exists {
			return nil, errors.New("duplicate edge key in topology")
		}
		me := &managedEdge{
			attrs: edgeAttrs{
				Key:        e.Key,
				LengthM:    e.LengthM,
				RoadClass:  e.RoadClass,
				Geometry:   e.Geometry,
				Influences: e.Influences,
			},
			risk: newRiskCell(0),
		}
		g.edges[e.Key] = me
		g.adjacency[e.Key.U] = append(g.adjacency[e.Key.U], e.Key)
		g.sortedKeys = append(g.sortedKeys, e.Key)
	}

	for u := range g.adjacency {
		keys := g.adjacency[u]
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].V != keys[j].V {
				return keys[i].V < keys[j].V
			}
			return keys[i].K < keys[j].K
		})
	}
	sort.Slice(g.sortedKeys, func(i, j int) bool {
		a, b := g.sortedKeys[i], g.sortedKeys[j]
		if a.U != b.U {
			return a.U < b.U
		}
		if a.V != b.V {
			return a.V < b.V
		}
		return a.K < b.K
	})

	g.spatial = newSpatialIndex(g.nodes)

	return g, nil
}

// Neighbors returns the outgoing edges of u in stable order. O(deg(u)).
func (g *Graph) Neighbors(u NodeID) []EdgeKey {
	existing := g.adjacency[u]
	out := make([]EdgeKey, len(existing))
	copy(out, existing)
	return out
}

// Node looks up a node by id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NearestNode returns the spatially closest node to (lon, lat), ties broken
// by smaller NodeID.
func (g *Graph) NearestNode(lon, lat float64) (NodeID, bool) {
	return g.spatial.nearest(g.nodes, lon, lat)
}

// UpdateRisk sets an edge's risk, clamped to [0,1], and returns a
// ChangeToken recording the new version. Writers serialize per edge;
// cross-edge writes need not be atomic as a set.
func (g *Graph) UpdateRisk(key EdgeKey, newRisk float64) (ChangeToken, error) {
	me, ok := g.edges[key]
	if !ok {
		return ChangeToken{}, errors.New("unknown edge key")
	}
	me.mu.Lock()
	defer me.mu.Unlock()

	prevRisk := round3(me.risk.load())
	stored := round3(me.risk.store(newRisk))
	me.version++
	g.updateThresholdCounters(prevRisk, stored)

	return ChangeToken{Key: key, Version: me.version, Risk: stored}, nil
}

// DecayRisk applies the monotone-decreasing prior to an edge with no fresh
// influencing observation this cycle.
func (g *Graph) DecayRisk(key EdgeKey) (float64, error) {
	me, ok := g.edges[key]
	if !ok {
		return 0, errors.New("unknown edge key")
	}
	me.mu.Lock()
	defer me.mu.Unlock()
	prevRisk := round3(me.risk.load())
	newVal := round3(me.risk.decay())
	me.version++
	g.updateThresholdCounters(prevRisk, newVal)
	return newVal, nil
}

// thresholds tracked for graph_status's edges_above(thresh) counters.
var statusThresholds = []float64{0.3, 0.6, 0.7, 0.8, 0.95}

func thresholdBucket(t float64) string {
	return round3Str(t)
}

func round3Str(v float64) string {
	// Deterministic string key; avoids importing strconv/fmt repeatedly.
	r := round3(v)
	return fmtFloat(r)
}

func (g *Graph) updateThresholdCounters(prev, next float64) {
	g.statusMu.Lock()
	defer g.statusMu.Unlock()
	for _, t := range statusThresholds {
		key := thresholdBucket(t)
		wasAbove := prev >= t
		isAbove := next >= t
		if wasAbove && !isAbove {
			g.aboveThreshold[key]--
		} else if !wasAbove && isAbove {
			g.aboveThreshold[key]++
		}
		metrics.EdgesAboveThreshold.WithLabelValues(key).Set(float64(g.aboveThreshold[key]))
	}
}

// EdgesAbove returns the maintained, O(1) count of edges whose last-known
// risk is >= thresh (only exact thresholds from statusThresholds are
// tracked; others fall back to a snapshot scan).
func (g *Graph) EdgesAbove(thresh float64) int {
	key := thresholdBucket(thresh)
	g.statusMu.Lock()
	if count, ok := g.aboveThreshold[key]; ok {
		g.statusMu.Unlock()
		if count < 0 {
			return 0
		}
		return count
	}
	g.statusMu.Unlock()

	count := 0
	for _, me := range g.edges {
		if round3(me.risk.load()) >= thresh {
			count++
		}
	}
	return count
}

// TotalEdges returns the number of segments in the graph.
func (g *Graph) TotalEdges() int {
	return len(g.edges)
}

// EdgeByKey looks up an edge's current attributes and risk (not snapshot
// consistent with any other read; callers needing a stable view across
// many edges must use Snapshot).
func (g *Graph) EdgeByKey(key EdgeKey) (EdgeView, bool) {
	me, ok := g.edges[key]
	if !ok {
		return EdgeView{}, false
	}
	return EdgeView{
		Key:        me.attrs.Key,
		LengthM:    me.attrs.LengthM,
		RoadClass:  me.attrs.RoadClass,
		Geometry:   me.attrs.Geometry,
		Influences: me.attrs.Influences,
		Risk:       round3(me.risk.load()),
	}, true
}

// AllEdgeKeys returns every edge key in stable order, for callers (such as
// the Fusion Engine) that need to walk the whole edge set each cycle.
func (g *Graph) AllEdgeKeys() []EdgeKey {
	out := make([]EdgeKey, len(g.sortedKeys))
	copy(out, g.sortedKeys)
	return out
}

// ResetAllRisk sets every edge's risk to 0.0, used by the scenario driver's
// reset transition. Not used on the live path.
func (g *Graph) ResetAllRisk() {
	for _, me := range g.edges {
		me.mu.Lock()
		prev := round3(me.risk.load())
		me.risk.store(0)
		me.version++
		g.updateThresholdCounters(prev, 0)
		me.mu.Unlock()
	}
}
