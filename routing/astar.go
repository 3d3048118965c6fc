package routing

import (
	"container/heap"

	"github.com/example/floodroute/backend/graph"
)

// searchNode is one entry of the open set, keyed by f = g + h with ties
// broken by smaller NodeID for deterministic output, grounded on the
// teacher's nodeCost/priorityQueue pair.
type searchNode struct {
	id    graph.NodeID
	f     float64
	g     float64
	index int
}

type openQueue []*searchNode

func (q openQueue) Len() int { return len(q) }
func (q openQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].id < q[j].id
}
func (q openQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *openQueue) Push(x any) {
	n := len(*q)
	item := x.(*searchNode)
	item.index = n
	*q = append(*q, item)
}
func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	item.index = -1
	*q = old[:n-1]
	return item
}

// edgeFilter decides whether an edge may be traversed at all; returning
// false implements the policy's hard rejection rule.
type edgeFilter func(ev graph.EdgeView) bool

// costFn computes the traversal cost of an edge under a policy.
type costFn func(ev graph.EdgeView, timeS float64) float64

// searchResult is the raw A* outcome before policy-specific annotation.
type searchResult struct {
	found      bool
	nodes      []graph.NodeID
	edges      []graph.EdgeKey
	expansions int
	bound      bool // true if router_max_expansions was hit before termination
}

// runAStar searches view from start to goal, admitting only edges allowed
// by filter, costed by cost, using the great-circle/max-speed heuristic.
// maxExpansions bounds the number of node pops; exceeding it aborts the
// search and sets bound=true.
func runAStar(view *graph.View, start, goal graph.NodeID, speeds SpeedTable, filter edgeFilter, cost costFn, maxExpansions int) searchResult {
	goalNode, ok := view.Node(goal)
	if !ok {
		return searchResult{}
	}
	maxSpeed := speeds.maxSpeed()

	heuristic := func(u graph.NodeID) float64 {
		n, ok := view.Node(u)
		if !ok {
			return 0
		}
		d := graph.GreatCircleDistanceM(n.Lat, n.Lon, goalNode.Lat, goalNode.Lon)
		return d / maxSpeed
	}

	cameFrom := make(map[graph.NodeID]graph.NodeID)
	cameEdge := make(map[graph.NodeID]graph.EdgeKey)
	bestG := make(map[graph.NodeID]float64)
	bestG[start] = 0

	open := &openQueue{}
	heap.Init(open)
	heap.Push(open, &searchNode{id: start, f: heuristic(start), g: 0})

	closed := make(map[graph.NodeID]bool)
	expansions := 0

	for open.Len() > 0 {
		if maxExpansions > 0 && expansions >= maxExpansions {
			return searchResult{found: false, expansions: expansions, bound: true}
		}
		current := heap.Pop(open).(*searchNode)
		if closed[current.id] {
			continue
		}
		if g, ok := bestG[current.id]; ok && current.g > g {
			continue
		}
		closed[current.id] = true
		expansions++

		if current.id == goal {
			return searchResult{
				found:      true,
				nodes:      reconstructNodes(cameFrom, start, goal),
				edges:      reconstructEdges(cameEdge, start, goal),
				expansions: expansions,
			}
		}

		for _, key := range view.Neighbors(current.id) {
			ev, ok := view.Edge(key)
			if !ok || closed[key.V] {
				continue
			}
			if filter != nil && !filter(ev) {
				continue
			}
			timeS := ev.LengthM / speeds.speedFor(ev.RoadClass)
			tentativeG := current.g + cost(ev, timeS)

			if existing, ok := bestG[key.V]; ok && tentativeG >= existing {
				continue
			}
			bestG[key.V] = tentativeG
			cameFrom[key.V] = current.id
			cameEdge[key.V] = key
			heap.Push(open, &searchNode{id: key.V, f: tentativeG + heuristic(key.V), g: tentativeG})
		}
	}

	return searchResult{found: false, expansions: expansions}
}

func reconstructNodes(cameFrom map[graph.NodeID]graph.NodeID, start, goal graph.NodeID) []graph.NodeID {
	if start == goal {
		return []graph.NodeID{start}
	}
	var out []graph.NodeID
	cur := goal
	for {
		out = append(out, cur)
		if cur == start {
			break
		}
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		cur = prev
	}
	// reverse
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func reconstructEdges(cameEdge map[graph.NodeID]graph.EdgeKey, start, goal graph.NodeID) []graph.EdgeKey {
	if start == goal {
		return nil
	}
	var out []graph.EdgeKey
	cur := goal
	for cur != start {
		key, ok := cameEdge[cur]
		if !ok {
			break
		}
		out = append(out, key)
		cur = key.U
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
