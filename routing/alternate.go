package routing

import "github.com/example/floodroute/backend/graph"

// AlternateRoutes computes up to k loopless candidate routes between start
// and goal under policy, using Yen's algorithm: the primary route, then
// successive spur routes found by excluding prefixes already taken by
// earlier candidates. Grounded directly on the teacher's
// routing/pathfinding.go KAlternativeRoutes, adapted from the teacher's
// string-keyed Graph.Clone()/RemoveEdge()/RemoveNode() mutation style to
// a filter-based exclusion set applied on top of the immutable GraphView
// (the view itself is never mutated; exclusions are passed down through
// the edge filter instead).
func (r *Router) AlternateRoutes(view *graph.View, start, goal graph.NodeID, policy Policy, k int) []Result {
	if k <= 0 {
		k = 1
	}
	spec, ok := policies[policy]
	if !ok {
		spec = policies[PolicyBalanced]
	}
	cost := func(ev graph.EdgeView, timeS float64) float64 {
		return timeS * (1 + spec.riskMultiplier*ev.Risk)
	}

	baseFilter := func(ev graph.EdgeView) bool { return ev.Risk < spec.rejectAbove }

	primary := runAStar(view, start, goal, r.speeds, baseFilter, cost, r.maxExpansions)
	if !primary.found {
		return nil
	}

	results := []Result{r.annotate(view, primary, spec.rejectAbove, StatusOK)}
	candidatePaths := [][]graph.NodeID{primary.nodes}

	type potentialCandidate struct {
		res  searchResult
		cost float64
	}

	for len(results) < k {
		previous := candidatePaths[len(candidatePaths)-1]
		var potentials []potentialCandidate

		for i := 0; i < len(previous)-1; i++ {
			spurNode := previous[i]
			rootPath := previous[:i+1]

			excludedEdges := make(map[graph.EdgeKey]bool)
			for _, p := range candidatePaths {
				if len(p) > i && equalPrefix(rootPath, p[:i+1]) {
					excludedEdges[graph.EdgeKey{U: p[i], V: p[i+1]}] = true
					// Parallel-edge keys (K != 0) are matched by (U,V)
					// alone here; the filter below checks both fields.
				}
			}
			excludedNodes := make(map[graph.NodeID]bool)
			for _, n := range rootPath[:len(rootPath)-1] {
				excludedNodes[n] = true
			}

			spurFilter := func(ev graph.EdgeView) bool {
				if !baseFilter(ev) {
					return false
				}
				if excludedNodes[ev.Key.V] {
					return false
				}
				for ex := range excludedEdges {
					if ex.U == ev.Key.U && ex.V == ev.Key.V {
						return false
					}
				}
				return true
			}

			spurResult := runAStar(view, spurNode, goal, r.speeds, spurFilter, cost, r.maxExpansions)
			if !spurResult.found {
				continue
			}

			fullNodes := append(append([]graph.NodeID{}, rootPath[:len(rootPath)-1]...), spurResult.nodes...)
			fullEdges := rebuildEdgesFromNodes(view, fullNodes)
			if fullEdges == nil {
				continue
			}

			totalCost := pathCost(view, fullEdges, r.speeds, cost)
			potentials = append(potentials, potentialCandidate{
				res:  searchResult{found: true, nodes: fullNodes, edges: fullEdges, expansions: spurResult.expansions},
				cost: totalCost,
			})
		}

		if len(potentials) == 0 {
			break
		}

		best := potentials[0]
		for _, p := range potentials[1:] {
			if p.cost < best.cost {
				best = p
			}
		}

		results = append(results, r.annotate(view, best.res, spec.rejectAbove, StatusOK))
		candidatePaths = append(candidatePaths, best.res.nodes)
	}

	return results
}

func equalPrefix(a, b []graph.NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// rebuildEdgesFromNodes re-derives the edge-key sequence for a full node
// path stitched from a root prefix and a spur suffix, since the spur
// search only returns edges for its own portion.
func rebuildEdgesFromNodes(view *graph.View, nodes []graph.NodeID) []graph.EdgeKey {
	if len(nodes) < 2 {
		return nil
	}
	out := make([]graph.EdgeKey, 0, len(nodes)-1)
	for i := 0; i < len(nodes)-1; i++ {
		u, v := nodes[i], nodes[i+1]
		found := false
		for _, key := range view.Neighbors(u) {
			if key.V == v {
				out = append(out, key)
				found = true
				break
			}
		}
		if !found {
			return nil
		}
	}
	return out
}

func pathCost(view *graph.View, edges []graph.EdgeKey, speeds SpeedTable, cost costFn) float64 {
	total := 0.0
	for _, key := range edges {
		ev, ok := view.Edge(key)
		if !ok {
			continue
		}
		timeS := ev.LengthM / speeds.speedFor(ev.RoadClass)
		total += cost(ev, timeS)
	}
	return total
}
