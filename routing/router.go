package routing

import (
	"fmt"
	"time"

	"github.com/example/floodroute/backend/graph"
	"github.com/example/floodroute/backend/metrics"
)

// Router computes routes against a frozen GraphView taken at request
// arrival; risk updates that land mid-computation never affect an
// in-flight request, per the snapshot discipline in §4.7.
type Router struct {
	speeds        SpeedTable
	maxExpansions int
}

// New builds a Router. maxExpansions <= 0 disables the bound.
func New(speeds SpeedTable, maxExpansions int) *Router {
	if speeds == nil {
		speeds = DefaultSpeedTable
	}
	return &Router{speeds: speeds, maxExpansions: maxExpansions}
}

// Route computes a path between start and end coordinates (snapped via
// the graph's nearest_node) under the given policy, against a single
// GraphView snapshot.
func (r *Router) Route(g *graph.Graph, startLon, startLat, endLon, endLat float64, policy Policy) (Result, error) {
	view := g.Snapshot()

	startID, ok := g.NearestNode(startLon, startLat)
	if !ok {
		return Result{}, fmt.Errorf("routing: no node found near start coordinate")
	}
	endID, ok := g.NearestNode(endLon, endLat)
	if !ok {
		return Result{}, fmt.Errorf("routing: no node found near end coordinate")
	}

	return r.RouteBetween(view, startID, endID, policy), nil
}

// RouteBetween runs the full impassability contract between two already
// resolved nodes against a fixed GraphView.
func (r *Router) RouteBetween(view *graph.View, start, goal graph.NodeID, policy Policy) (result Result) {
	started := time.Now()
	defer func() {
		metrics.RouterLatencySeconds.Observe(time.Since(started).Seconds())
		metrics.RouterExpansions.Observe(float64(result.Expansions))
	}()

	spec, ok := policies[policy]
	if !ok {
		spec = policies[PolicyBalanced]
		policy = PolicyBalanced
	}

	cost := func(ev graph.EdgeView, timeS float64) float64 {
		return timeS * (1 + spec.riskMultiplier*ev.Risk)
	}

	primaryFilter := func(ev graph.EdgeView) bool { return ev.Risk < spec.rejectAbove }
	res := runAStar(view, start, goal, r.speeds, primaryFilter, cost, r.maxExpansions)

	if res.found {
		return r.annotate(view, res, spec.rejectAbove, StatusOK)
	}
	if res.bound {
		return Result{
			Status:     StatusImpassable,
			Warnings:   []string{"search_bound_exceeded"},
			Expansions: res.expansions,
		}
	}

	// Impassability contract: retry once with the threshold relaxed
	// toward fastest's.
	relaxedThreshold := policies[PolicyFastest].rejectAbove
	relaxedFilter := func(ev graph.EdgeView) bool { return ev.Risk < relaxedThreshold }
	relaxed := runAStar(view, start, goal, r.speeds, relaxedFilter, cost, r.maxExpansions)

	if relaxed.bound {
		return Result{
			Status:     StatusImpassable,
			Warnings:   []string{"search_bound_exceeded"},
			Expansions: relaxed.expansions,
		}
	}
	if relaxed.found {
		out := r.annotate(view, relaxed, spec.rejectAbove, StatusNoSafeRoute)
		out.Warnings = append(out.Warnings, "relaxed_threshold_applied")
		return out
	}

	// Still unreachable even ignoring all but the hardest impassable
	// edges: search once more with no risk filter at all to distinguish
	// topological disconnection from a risk-caused cut.
	noFilter := func(graph.EdgeView) bool { return true }
	unrestricted := runAStar(view, start, goal, r.speeds, noFilter, cost, r.maxExpansions)

	if !unrestricted.found {
		return Result{
			Status:     StatusImpassable,
			Warnings:   []string{"no_route_topology"},
			Expansions: unrestricted.expansions,
		}
	}

	// A path exists only through edges at or above the relaxed threshold:
	// those edges are the cut blocking every alternative.
	var cutWarnings []string
	for _, key := range unrestricted.edges {
		ev, ok := view.Edge(key)
		if ok && ev.Risk >= relaxedThreshold {
			cutWarnings = append(cutWarnings, fmt.Sprintf("critical_edge:%s", key.String()))
		}
	}
	if len(cutWarnings) == 0 {
		cutWarnings = []string{"no_safe_path_found"}
	}
	return Result{
		Status:     StatusImpassable,
		Warnings:   cutWarnings,
		Expansions: unrestricted.expansions,
	}
}

func (r *Router) annotate(view *graph.View, res searchResult, threshold float64, status Status) Result {
	var totalTime, totalLength, maxRisk, sumRisk float64
	var warnings []string

	for _, key := range res.edges {
		ev, ok := view.Edge(key)
		if !ok {
			continue
		}
		timeS := ev.LengthM / r.speeds.speedFor(ev.RoadClass)
		totalTime += timeS
		totalLength += ev.LengthM
		sumRisk += ev.Risk
		if ev.Risk > maxRisk {
			maxRisk = ev.Risk
		}
		if ev.Risk >= threshold {
			warnings = append(warnings, fmt.Sprintf("edge_exceeds_threshold:%s", key.String()))
		}
	}

	meanRisk := 0.0
	if len(res.edges) > 0 {
		meanRisk = sumRisk / float64(len(res.edges))
	}

	return Result{
		Status:       status,
		Nodes:        res.nodes,
		Edges:        res.edges,
		TotalTimeS:   totalTime,
		TotalLengthM: totalLength,
		MaxEdgeRisk:  maxRisk,
		MeanEdgeRisk: meanRisk,
		RiskLevel:    riskLevelFor(maxRisk),
		Warnings:     warnings,
		Expansions:   res.expansions,
	}
}
