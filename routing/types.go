// Package routing implements the Router: an A* search over a GraphView
// snapshot with three selectable cost policies, the impassability retry
// contract, and a Yen's-algorithm-style alternate-routes operation.
// Grounded on the teacher's routing/pathfinding.go (container/heap
// priority queue A*/Dijkstra, Yen's KAlternativeRoutes), adapted from a
// string-keyed network-latency graph to the NodeID-keyed road graph with
// risk-aware costs.
package routing

import "github.com/example/floodroute/backend/graph"

// Policy selects the cost function and rejection threshold for a request.
type Policy string

const (
	PolicySafest   Policy = "safest"
	PolicyBalanced Policy = "balanced"
	PolicyFastest  Policy = "fastest"
)

type policySpec struct {
	riskMultiplier float64
	rejectAbove    float64
}

var policies = map[Policy]policySpec{
	PolicySafest:   {riskMultiplier: 4.0, rejectAbove: 0.6},
	PolicyBalanced: {riskMultiplier: 1.5, rejectAbove: 0.8},
	PolicyFastest:  {riskMultiplier: 0.0, rejectAbove: 0.95},
}

// SpeedTable maps road class to free-flow speed in meters/second. Loaded
// from configuration; DefaultSpeedTable is used when none is supplied.
type SpeedTable map[graph.RoadClass]float64

// DefaultSpeedTable mirrors the config's speed_table defaults, converted
// from km/h to m/s.
var DefaultSpeedTable = SpeedTable{
	graph.RoadMotorway:    60.0 / 3.6,
	graph.RoadPrimary:     40.0 / 3.6,
	graph.RoadSecondary:   30.0 / 3.6,
	graph.RoadResidential: 20.0 / 3.6,
	graph.RoadService:     10.0 / 3.6,
}

func (st SpeedTable) speedFor(rc graph.RoadClass) float64 {
	if v, ok := st[rc]; ok && v > 0 {
		return v
	}
	return DefaultSpeedTable[graph.RoadResidential]
}

func (st SpeedTable) maxSpeed() float64 {
	max := 0.0
	for _, v := range st {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return DefaultSpeedTable[graph.RoadMotorway]
	}
	return max
}

// Status is the outcome of a route computation.
type Status string

const (
	StatusOK          Status = "ok"
	StatusNoSafeRoute Status = "no_safe_route"
	StatusImpassable  Status = "impassable"
)

// RiskLevel buckets a route's maximum edge risk for display.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Result is the Router's response for one route computation.
type Result struct {
	Status       Status
	Nodes        []graph.NodeID
	Edges        []graph.EdgeKey
	TotalTimeS   float64
	TotalLengthM float64
	MaxEdgeRisk  float64
	MeanEdgeRisk float64
	RiskLevel    RiskLevel
	Warnings     []string
	Expansions   int
}

func riskLevelFor(maxRisk float64) RiskLevel {
	switch {
	case maxRisk < 0.3:
		return RiskLow
	case maxRisk < 0.7:
		return RiskMedium
	default:
		return RiskHigh
	}
}
