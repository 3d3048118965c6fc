package fusion

import (
	"math"

	"github.com/example/floodroute/backend/graph"
)

// propagateToEdges recomputes every edge's risk as the influence-weighted
// average of the locations in its influence list, per §4.3:
//
//	r_edge = sum(w_i * r_loc_i) / sum(w_i),  w_i = exp(-d_i / tau)
//
// Edges with no influence list (no nearby monitored location) decay toward
// zero instead, matching the Graph's own staleness rule. Returns the number
// of edges whose risk actually changed.
func propagateToEdges(g *graph.Graph, locations map[string]float64) int {
	changed := 0
	for _, key := range g.AllEdgeKeys() {
		ev, ok := g.EdgeByKey(key)
		if !ok {
			continue
		}

		if len(ev.Influences) == 0 {
			newVal, err := g.DecayRisk(key)
			if err == nil && newVal != ev.Risk {
				changed++
			}
			continue
		}

		var weightedSum, weightTotal float64
		for _, inf := range ev.Influences {
			r, ok := locations[inf.Location]
			if !ok {
				continue
			}
			w := expDecayWeight(inf.DistanceM)
			weightedSum += w * r
			weightTotal += w
		}

		if weightTotal == 0 {
			newVal, err := g.DecayRisk(key)
			if err == nil && newVal != ev.Risk {
				changed++
			}
			continue
		}

		newRisk := round3(weightedSum / weightTotal)
		tok, err := g.UpdateRisk(key, newRisk)
		if err == nil && tok.Risk != ev.Risk {
			changed++
		}
	}
	return changed
}

func expDecayWeight(distanceM float64) float64 {
	return math.Exp(-distanceM / influenceTau)
}
