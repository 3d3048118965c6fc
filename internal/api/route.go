package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/floodroute/backend/routing"
)

// routeRequest matches the spec's logical route request: coordinates are
// [lat, lon] pairs, and policy defaults to balanced when omitted.
type routeRequest struct {
	Start       [2]float64 `json:"start"`
	End         [2]float64 `json:"end"`
	Preferences struct {
		Policy      string `json:"policy"`
		AvoidFloods bool   `json:"avoid_floods"`
	} `json:"preferences"`
}

type routeResponse struct {
	Status       routing.Status    `json:"status"`
	Nodes        []int64           `json:"nodes"`
	TotalTimeS   float64           `json:"total_time_s"`
	TotalLengthM float64           `json:"total_length_m"`
	MaxEdgeRisk  float64           `json:"max_edge_risk"`
	MeanEdgeRisk float64           `json:"mean_edge_risk"`
	RiskLevel    routing.RiskLevel `json:"risk_level"`
	Warnings     []string          `json:"warnings,omitempty"`
	Expansions   int               `json:"expansions"`
}

func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, errInvalidInput, "route requires POST", nil)
		return
	}

	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errInvalidInput, "malformed route request body", err.Error())
		return
	}

	policy := routing.Policy(req.Preferences.Policy)
	switch policy {
	case routing.PolicySafest, routing.PolicyBalanced, routing.PolicyFastest:
	case "":
		policy = routing.PolicyBalanced
	default:
		writeError(w, errInvalidInput, "unknown policy", req.Preferences.Policy)
		return
	}

	startLat, startLon := req.Start[0], req.Start[1]
	endLat, endLon := req.End[0], req.End[1]
	if !validLatLon(startLat, startLon) || !validLatLon(endLat, endLon) {
		writeError(w, errInvalidInput, "coordinates out of range", nil)
		return
	}

	res, err := s.router.Route(s.graph, startLon, startLat, endLon, endLat, policy)
	if err != nil {
		// No node within snapping range of a coordinate: not_found, not a
		// route-semantic outcome.
		writeError(w, errNotFound, err.Error(), nil)
		return
	}

	// The Router always returns a RouteResult, even for impassable/
	// no_safe_route outcomes; those are never surfaced as HTTP errors.
	nodes := make([]int64, len(res.Nodes))
	for i, n := range res.Nodes {
		nodes[i] = int64(n)
	}
	writeJSON(w, http.StatusOK, routeResponse{
		Status:       res.Status,
		Nodes:        nodes,
		TotalTimeS:   res.TotalTimeS,
		TotalLengthM: res.TotalLengthM,
		MaxEdgeRisk:  res.MaxEdgeRisk,
		MeanEdgeRisk: res.MeanEdgeRisk,
		RiskLevel:    res.RiskLevel,
		Warnings:     res.Warnings,
		Expansions:   res.Expansions,
	})
}

func validLatLon(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
