package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/floodroute/backend/routing"
)

// alternateRoutesRequest adds k to the regular route request shape; this
// is the supplemental alternate_routes(start, end, policy, k) operation
// carried forward from original_source/'s KAlternativeRoutes.
type alternateRoutesRequest struct {
	routeRequest
	K int `json:"k"`
}

func (s *Server) alternateRoutesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, errInvalidInput, "route/alternates requires POST", nil)
		return
	}

	var req alternateRoutesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errInvalidInput, "malformed alternate-routes request body", err.Error())
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

	startID, ok := s.graph.NearestNode(startLon, startLat)
	if !ok {
		writeError(w, errNotFound, "no node found near start coordinate", nil)
		return
	}
	endID, ok := s.graph.NearestNode(endLon, endLat)
	if !ok {
		writeError(w, errNotFound, "no node found near end coordinate", nil)
		return
	}

	view := s.graph.Snapshot()
	results := s.router.AlternateRoutes(view, startID, endID, policy, req.K)

	out := make([]routeResponse, 0, len(results))
	for _, res := range results {
		nodes := make([]int64, len(res.Nodes))
		for i, n := range res.Nodes {
			nodes[i] = int64(n)
		}
		out = append(out, routeResponse{
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

	writeJSON(w, http.StatusOK, struct {
		Routes []routeResponse `json:"routes"`
	}{Routes: out})
}
