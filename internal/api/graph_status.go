package api

import (
	"net/http"
	"strconv"
)

type graphStatusResponse struct {
	TotalEdges  int            `json:"total_edges"`
	EdgesAbove  map[string]int `json:"edges_above"`
}

// graph_status reports the total edge count plus the maintained
// edges_above(thresh) counters for the thresholds the graph tracks. A
// caller may request one additional ad-hoc threshold via ?thresh=.
func (s *Server) graphStatusHandler(w http.ResponseWriter, r *http.Request) {
	resp := graphStatusResponse{
		TotalEdges: s.graph.TotalEdges(),
		EdgesAbove: map[string]int{
			"0.3":  s.graph.EdgesAbove(0.3),
			"0.6":  s.graph.EdgesAbove(0.6),
			"0.7":  s.graph.EdgesAbove(0.7),
			"0.8":  s.graph.EdgesAbove(0.8),
			"0.95": s.graph.EdgesAbove(0.95),
		},
	}

	if raw := r.URL.Query().Get("thresh"); raw != "" {
		thresh, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, errInvalidInput, "thresh must be numeric", raw)
			return
		}
		resp.EdgesAbove[raw] = s.graph.EdgesAbove(thresh)
	}

	writeJSON(w, http.StatusOK, resp)
}
