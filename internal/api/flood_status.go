package api

import (
	"net/http"
	"time"

	"github.com/example/floodroute/backend/observation"
)

// floodStatusEntry mirrors one location's half of a flood_update
// subscription event, for pull-based polling by a collaborator that
// connected after the last broadcast.
type floodStatusEntry struct {
	Risk         float64  `json:"risk"`
	Contributors []string `json:"contributors"`
	TS           string   `json:"ts"`
}

type floodStatusResponse struct {
	Locations map[string]floodStatusEntry `json:"locations"`
}

// floodStatusHandler reports the Fusion Engine's current per-location risk
// snapshot, the pull-based counterpart to the flood_update broadcast event.
func (s *Server) floodStatusHandler(w http.ResponseWriter, r *http.Request) {
	if s.fusion == nil {
		writeError(w, errInvalidInput, "no fusion engine configured in this process", nil)
		return
	}

	snapshot := s.fusion.Snapshot()
	out := make(map[string]floodStatusEntry, len(snapshot))
	for key, lr := range snapshot {
		out[key] = floodStatusEntry{
			Risk:         lr.Risk,
			Contributors: contributorNames(lr.Contributors),
			TS:           lr.TS.UTC().Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, floodStatusResponse{Locations: out})
}

func contributorNames(kinds []observation.Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
