package api

import "net/http"

type sourceStatusEntry struct {
	Attempts         int    `json:"attempts"`
	ObservationsSent int    `json:"observations_sent"`
	ParseErrors      int    `json:"parse_errors"`
	LastError        string `json:"last_error,omitempty"`
	DurationMS       int64  `json:"duration_ms"`
}

// source_status reports the most recent per-source collection stats,
// surfaced alongside graph_status per the fetch-statistics supplement.
func (s *Server) sourceStatusHandler(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		writeError(w, errInvalidInput, "no scheduler configured in this process", nil)
		return
	}
	stats := s.scheduler.SourceStatus()
	out := make(map[string]sourceStatusEntry, len(stats))
	for name, st := range stats {
		out[name] = sourceStatusEntry{
			Attempts:         st.Attempts,
			ObservationsSent: st.ObservationsSent,
			ParseErrors:      st.ParseErrors,
			LastError:        st.LastError,
			DurationMS:       st.Duration.Milliseconds(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}
