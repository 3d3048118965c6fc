package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/floodroute/backend/scenario"
)

type simulationStartRequest struct {
	Speed float64 `json:"speed"`
}

type simulationStatusResponse struct {
	State scenario.State `json:"state"`
	Clock float64        `json:"clock"`
	Tick  int            `json:"tick"`
	Total int            `json:"total"`
	Done  int            `json:"done"`
}

func (s *Server) simulationStartHandler(w http.ResponseWriter, r *http.Request) {
	if s.scenario == nil {
		writeError(w, errInvalidInput, "no scenario driver configured in this process", nil)
		return
	}
	var req simulationStartRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // a missing/empty body just keeps speed at its 1.0 default
	}
	s.scenario.Start(req.Speed)
	writeJSON(w, http.StatusOK, s.simulationStatus())
}

func (s *Server) simulationStopHandler(w http.ResponseWriter, r *http.Request) {
	if s.scenario == nil {
		writeError(w, errInvalidInput, "no scenario driver configured in this process", nil)
		return
	}
	s.scenario.Stop()
	writeJSON(w, http.StatusOK, s.simulationStatus())
}

func (s *Server) simulationResetHandler(w http.ResponseWriter, r *http.Request) {
	if s.scenario == nil {
		writeError(w, errInvalidInput, "no scenario driver configured in this process", nil)
		return
	}
	s.scenario.Reset()
	writeJSON(w, http.StatusOK, s.simulationStatus())
}

func (s *Server) simulationStatusHandler(w http.ResponseWriter, r *http.Request) {
	if s.scenario == nil {
		writeError(w, errInvalidInput, "no scenario driver configured in this process", nil)
		return
	}
	writeJSON(w, http.StatusOK, s.simulationStatus())
}

func (s *Server) simulationStatus() simulationStatusResponse {
	st := s.scenario.Status()
	return simulationStatusResponse{State: st.State, Clock: st.Clock, Tick: st.Tick, Total: st.Total, Done: st.Done}
}
