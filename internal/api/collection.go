package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/example/floodroute/backend/scheduler"
)

type triggerResponse struct {
	Accepted  bool   `json:"accepted"`
	RunningID string `json:"running_id,omitempty"`
}

// trigger_collection forces one immediate Scheduler cycle outside the
// periodic ticker. A cycle already in flight yields accepted=false rather
// than an HTTP error: busy is a normal, expected outcome here.
func (s *Server) triggerCollectionHandler(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		writeError(w, errInvalidInput, "no scheduler configured in this process", nil)
		return
	}

	runID := uuid.NewString()
	ctx, cancel := contextWithTimeout(r, 30*time.Second)
	defer cancel()

	err := s.scheduler.Trigger(ctx, s.schedulerPeriod)
	if err == scheduler.ErrBusy {
		writeJSON(w, http.StatusOK, triggerResponse{Accepted: false})
		return
	}
	if err != nil {
		writeError(w, errUpstream, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusAccepted, triggerResponse{Accepted: true, RunningID: runID})
}
