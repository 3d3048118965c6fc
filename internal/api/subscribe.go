package api

import "net/http"

// subscribe upgrades to a websocket and blocks for the connection's
// lifetime, delegating entirely to the Broadcast Hub. Per §7, subscription
// events are not HTTP responses; a failed upgrade is the only case that
// surfaces here as an error.
func (s *Server) subscribeHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.hub.Subscribe(r.Context(), w, r); err != nil {
		s.log.Warn("subscribe failed", "error", err.Error())
	}
}
