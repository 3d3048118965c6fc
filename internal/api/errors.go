package api

import (
	"encoding/json"
	"net/http"
)

// errKind mirrors the taxonomy from the error-handling design: a small set
// of kinds, not per-endpoint class names.
type errKind string

const (
	errInvalidInput errKind = "invalid_input"
	errNotFound     errKind = "not_found"
	errTimeout      errKind = "timeout"
	errBusy         errKind = "busy"
	errUpstream     errKind = "upstream_failure"
)

// apiError is the typed {kind, message, details} shape every non-fatal
// Query Surface failure maps to.
type apiError struct {
	Kind    errKind     `json:"kind"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

var statusForKind = map[errKind]int{
	errInvalidInput: http.StatusBadRequest,
	errNotFound:     http.StatusNotFound,
	errTimeout:      http.StatusGatewayTimeout,
	errBusy:         http.StatusConflict,
	errUpstream:     http.StatusBadGateway,
}

func writeError(w http.ResponseWriter, kind errKind, message string, details interface{}) {
	status, ok := statusForKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, apiError{Kind: kind, Message: message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
