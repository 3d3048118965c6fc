// Package api implements the Query Surface: the HTTP boundary the rest of
// the service is driven through, grounded on the teacher's
// internal/api/server.go (http.ServeMux plus a shared writeJSON helper),
// generalized from a single health/snapshot pair into the full route,
// graph_status, trigger_collection, simulation_*, and subscribe operation
// set, plus a prometheus /metrics endpoint.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/floodroute/backend/broadcast"
	"github.com/example/floodroute/backend/fusion"
	"github.com/example/floodroute/backend/graph"
	"github.com/example/floodroute/backend/logging"
	"github.com/example/floodroute/backend/routing"
	"github.com/example/floodroute/backend/scenario"
	"github.com/example/floodroute/backend/scheduler"
)

// Server is the single Query Surface instance: one process wires one of
// each dependency and starts one Server.
type Server struct {
	addr string
	log  *logging.Logger

	graph     *graph.Graph
	fusion    *fusion.Engine
	router    *routing.Router
	scheduler *scheduler.Scheduler
	scenario  *scenario.Driver
	hub       *broadcast.Hub

	schedulerPeriod time.Duration
}

// Deps bundles the components a Server dispatches into; every field is
// required except scenario and scheduler, which an operator may omit when
// running in a mode that doesn't need them (e.g. pure replay), and Logger,
// which defaults to a JSON logger at info level when nil.
type Deps struct {
	Graph           *graph.Graph
	Fusion          *fusion.Engine
	Router          *routing.Router
	Scheduler       *scheduler.Scheduler
	Scenario        *scenario.Driver
	Hub             *broadcast.Hub
	SchedulerPeriod time.Duration
	Logger          *logging.Logger
}

// NewServer builds a Server bound to addr.
func NewServer(addr string, d Deps) *Server {
	log := d.Logger
	if log == nil {
		log = logging.New(logging.Config{Level: logging.LevelInfo, Format: logging.FormatJSON})
	}
	return &Server{
		addr:            addr,
		log:             log.With("component", "api"),
		graph:           d.Graph,
		fusion:          d.Fusion,
		router:          d.Router,
		scheduler:       d.Scheduler,
		scenario:        d.Scenario,
		hub:             d.Hub,
		schedulerPeriod: d.SchedulerPeriod,
	}
}

// Handler builds the full ServeMux, exported separately from Start so
// tests can exercise routes with httptest without binding a socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/route", s.routeHandler)
	mux.HandleFunc("/route/alternates", s.alternateRoutesHandler)
	mux.HandleFunc("/graph/status", s.graphStatusHandler)
	mux.HandleFunc("/sources/status", s.sourceStatusHandler)
	mux.HandleFunc("/flood/status", s.floodStatusHandler)
	mux.HandleFunc("/collection/trigger", s.triggerCollectionHandler)
	mux.HandleFunc("/simulation/start", s.simulationStartHandler)
	mux.HandleFunc("/simulation/stop", s.simulationStopHandler)
	mux.HandleFunc("/simulation/reset", s.simulationResetHandler)
	mux.HandleFunc("/simulation/status", s.simulationStatusHandler)
	mux.HandleFunc("/subscribe", s.subscribeHandler)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start binds addr and serves until the process exits or ListenAndServe
// returns an error.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // subscribe holds the connection open; write deadlines are per-frame inside the hub
	}
	s.log.Info("api server listening", "addr", s.addr)
	return srv.ListenAndServe()
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Time: time.Now().UTC().Format(time.RFC3339)})
}

type healthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func contextWithTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}
