package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/floodroute/backend/fusion"
	"github.com/example/floodroute/backend/graph"
	"github.com/example/floodroute/backend/routing"
)

func buildTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	nodes := []graph.Node{
		{ID: 1, Lon: 0.0, Lat: 0.0},
		{ID: 2, Lon: 0.01, Lat: 0.0},
	}
	edges := []graph.TopologyEdge{
		{Key: graph.EdgeKey{U: 1, V: 2, K: 0}, LengthM: 1000, RoadClass: graph.RoadPrimary},
		{Key: graph.EdgeKey{U: 2, V: 1, K: 0}, LengthM: 1000, RoadClass: graph.RoadPrimary},
	}
	g, err := graph.NewGraph(nodes, edges)
	require.NoError(t, err)
	return g
}

func testServer(t *testing.T) *Server {
	t.Helper()
	g := buildTestGraph(t)
	return NewServer(":0", Deps{
		Graph:  g,
		Fusion: fusion.NewEngine(),
		Router: routing.New(routing.DefaultSpeedTable, 10000),
	})
}

func TestHealthHandler(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
}

func TestRouteHandlerReturnsOKRoute(t *testing.T) {
	s := testServer(t)

	body, _ := json.Marshal(routeRequest{
		Start: [2]float64{0.0, 0.0},
		End:   [2]float64{0.0, 0.01},
	})
	req := httptest.NewRequest(http.MethodPost, "/route", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp routeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, routing.StatusOK, resp.Status)
	require.Len(t, resp.Nodes, 2)
}

func TestRouteHandlerRejectsUnknownPolicy(t *testing.T) {
	s := testServer(t)

	var req routeRequest
	req.Start = [2]float64{0.0, 0.0}
	req.End = [2]float64{0.0, 0.01}
	req.Preferences.Policy = "reckless"
	body, _ := json.Marshal(req)

	httpReq := httptest.NewRequest(http.MethodPost, "/route", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httpReq)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp apiError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, errInvalidInput, resp.Kind)
}

func TestGraphStatusHandler(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/graph/status", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp graphStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.TotalEdges)
}

func TestFloodStatusHandlerReportsFusionSnapshot(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/flood/status", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp floodStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Empty(t, resp.Locations)
}

func TestSimulationHandlersWithoutDriverReportInvalidInput(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/simulation/start", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
