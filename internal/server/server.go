package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tradescape/internal/coordinator"
	"tradescape/internal/model"
	"tradescape/internal/workspace"
)

// Server exposes the coordinator over HTTP. Handlers are thin: decode,
// delegate, encode. All state lives behind the coordinator.
type Server struct {
	coord *coordinator.Coordinator
	srv   *http.Server
}

// New builds the HTTP server on addr.
func New(addr string, coord *coordinator.Coordinator) *Server {
	s := &Server{coord: coord}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/figure", s.handleFigure)
	mux.HandleFunc("POST /api/settings", s.handleSettings)
	mux.HandleFunc("POST /api/shapes", s.handleShapes)
	mux.HandleFunc("PUT /api/notes", s.handleNotes)
	mux.HandleFunc("GET /api/workspace", s.handleExport)
	mux.HandleFunc("POST /api/workspace", s.handleImport)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving HTTP until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	log.Printf("[INFO] http server listening on %s", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.srv.Close()
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	fig := s.coord.Figure()
	if fig == nil {
		fig = s.coord.Evaluate(r.Context(), coordinator.TriggerWorkspaceLoad)
	}
	writeJSON(w, http.StatusOK, fig)
}

// handleSettings applies a full settings struct. The changed fields are
// diffed against the current settings to name the active triggers.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	prev := s.coord.Store().Settings()
	next := s.coord.Store().Settings() // separate snapshot so decode cannot alias prev
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode settings: %w", err))
		return
	}
	if err := workspace.ValidateSettings(&next); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	triggers := settingsTriggers(prev, next)
	s.coord.Store().SetSettings(next)
	if len(triggers) == 0 {
		writeJSON(w, http.StatusOK, s.coord.Figure())
		return
	}
	fig := s.coord.Evaluate(r.Context(), triggers...)
	writeJSON(w, http.StatusOK, fig)
}

// shapeRequest is the wire form of a shape-store mutation.
type shapeRequest struct {
	Action    string               `json:"action"`
	Shapes    []model.Shape        `json:"shapes"`
	ViewState model.GraphViewState `json:"view_state"`
	Index     *int                 `json:"index"`
}

func (s *Server) handleShapes(w http.ResponseWriter, r *http.Request) {
	var req shapeRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode shape action: %w", err))
		return
	}

	var action workspace.Action
	switch req.Action {
	case "relayout":
		action = workspace.Action{
			Kind:      workspace.ActionRelayout,
			Shapes:    req.Shapes,
			HasShapes: rawHasKey(body, "shapes"),
			ViewState: req.ViewState,
		}
	case "delete":
		if req.Index == nil {
			writeError(w, http.StatusBadRequest, errors.New("delete requires index"))
			return
		}
		action = workspace.Action{Kind: workspace.ActionDeleteAt, Index: *req.Index}
	case "clear":
		action = workspace.Action{Kind: workspace.ActionClearAll}
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown action %q", req.Action))
		return
	}

	s.coord.ApplyShapeAction(action)
	fig := s.coord.Evaluate(r.Context(), coordinator.TriggerShapes)
	writeJSON(w, http.StatusOK, fig)
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode notes: %w", err))
		return
	}
	s.coord.Store().SetNotes(req.Notes)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, filename, err := s.coord.ExportWorkspace()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.coord.ImportWorkspace(data); err != nil {
		// Current state stays untouched on a bad payload.
		writeError(w, http.StatusBadRequest, err)
		return
	}
	fig := s.coord.Evaluate(r.Context(), coordinator.TriggerWorkspaceLoad)
	writeJSON(w, http.StatusOK, fig)
}

// settingsTriggers names the fields that changed between two settings
// snapshots.
func settingsTriggers(prev, next model.Settings) []coordinator.Trigger {
	var out []coordinator.Trigger
	if prev.DataSource != next.DataSource {
		out = append(out, coordinator.TriggerDataSource)
	}
	if prev.Stock != next.Stock {
		out = append(out, coordinator.TriggerStock)
	}
	if prev.TimePeriod != next.TimePeriod {
		out = append(out, coordinator.TriggerPeriod)
	}
	if prev.Interval != next.Interval {
		out = append(out, coordinator.TriggerInterval)
	}
	if prev.ChartType != next.ChartType {
		out = append(out, coordinator.TriggerChartType)
	}
	if !equalStrings(prev.ExtendedHours, next.ExtendedHours) {
		out = append(out, coordinator.TriggerExtendedHours)
	}
	if !equalStrings(prev.Indicators, next.Indicators) {
		out = append(out, coordinator.TriggerIndicators)
	}
	if prev.YAxisPosition != next.YAxisPosition {
		out = append(out, coordinator.TriggerYAxisPosition)
	}
	if prev.BGColor != next.BGColor {
		out = append(out, coordinator.TriggerBGColor)
	}
	if prev.YAxisDtick != next.YAxisDtick {
		out = append(out, coordinator.TriggerDtick)
	}
	if !equalStrings(prev.AutoRefresh, next.AutoRefresh) {
		out = append(out, coordinator.TriggerAutoRefresh)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// rawHasKey reports whether a top-level JSON key is present, so an absent
// "shapes" field can be told apart from an explicit empty list.
func rawHasKey(body []byte, key string) bool {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return false
	}
	_, ok := m[key]
	return ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
