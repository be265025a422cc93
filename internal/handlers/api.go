// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/efficientmanim/core/internal/assist"
	"github.com/efficientmanim/core/internal/graph"
	"github.com/efficientmanim/core/internal/project"
	"github.com/efficientmanim/core/internal/studio"
)

// Uploaded project archives larger than this are rejected.
const maxProjectSize = 32 << 20

// API serves the editing session to the front end.
type API struct {
	studio     *studio.Studio
	bridge     *assist.Bridge
	sessionLog string
}

// NewAPI serves s. sessionLog is the log file quoted in bug reports and
// may be empty.
func NewAPI(s *studio.Studio, bridge *assist.Bridge, sessionLog string) *API {
	return &API{studio: s, bridge: bridge, sessionLog: sessionLog}
}

// Register mounts every endpoint on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", HealthHandler)
	mux.HandleFunc("/catalog", a.CatalogHandler)
	mux.HandleFunc("/graph", a.GraphHandler)
	mux.HandleFunc("/graph/clear", a.ClearHandler)
	mux.HandleFunc("/graph/new", a.NewProjectHandler)
	mux.HandleFunc("/nodes", a.CreateNodeHandler)
	mux.HandleFunc("/nodes/{id}", a.NodeHandler)
	mux.HandleFunc("/nodes/{id}/props/{key}", a.PropertyHandler)
	mux.HandleFunc("/nodes/{id}/position", a.PositionHandler)
	mux.HandleFunc("/code", a.CodeHandler)
	mux.HandleFunc("/render", a.RenderHandler)
	mux.HandleFunc("/render/preview", a.PreviewHandler)
	mux.HandleFunc("/project", a.ProjectHandler)
	mux.HandleFunc("/assist", a.AssistHandler)
	mux.HandleFunc("/report", a.ReportHandler)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, graph.ErrUnknownClass), errors.Is(err, graph.ErrUnknownProperty):
		status = http.StatusBadRequest
	case errors.Is(err, graph.ErrNodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, project.ErrCorruptProject):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, assist.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	}
	http.Error(w, err.Error(), status)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
