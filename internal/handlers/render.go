// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"net/http"
)

type CodeResponse struct {
	Code string `json:"code"`
}

func (a *API) CodeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/x-python; charset=utf-8")
		w.Write([]byte(a.studio.Code()))
		return
	}
	writeJSON(w, http.StatusOK, CodeResponse{Code: a.studio.Code()})
}

// RenderHandler reports the scheduler status on GET and starts a render
// on POST, skipping the debounce window.
func (a *API) RenderHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, a.studio.RenderStatus())
	case http.MethodPost:
		a.studio.Render(r.URL.Query().Get("final") == "true")
		writeJSON(w, http.StatusAccepted, a.studio.RenderStatus())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *API) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	preview := a.studio.Preview()
	if !preview.Success || preview.Path == "" {
		http.Error(w, "No preview available", http.StatusNotFound)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, preview.Path)
}
