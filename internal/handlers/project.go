// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"io"
	"log"
	"net/http"
	"strconv"
)

const projectFilename = "project.efp"

// ProjectHandler downloads the session as an archive on GET and replaces
// it with an uploaded archive on POST.
func (a *API) ProjectHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data, err := a.studio.SaveProject()
		if err != nil {
			log.Printf("Project save failed: %v", err)
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="`+projectFilename+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Write(data)
	case http.MethodPost:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxProjectSize))
		if err != nil {
			http.Error(w, "Failed to read body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if err := a.studio.LoadProject(body); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a.studio.Snapshot())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
