// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/efficientmanim/core/internal/assist"
)

type AssistRequest struct {
	Instruction string `json:"instruction"`
	Apply       bool   `json:"apply"`
}

type AssistResponse struct {
	assist.Suggestion
	Applied bool `json:"applied"`
}

func (a *API) AssistHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AssistRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Instruction) == "" {
		http.Error(w, "Instruction is required", http.StatusBadRequest)
		return
	}

	suggestion, err := a.bridge.Suggest(r.Context(), a.studio.Code(), a.studio.NodeIDs(), req.Instruction)
	if err != nil {
		if errors.Is(err, assist.ErrNotConfigured) {
			writeError(w, err)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	response := AssistResponse{Suggestion: suggestion}
	if req.Apply && suggestion.Found {
		a.studio.ApplyCode(suggestion.Code)
		response.Applied = true
	}
	writeJSON(w, http.StatusOK, response)
}
