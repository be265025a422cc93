// Package handlers provides HTTP request handlers for the API endpoints.
// It defines the routing logic, response formatting, and error handling mechanisms.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/efficientmanim/core/internal/graph"
	"github.com/efficientmanim/core/internal/models"
)

type CatalogResponse struct {
	Source  string                `json:"source"`
	Kind    models.ClassKind      `json:"kind"`
	Classes []models.CatalogEntry `json:"classes"`
}

type CreateNodeRequest struct {
	Class string `json:"class"`
	Kind  string `json:"kind"`
}

type NodeResponse struct {
	Node   *models.Node  `json:"node"`
	Fields []graph.Field `json:"fields"`
}

// PropertyRequest carries a JSON value. Kind forces an interpretation:
// "color" for a hex token, "literal" for source text, "string" for text
// that must not be read as a color.
type PropertyRequest struct {
	Value json.RawMessage `json:"value"`
	Kind  string          `json:"kind,omitempty"`
}

type PositionRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func parseKind(s string) (models.ClassKind, error) {
	if s == "" {
		return models.KindElement, nil
	}
	return models.ParseClassKind(s)
}

func (a *API) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	kind, err := parseKind(r.URL.Query().Get("kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cat := a.studio.Catalog()
	writeJSON(w, http.StatusOK, CatalogResponse{
		Source:  cat.Source,
		Kind:    kind,
		Classes: cat.Search(kind, r.URL.Query().Get("q")),
	})
}

func (a *API) GraphHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, a.studio.Snapshot())
}

func (a *API) ClearHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.studio.Clear()
	writeJSON(w, http.StatusOK, a.studio.Snapshot())
}

func (a *API) NewProjectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.studio.NewProject()
	writeJSON(w, http.StatusOK, a.studio.Snapshot())
}

func (a *API) CreateNodeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateNodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	node, err := a.studio.CreateNode(req.Class, kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, NodeResponse{Node: node, Fields: graph.Inspect(node)})
}

func (a *API) NodeHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		node, err := a.studio.Node(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, NodeResponse{Node: node, Fields: graph.Inspect(node)})
	case http.MethodDelete:
		if err := a.studio.DeleteNode(id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *API) PropertyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PropertyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	value, err := req.Decode()
	if err != nil {
		http.Error(w, "Invalid value: "+err.Error(), http.StatusBadRequest)
		return
	}

	node, err := a.studio.SetProperty(r.PathValue("id"), r.PathValue("key"), value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NodeResponse{Node: node, Fields: graph.Inspect(node)})
}

// Decode turns the request into a property value. A missing value is null.
func (p PropertyRequest) Decode() (models.Value, error) {
	if len(p.Value) == 0 {
		return models.NullValue(), nil
	}

	var v models.Value
	switch p.Kind {
	case "":
		err := v.UnmarshalJSON(p.Value)
		return v, err
	case "color", "literal", "string":
	default:
		return v, fmt.Errorf("unknown value kind %q", p.Kind)
	}

	var s string
	if err := json.Unmarshal(p.Value, &s); err != nil {
		return v, fmt.Errorf("%s value must be a string", p.Kind)
	}
	switch p.Kind {
	case "color":
		return models.ColorValue(s)
	case "literal":
		return models.LiteralValue(s), nil
	}
	return models.StringValue(s), nil
}

func (a *API) PositionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PositionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	node, err := a.studio.MoveNode(r.PathValue("id"), models.Position{req.X, req.Y})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NodeResponse{Node: node, Fields: graph.Inspect(node)})
}
