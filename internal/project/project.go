// Package project reads and writes .efp project archives: a zip file
// holding one project.json document with the graph's nodes and counters.
package project

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/efficientmanim/core/internal/graph"
	"github.com/efficientmanim/core/internal/models"
)

const DocumentName = "project.json"

var ErrCorruptProject = errors.New("corrupt project")

type nodeRecord struct {
	Class    string              `json:"class"`
	Name     string              `json:"name"`
	Props    *models.PropertySet `json:"props"`
	Position *models.Position    `json:"position,omitempty"`
	Pos      *models.Position    `json:"pos,omitempty"`
}

type document struct {
	Nodes    json.RawMessage `json:"nodes"`
	Counters map[string]int  `json:"counters"`
}

// Save writes the graph as a project archive, nodes in graph order.
func Save(g *graph.Graph) ([]byte, error) {
	doc, err := encodeDocument(g)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(DocumentName)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", DocumentName, err)
	}
	if _, err := w.Write(doc); err != nil {
		return nil, fmt.Errorf("write %s: %w", DocumentName, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeDocument(g *graph.Graph) ([]byte, error) {
	var nodes bytes.Buffer
	nodes.WriteByte('{')
	for i, n := range g.Nodes() {
		if i > 0 {
			nodes.WriteByte(',')
		}
		id, err := json.Marshal(n.ID)
		if err != nil {
			return nil, err
		}
		pos := n.Position
		rec, err := json.Marshal(nodeRecord{
			Class:    n.Class,
			Name:     n.Name,
			Props:    n.Props,
			Position: &pos,
		})
		if err != nil {
			return nil, fmt.Errorf("encode node %s: %w", n.Name, err)
		}
		nodes.Write(id)
		nodes.WriteByte(':')
		nodes.Write(rec)
	}
	nodes.WriteByte('}')

	out, err := json.MarshalIndent(document{
		Nodes:    nodes.Bytes(),
		Counters: g.Counters(),
	}, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", DocumentName, err)
	}
	return out, nil
}

// Load rebuilds a graph from a project archive. Any structural problem
// is reported as ErrCorruptProject.
func Load(data []byte, catalog graph.Catalog) (*graph.Graph, error) {
	raw, err := readDocument(data)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, corrupt("invalid %s: %v", DocumentName, err)
	}
	for _, key := range []string{"nodes", "counters"} {
		if v, ok := fields[key]; !ok || string(bytes.TrimSpace(v)) == "null" {
			return nil, corrupt("missing %q", key)
		}
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, corrupt("invalid %s: %v", DocumentName, err)
	}

	var nodes []*models.Node
	err = models.DecodeOrderedObject(doc.Nodes, func(id string, rawNode json.RawMessage) error {
		node, err := decodeNode(id, rawNode, catalog)
		if err != nil {
			return err
		}
		nodes = append(nodes, node)
		return nil
	})
	if err != nil {
		return nil, corrupt("nodes: %v", err)
	}

	for _, name := range graph.CounterConflicts(nodes, doc.Counters) {
		log.Printf("Project: counter for %s is behind its name; new nodes may reuse it", name)
	}

	g, err := graph.Restore(catalog, nodes, doc.Counters)
	if err != nil {
		return nil, corrupt("%v", err)
	}
	return g, nil
}

func readDocument(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, corrupt("not a project archive: %v", err)
	}

	f, err := zr.Open(DocumentName)
	if err != nil {
		return nil, corrupt("archive has no %s", DocumentName)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, corrupt("read %s: %v", DocumentName, err)
	}
	return raw, nil
}

func decodeNode(id string, raw json.RawMessage, catalog graph.Catalog) (*models.Node, error) {
	var rec nodeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("node %s: %w", id, err)
	}
	if rec.Class == "" {
		return nil, fmt.Errorf("node %s: missing \"class\"", id)
	}
	if rec.Name == "" {
		return nil, fmt.Errorf("node %s: missing \"name\"", id)
	}

	node := &models.Node{
		ID:    id,
		Name:  rec.Name,
		Class: rec.Class,
		Kind:  kindOf(rec.Class, catalog),
		Props: rec.Props,
	}
	if node.Props == nil {
		node.Props = models.NewPropertySet()
	}
	switch {
	case rec.Position != nil:
		node.Position = *rec.Position
	case rec.Pos != nil:
		node.Position = *rec.Pos
	}
	return node, nil
}

// kindOf resolves a class to its kind; classes the catalog does not know
// are treated as elements.
func kindOf(class string, catalog graph.Catalog) models.ClassKind {
	if _, ok := catalog.Lookup(class, models.KindAnimation); ok {
		return models.KindAnimation
	}
	return models.KindElement
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptProject, fmt.Sprintf(format, args...))
}
