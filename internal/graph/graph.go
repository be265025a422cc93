// Package graph implements the node graph edited by the composer: an
// insertion-ordered set of configured class instances plus the per-class
// counters that name them.
package graph

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/efficientmanim/core/internal/models"
)

var (
	ErrUnknownClass    = errors.New("unknown class")
	ErrNodeNotFound    = errors.New("node not found")
	ErrUnknownProperty = errors.New("unknown property")
	ErrDuplicateNode   = errors.New("duplicate node id")
)

// Catalog resolves class names to their constructible parameter lists.
type Catalog interface {
	Lookup(name string, kind models.ClassKind) (models.CatalogEntry, bool)
}

type Graph struct {
	catalog  Catalog
	order    []string
	nodes    map[string]*models.Node
	counters map[string]int
	newID    func() string
}

func New(catalog Catalog) *Graph {
	return &Graph{
		catalog:  catalog,
		nodes:    make(map[string]*models.Node),
		counters: make(map[string]int),
		newID:    uuid.NewString,
	}
}

// Restore rebuilds a graph from persisted nodes and counters. Nodes keep
// their ids, names and order; counters are taken verbatim.
func Restore(catalog Catalog, nodes []*models.Node, counters map[string]int) (*Graph, error) {
	g := New(catalog)
	for _, n := range nodes {
		if _, exists := g.nodes[n.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
		}
		if n.Props == nil {
			n.Props = models.NewPropertySet()
		}
		g.order = append(g.order, n.ID)
		g.nodes[n.ID] = n
	}
	for class, count := range counters {
		g.counters[class] = count
	}
	return g, nil
}

// CounterConflicts lists node names of the form Class_N whose N is above
// the counter for Class. CreateNode would hand those names out again.
func CounterConflicts(nodes []*models.Node, counters map[string]int) []string {
	conflicts := []string{}
	for _, n := range nodes {
		suffix, ok := strings.CutPrefix(n.Name, n.Class+"_")
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if idx > counters[n.Class] {
			conflicts = append(conflicts, n.Name)
		}
	}
	return conflicts
}

// CreateNode instantiates a catalog class, naming it ClassName_N where N
// is the next value of that class's counter.
func (g *Graph) CreateNode(className string, kind models.ClassKind) (*models.Node, error) {
	entry, ok := g.catalog.Lookup(className, kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownClass, kind, className)
	}

	g.counters[className]++
	node := &models.Node{
		ID:    g.newID(),
		Name:  fmt.Sprintf("%s_%d", className, g.counters[className]),
		Class: className,
		Kind:  kind,
		Props: entry.Defaults(),
	}

	g.order = append(g.order, node.ID)
	g.nodes[node.ID] = node
	return node, nil
}

// SetProperty replaces one property of a node. Keys outside the node's
// parameter set are rejected.
func (g *Graph) SetProperty(id, key string, value models.Value) error {
	node, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if !node.Props.Has(key) {
		return fmt.Errorf("%w: %s has no parameter %q", ErrUnknownProperty, node.Name, key)
	}
	node.Props.Set(key, value)
	return nil
}

func (g *Graph) MoveNode(id string, pos models.Position) error {
	node, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	node.Position = pos
	return nil
}

// DeleteNode removes a node. Counters are left alone so names are never reused.
func (g *Graph) DeleteNode(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	delete(g.nodes, id)
	for i, nid := range g.order {
		if nid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear drops every node but keeps the counters for the session.
func (g *Graph) Clear() {
	g.order = nil
	g.nodes = make(map[string]*models.Node)
}

// Reset starts a new project: nodes and counters are both dropped.
func (g *Graph) Reset() {
	g.Clear()
	g.counters = make(map[string]int)
}

func (g *Graph) Node(id string) (*models.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns the live nodes in insertion order.
func (g *Graph) Nodes() []*models.Node {
	nodes := make([]*models.Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

func (g *Graph) IDs() []string {
	return append([]string(nil), g.order...)
}

func (g *Graph) Len() int {
	return len(g.order)
}

func (g *Graph) Counters() map[string]int {
	out := make(map[string]int, len(g.counters))
	for k, v := range g.counters {
		out[k] = v
	}
	return out
}

type FieldType string

const (
	FieldColor  FieldType = "color"
	FieldBool   FieldType = "bool"
	FieldNumber FieldType = "number"
	FieldText   FieldType = "text"
)

// Field is one row of a node's property form.
type Field struct {
	Name  string       `json:"name"`
	Type  FieldType    `json:"type"`
	Value models.Value `json:"value"`
}

// Inspect lists the editable fields of a node. Null properties are hidden
// unless they are color-like, which always get a picker.
func Inspect(node *models.Node) []Field {
	fields := []Field{}
	node.Props.Each(func(key string, v models.Value) {
		colorLike := IsColorName(key)
		if v.IsNull() && !colorLike {
			return
		}

		field := Field{Name: key, Value: v}
		switch {
		case v.IsColor() || colorLike:
			field.Type = FieldColor
		case v.Kind() == models.KindBool:
			field.Type = FieldBool
		case v.IsNumeric():
			field.Type = FieldNumber
		default:
			field.Type = FieldText
		}
		fields = append(fields, field)
	})
	return fields
}

func IsColorName(key string) bool {
	return strings.HasSuffix(strings.ToLower(key), "color")
}
