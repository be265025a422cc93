// Package catalog holds the registry of constructible Manim classes.
// The registry is built once per process from an embedded declaration
// produced by an offline introspection pass over the manim package.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/efficientmanim/core/internal/models"
)

//go:embed manim.json
var manimJSON []byte

// Base types are abstract and never offered for construction.
var baseTypes = map[string]bool{
	"Mobject":   true,
	"Animation": true,
}

type document struct {
	Source  string            `json:"source"`
	Classes []json.RawMessage `json:"classes"`
}

type Catalog struct {
	Source     string
	elements   map[string]models.CatalogEntry
	animations map[string]models.CatalogEntry
}

var (
	discoverOnce sync.Once
	discovered   *Catalog
)

// Discover returns the process-wide catalog, building it on first use.
func Discover() *Catalog {
	discoverOnce.Do(func() {
		discovered = Parse(manimJSON)
		log.Printf("Catalog ready: %d elements, %d animations (%s)",
			len(discovered.elements), len(discovered.animations), discovered.Source)
	})
	return discovered
}

// Parse builds a catalog from a registry document. It is best-effort:
// entries that cannot be read are logged and skipped, and an unreadable
// document yields an empty catalog.
func Parse(data []byte) *Catalog {
	c := &Catalog{
		elements:   make(map[string]models.CatalogEntry),
		animations: make(map[string]models.CatalogEntry),
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("Catalog: unreadable registry: %v", err)
		return c
	}
	c.Source = doc.Source

	for i, raw := range doc.Classes {
		entry, err := parseEntry(raw)
		if err != nil {
			log.Printf("Catalog: skipping entry %d: %v", i, err)
			continue
		}
		if baseTypes[entry.ClassName] {
			continue
		}

		switch entry.Kind {
		case models.KindElement:
			c.elements[entry.ClassName] = entry
		case models.KindAnimation:
			c.animations[entry.ClassName] = entry
		}
	}

	return c
}

func parseEntry(raw json.RawMessage) (models.CatalogEntry, error) {
	var entry models.CatalogEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return entry, err
	}

	if entry.ClassName == "" {
		return entry, fmt.Errorf("missing class name")
	}

	kind, err := models.ParseClassKind(string(entry.Kind))
	if err != nil {
		return entry, fmt.Errorf("%s: %w", entry.ClassName, err)
	}
	entry.Kind = kind

	seen := make(map[string]bool, len(entry.Parameters))
	for _, p := range entry.Parameters {
		if p.Name == "" {
			return entry, fmt.Errorf("%s: parameter without name", entry.ClassName)
		}
		if seen[p.Name] {
			return entry, fmt.Errorf("%s: duplicate parameter %s", entry.ClassName, p.Name)
		}
		seen[p.Name] = true
	}

	return entry, nil
}

func (c *Catalog) table(kind models.ClassKind) map[string]models.CatalogEntry {
	if kind == models.KindAnimation {
		return c.animations
	}
	return c.elements
}

// Lookup finds a class of the given kind.
func (c *Catalog) Lookup(name string, kind models.ClassKind) (models.CatalogEntry, bool) {
	entry, ok := c.table(kind)[name]
	return entry, ok
}

func (c *Catalog) Elements() map[string]models.CatalogEntry {
	return copyTable(c.elements)
}

func (c *Catalog) Animations() map[string]models.CatalogEntry {
	return copyTable(c.animations)
}

// Names lists the class names of a kind in alphabetical order.
func (c *Catalog) Names(kind models.ClassKind) []string {
	table := c.table(kind)
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Search returns the entries whose name contains query, ignoring case.
func (c *Catalog) Search(kind models.ClassKind, query string) []models.CatalogEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	table := c.table(kind)

	results := []models.CatalogEntry{}
	for _, name := range c.Names(kind) {
		if query == "" || strings.Contains(strings.ToLower(name), query) {
			results = append(results, table[name])
		}
	}
	return results
}

func copyTable(src map[string]models.CatalogEntry) map[string]models.CatalogEntry {
	dst := make(map[string]models.CatalogEntry, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
