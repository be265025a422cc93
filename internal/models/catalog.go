// Package models defines the core data structures shared by the composer.
// It includes catalog entries, graph nodes and the property value variant.
package models

import "fmt"

type ClassKind string

const (
	KindElement   ClassKind = "element"
	KindAnimation ClassKind = "animation"
)

func ParseClassKind(s string) (ClassKind, error) {
	switch ClassKind(s) {
	case KindElement, KindAnimation:
		return ClassKind(s), nil
	case "mobject", "Mobject":
		return KindElement, nil
	}
	return "", fmt.Errorf("unknown class kind %q", s)
}

type Parameter struct {
	Name    string `json:"name"`
	Default Value  `json:"default"`
}

type CatalogEntry struct {
	ClassName  string      `json:"class"`
	Kind       ClassKind   `json:"kind"`
	Parameters []Parameter `json:"parameters"`
}

// Defaults returns a fresh property set seeded from the parameter defaults.
func (e CatalogEntry) Defaults() *PropertySet {
	props := NewPropertySet()
	for _, p := range e.Parameters {
		props.Set(p.Name, p.Default)
	}
	return props
}
