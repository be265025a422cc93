// Package models defines the core data structures shared by the composer.
// It includes catalog entries, graph nodes and the property value variant.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Position [2]float64

type Node struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Class    string       `json:"class"`
	Kind     ClassKind    `json:"kind"`
	Props    *PropertySet `json:"props"`
	Position Position     `json:"position"`
}

// Clone returns a deep copy safe to hand out of the owning session.
func (n *Node) Clone() *Node {
	c := *n
	c.Props = n.Props.Clone()
	return &c
}

// PropertySet is a name→value mapping that remembers insertion order.
type PropertySet struct {
	keys   []string
	values map[string]Value
}

func NewPropertySet() *PropertySet {
	return &PropertySet{values: make(map[string]Value)}
}

func (p *PropertySet) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

func (p *PropertySet) Has(key string) bool {
	if p == nil {
		return false
	}
	_, ok := p.values[key]
	return ok
}

func (p *PropertySet) Get(key string) (Value, bool) {
	if p == nil {
		return Value{}, false
	}
	v, ok := p.values[key]
	return v, ok
}

// Set replaces an existing key in place or appends a new one.
func (p *PropertySet) Set(key string, v Value) {
	if p.values == nil {
		p.values = make(map[string]Value)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = v
}

// Keys returns the keys in insertion order.
func (p *PropertySet) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Each calls fn for every entry in insertion order.
func (p *PropertySet) Each(fn func(key string, v Value)) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		fn(k, p.values[k])
	}
}

func (p *PropertySet) Clone() *PropertySet {
	c := NewPropertySet()
	p.Each(c.Set)
	return c
}

// MarshalJSON writes an object whose members follow insertion order.
func (p *PropertySet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := p.values[k].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping the member order of the document.
func (p *PropertySet) UnmarshalJSON(data []byte) error {
	fresh := NewPropertySet()
	err := DecodeOrderedObject(data, func(key string, raw json.RawMessage) error {
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("property %s: %w", key, err)
		}
		fresh.Set(key, v)
		return nil
	})
	if err != nil {
		return err
	}
	*p = *fresh
	return nil
}

// DecodeOrderedObject walks the members of a JSON object in document order.
func DecodeOrderedObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("member %s: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
