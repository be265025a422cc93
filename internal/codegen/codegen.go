// Package codegen turns a node graph into a Manim scene script.
package codegen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/efficientmanim/core/internal/models"
)

// SceneName is the class the renderer is asked to render.
const SceneName = "Output"

const indentUnit = "    "

// NodeSource is anything that can list nodes in declaration order.
type NodeSource interface {
	Nodes() []*models.Node
}

type generator struct {
	buf    strings.Builder
	indent int
}

// Generate emits the scene script for the graph. The output depends only
// on node order, names, classes and property order and values, so
// unchanged graphs produce byte-identical scripts.
func Generate(src NodeSource) string {
	g := &generator{}

	g.writeLine("from manim import *")
	g.writeLine("")
	g.writeLine("class %s(Scene):", SceneName)
	g.indent++
	g.writeLine("def construct(self):")
	g.indent++

	nodes := src.Nodes()
	if len(nodes) == 0 {
		g.writeLine("pass")
	}
	for _, n := range nodes {
		g.writeLine("%s = %s(%s)", n.Name, n.Class, strings.Join(Arguments(n), ", "))
		g.writeLine("self.add(%s)", n.Name)
	}

	return g.buf.String()
}

// Arguments renders the keyword arguments of a node's construction call.
// Null values and blank strings are omitted.
func Arguments(n *models.Node) []string {
	args := []string{}
	n.Props.Each(func(key string, v models.Value) {
		if v.IsNull() || v.IsBlank() {
			return
		}
		args = append(args, key+"="+Literal(v))
	})
	return args
}

// Literal renders a value as Python source.
func Literal(v models.Value) string {
	switch v.Kind() {
	case models.KindBool:
		if v.Bool() {
			return "True"
		}
		return "False"
	case models.KindInt:
		return strconv.FormatInt(v.Int(), 10)
	case models.KindFloat:
		return models.PyFloat(v.Float())
	case models.KindString:
		return PyQuote(v.Str())
	case models.KindColor:
		return fmt.Sprintf("ManimColor('%s')", v.Hex())
	case models.KindLiteral:
		return v.Source()
	}
	return "None"
}

// PyQuote quotes s the way Python's repr does for str.
func PyQuote(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var sb strings.Builder
	sb.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == rune(quote):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, r)
		case !unicode.IsPrint(r):
			if r <= 0xff {
				fmt.Fprintf(&sb, `\x%02x`, r)
			} else if r <= 0xffff {
				fmt.Fprintf(&sb, `\u%04x`, r)
			} else {
				fmt.Fprintf(&sb, `\U%08x`, r)
			}
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}

func (g *generator) writeLine(format string, args ...any) {
	if format != "" {
		g.buf.WriteString(strings.Repeat(indentUnit, g.indent))
	}
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteString("\n")
}
