// Package models defines the core data structures shared by the composer.
// It includes catalog entries, graph nodes and the property value variant.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindColor
	KindLiteral
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindColor:
		return "color"
	case KindLiteral:
		return "literal"
	}
	return fmt.Sprintf("ValueKind(%d)", uint8(k))
}

// literalKey marks an opaque source literal in JSON documents.
const literalKey = "$literal"

// Value is a property value. The zero Value is null.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
}

func NullValue() Value              { return Value{} }
func BoolValue(b bool) Value        { return Value{kind: KindBool, b: b} }
func IntValue(i int64) Value        { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value    { return Value{kind: KindFloat, f: f} }
func StringValue(s string) Value    { return Value{kind: KindString, s: s} }
func LiteralValue(src string) Value { return Value{kind: KindLiteral, s: src} }

// ColorValue parses a hex color token and stores it in canonical form.
func ColorValue(hex string) (Value, error) {
	canon, err := CanonicalHex(hex)
	if err != nil {
		return Value{}, err
	}
	return Value{kind: KindColor, s: canon}, nil
}

// MustColor is ColorValue for constants known to be valid.
func MustColor(hex string) Value {
	v, err := ColorValue(hex)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }
func (v Value) Bool() bool      { return v.b }
func (v Value) Int() int64      { return v.i }
func (v Value) Float() float64  { return v.f }
func (v Value) Str() string     { return v.s }
func (v Value) Hex() string     { return v.s }
func (v Value) Source() string  { return v.s }
func (v Value) IsColor() bool   { return v.kind == KindColor }
func (v Value) IsLiteral() bool { return v.kind == KindLiteral }
func (v Value) IsString() bool  { return v.kind == KindString }
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// IsBlank reports whether v is a string holding only whitespace.
func (v Value) IsBlank() bool {
	return v.kind == KindString && strings.TrimSpace(v.s) == ""
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloatJSON(v.f)
	default:
		return v.s
	}
}

// IsHexColorToken reports whether s looks like "#" followed by 3, 4, 6 or 8 hex digits.
func IsHexColorToken(s string) bool {
	_, err := CanonicalHex(s)
	return err == nil
}

// CanonicalHex upper-cases a hex color token and expands the short forms.
func CanonicalHex(s string) (string, error) {
	if !strings.HasPrefix(s, "#") {
		return "", fmt.Errorf("invalid color %q: missing '#'", s)
	}
	digits := s[1:]
	for _, r := range digits {
		if !isHexDigit(r) {
			return "", fmt.Errorf("invalid color %q: non-hex digit %q", s, r)
		}
	}

	switch len(digits) {
	case 3, 4:
		var sb strings.Builder
		for _, r := range digits {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		digits = sb.String()
	case 6, 8:
	default:
		return "", fmt.Errorf("invalid color %q: expected 3, 4, 6 or 8 hex digits", s)
	}

	return "#" + strings.ToUpper(digits), nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// MarshalJSON writes colors as hex strings and literals as {"$literal": src}.
// Integral floats keep a decimal point so they decode back as floats.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		if math.IsInf(v.f, 0) || math.IsNaN(v.f) {
			return json.Marshal(map[string]string{literalKey: PyFloat(v.f)})
		}
		return []byte(formatFloatJSON(v.f)), nil
	case KindString, KindColor:
		return json.Marshal(v.s)
	case KindLiteral:
		return json.Marshal(map[string]string{literalKey: v.s})
	}
	return nil, fmt.Errorf("cannot marshal value of kind %s", v.kind)
}

// UnmarshalJSON restores a value. Strings that are hex color tokens
// become colors, arrays become literals.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty value")
	}

	switch data[0] {
	case 'n':
		*v = NullValue()
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = DecodeString(s)
		return nil
	case '[':
		var compact bytes.Buffer
		if err := json.Compact(&compact, data); err != nil {
			return err
		}
		*v = LiteralValue(compact.String())
		return nil
	case '{':
		var obj map[string]string
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("unsupported object value: %w", err)
		}
		src, ok := obj[literalKey]
		if !ok || len(obj) != 1 {
			return fmt.Errorf("unsupported object value %s", data)
		}
		*v = LiteralValue(src)
		return nil
	}

	return v.unmarshalNumber(string(data))
}

func (v *Value) unmarshalNumber(text string) error {
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			*v = IntValue(i)
			return nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", text, err)
	}
	*v = FloatValue(f)
	return nil
}

// DecodeString applies the hex color rule to a raw string.
func DecodeString(s string) Value {
	if c, err := ColorValue(s); err == nil {
		return c
	}
	return StringValue(s)
}

func formatFloatJSON(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// PyFloat renders f the way Python's repr does.
func PyFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "float('nan')"
	case math.IsInf(f, 1):
		return "float('inf')"
	case math.IsInf(f, -1):
		return "float('-inf')"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
