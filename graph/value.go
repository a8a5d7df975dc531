package graph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the type a Value carries.
type Kind int

const (
	// KindString is a text value.
	KindString Kind = iota
	// KindNumber is a float64 value.
	KindNumber
	// KindBool is a boolean value.
	KindBool
	// KindList is an ordered list of values.
	KindList
	// KindMap is a string-keyed map of values.
	KindMap
	// KindOpaque is an arbitrary handle the engine moves but never copies.
	KindOpaque
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is the tagged attribute value moved along edges and held in stores.
// String, number, bool, list and map values are deep-copied on every edge
// send and store write; opaque values travel by reference, for handles like
// model clients or database pools that cannot or should not be copied.
type Value struct {
	kind   Kind
	str    string
	num    float64
	b      bool
	list   []Value
	m      map[string]Value
	opaque any
}

// String creates a text value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number creates a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Int creates a numeric value from an int.
func Int(i int) Value { return Value{kind: KindNumber, num: float64(i)} }

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List creates an ordered list value.
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// Map creates a string-keyed map value.
func Map(fields map[string]Value) Value { return Value{kind: KindMap, m: fields} }

// Opaque creates a by-reference value around an arbitrary handle.
func Opaque(v any) Value { return Value{kind: KindOpaque, opaque: v} }

// Kind returns the value's tag.
func (v Value) Kind() Kind { return v.kind }

// Str returns the text of a string value, or "" for other kinds.
func (v Value) Str() string { return v.str }

// Num returns the number of a numeric value, or 0 for other kinds.
func (v Value) Num() float64 { return v.num }

// Int returns the number truncated to int.
func (v Value) Int() int { return int(v.num) }

// Truth returns the boolean of a bool value, or false for other kinds.
func (v Value) Truth() bool { return v.b }

// Items returns the elements of a list value, or nil for other kinds.
func (v Value) Items() []Value { return v.list }

// Fields returns the entries of a map value, or nil for other kinds.
func (v Value) Fields() map[string]Value { return v.m }

// Handle returns the wrapped object of an opaque value, or nil for other
// kinds.
func (v Value) Handle() any { return v.opaque }

// Clone deep-copies the value. Opaque handles are shared, not copied.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		if v.list == nil {
			return v
		}
		items := make([]Value, len(v.list))
		for i, it := range v.list {
			items[i] = it.Clone()
		}
		return Value{kind: KindList, list: items}
	case KindMap:
		if v.m == nil {
			return v
		}
		fields := make(map[string]Value, len(v.m))
		for k, fv := range v.m {
			fields[k] = fv.Clone()
		}
		return Value{kind: KindMap, m: fields}
	default:
		return v
	}
}

// Equal reports deep equality. Opaque values compare by handle identity.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, fv := range v.m {
			ov, ok := o.m[k]
			if !ok || !fv.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return v.opaque == o.opaque
	}
}

// Text renders the value as human-readable text, for prompts, logs and
// diagnostics.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		parts := make([]string, len(v.list))
		for i, it := range v.list {
			parts[i] = it.Text()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + v.m[k].Text()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", v.opaque)
	}
}

// GoValue converts the value to its plain Go representation: string,
// float64, bool, []any, map[string]any, or the opaque handle.
func (v Value) GoValue() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindList:
		items := make([]any, len(v.list))
		for i, it := range v.list {
			items[i] = it.GoValue()
		}
		return items
	case KindMap:
		fields := make(map[string]any, len(v.m))
		for k, fv := range v.m {
			fields[k] = fv.GoValue()
		}
		return fields
	default:
		return v.opaque
	}
}

// FromGo converts a plain Go value to a Value. Strings, numeric types,
// bools, []any and map[string]any map to their tagged kinds; anything else
// becomes opaque.
func FromGo(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case string:
		return String(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Int(x)
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case bool:
		return Bool(x)
	case []any:
		items := make([]Value, len(x))
		for i, it := range x {
			items[i] = FromGo(it)
		}
		return List(items...)
	case map[string]any:
		fields := make(map[string]Value, len(x))
		for k, fv := range x {
			fields[k] = FromGo(fv)
		}
		return Map(fields)
	default:
		return Opaque(v)
	}
}

// Payload is a keyed set of values, the unit of data on edges and in
// stores.
type Payload map[string]Value

// Clone deep-copies the payload.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v.Clone()
	}
	return out
}

// Merge overlays o onto p; keys present in o win.
func (p Payload) Merge(o Payload) {
	for k, v := range o {
		p[k] = v
	}
}

// Keys returns the payload's keys sorted.
func (p Payload) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromGoMap converts a plain Go map to a payload.
func FromGoMap(m map[string]any) Payload {
	p := make(Payload, len(m))
	for k, v := range m {
		p[k] = FromGo(v)
	}
	return p
}

// GoMap converts the payload to a plain Go map.
func (p Payload) GoMap() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v.GoValue()
	}
	return out
}
