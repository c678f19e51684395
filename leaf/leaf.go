package leaf

import "time"

// Kind is the coarse value kind recorded in shape signatures.
type Kind string

// Signature kinds. Primitive kinds use their type names; container and rich
// kinds use the names below.
const (
	KindNull      Kind = "null"
	KindBoolean   Kind = "boolean"
	KindNumber    Kind = "number"
	KindString    Kind = "string"
	KindUndefined Kind = "undefined"
	KindObject    Kind = "object"
	KindArray     Kind = "array"
	KindDate      Kind = "date"
	KindMap       Kind = "map"
	KindSet       Kind = "set"
	KindError     Kind = "error"
)

// Undefined marks a position that holds no value at all, as distinct from an
// explicit null. It survives flattening and reconstruction unchanged.
type Undefined struct{}

// Pair is one entry of a Map.
type Pair struct {
	Key   any
	Value any
}

// Map is an ordered pair collection. Unlike a native Go map it preserves
// insertion order and allows arbitrary comparable-or-not keys; it is
// transmitted as an array of [key, value] pairs.
type Map struct {
	pairs []Pair
}

// NewMap creates a Map from the given pairs, preserving their order.
func NewMap(pairs ...Pair) *Map {
	m := &Map{pairs: make([]Pair, len(pairs))}
	copy(m.pairs, pairs)
	return m
}

// Set appends or replaces the entry for key, preserving existing order for
// replaced keys.
func (m *Map) Set(key, value any) {
	for i, p := range m.pairs {
		if p.Key == key {
			m.pairs[i].Value = value
			return
		}
	}
	m.pairs = append(m.pairs, Pair{Key: key, Value: value})
}

// Get returns the value for key and whether it is present.
func (m *Map) Get(key any) (any, bool) {
	for _, p := range m.pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.pairs) }

// Pairs returns the entries in insertion order. The returned slice is a copy.
func (m *Map) Pairs() []Pair {
	out := make([]Pair, len(m.pairs))
	copy(out, m.pairs)
	return out
}

// Set is a unique element collection with stable insertion order.
type Set struct {
	elems []any
}

// NewSet creates a Set from the given elements, dropping duplicates while
// keeping first-insertion order.
func NewSet(elems ...any) *Set {
	s := &Set{}
	for _, e := range elems {
		s.Add(e)
	}
	return s
}

// Add inserts an element if not already present.
func (s *Set) Add(elem any) {
	if s.Has(elem) {
		return
	}
	s.elems = append(s.elems, elem)
}

// Has reports whether the element is present.
func (s *Set) Has(elem any) bool {
	for _, e := range s.elems {
		if e == elem {
			return true
		}
	}
	return false
}

// Len returns the number of elements.
func (s *Set) Len() int { return len(s.elems) }

// Elems returns the elements in insertion order. The returned slice is a copy.
func (s *Set) Elems() []any {
	out := make([]any, len(s.elems))
	copy(out, s.elems)
	return out
}

// Error is an exception-style value: a message plus optional name and stack.
type Error struct {
	Message string
	Name    string
	Stack   string
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

var _ error = (*Error)(nil)

// KindOf returns the signature kind for a value.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBoolean
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return KindNumber
	case string:
		return KindString
	case Undefined:
		return KindUndefined
	case time.Time:
		return KindDate
	case *Map:
		return KindMap
	case *Set:
		return KindSet
	case *Error:
		return KindError
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	default:
		// Unknown concrete types behave as opaque single-slot leaves.
		return KindString
	}
}

// IsRich reports whether the value is one of the rich scalar types that
// occupy a single leaf slot despite having internal structure.
func IsRich(v any) bool {
	switch v.(type) {
	case time.Time, *Map, *Set, *Error:
		return true
	default:
		return false
	}
}

// IsLeaf reports whether the value contributes exactly one slot to a
// flattened value sequence.
func IsLeaf(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return false
	default:
		return true
	}
}
