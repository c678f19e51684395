package shape

import (
	"sort"
	"strings"

	"github.com/jonwraymond/shapewire/leaf"
)

// NodeKind discriminates the Node variants.
type NodeKind int

const (
	// KindPrimitive is a leaf position consuming exactly one value slot.
	KindPrimitive NodeKind = iota
	// KindObject is a keyed container with one child shape per field.
	KindObject
	// KindArray is a heterogeneous sequence with one child shape per index.
	KindArray
	// KindHomogeneous is a sequence whose elements all share one object
	// shape, stored once and replayed Length times.
	KindHomogeneous
)

// SpecialValue is the primitive kind recorded for rich scalar leaves
// (timestamps, pair collections, element collections, error values). The
// shape engine never recurses into them.
const SpecialValue = leaf.Kind("special")

// Node is one position in a shape tree. Nodes are immutable once built and
// hold structural metadata only, never values.
type Node struct {
	Kind NodeKind

	// Primitive is the value kind for KindPrimitive nodes.
	Primitive leaf.Kind

	// Signature is the shallow memoization key for KindObject nodes, and the
	// shared element signature for KindHomogeneous nodes.
	Signature string

	// Fields maps field names to child shapes for KindObject nodes. Fields
	// are always replayed in ascending key order, never insertion order.
	Fields map[string]*Node

	// Items holds per-index child shapes for KindArray nodes.
	Items []*Node

	// Item is the shared element shape for KindHomogeneous nodes.
	Item *Node

	// Length is the element count for KindHomogeneous nodes.
	Length int
}

// Primitive returns a primitive leaf node of the given kind.
func Primitive(kind leaf.Kind) *Node {
	return &Node{Kind: KindPrimitive, Primitive: kind}
}

// SortedKeys returns the node's field names in ascending order. Only
// meaningful for KindObject nodes.
func (n *Node) SortedKeys() []string {
	keys := make([]string, 0, len(n.Fields))
	for k := range n.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LeafCount returns how many slots of a flat value sequence this shape
// consumes.
func (n *Node) LeafCount() int {
	switch n.Kind {
	case KindPrimitive:
		return 1
	case KindObject:
		total := 0
		for _, child := range n.Fields {
			total += child.LeafCount()
		}
		return total
	case KindArray:
		total := 0
		for _, child := range n.Items {
			total += child.LeafCount()
		}
		return total
	case KindHomogeneous:
		return n.Length * n.Item.LeafCount()
	default:
		return 0
	}
}

// SignatureOf computes the shallow signature of an object value: its keys
// sorted ascending, each rendered as key:kind, joined by "|". The signature
// intentionally does not encode structure below one level, so objects with
// identical top-level layouts but divergent nested shapes collapse to the
// same signature.
func SignatureOf(obj map[string]any) string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(k)
		sb.WriteByte(':')
		sb.WriteString(string(leaf.KindOf(obj[k])))
	}
	return sb.String()
}

// Definition pairs a shape with the structure identifier assigned by the
// identity service. The ID is derived from the raw value, not the shape, and
// is opaque to the codec.
type Definition struct {
	Shape *Node
	ID    string
}
