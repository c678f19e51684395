package shape

import (
	"sort"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/shapewire/leaf"
)

// Cache memoizes object shapes by shallow signature. Satisfied by
// cache.Manager instantiated over *Node.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Lookup never errors; it reports (zero, false) on miss.
type Cache interface {
	// Lookup returns the cached shape for a signature, bumping its recency.
	Lookup(signature string) (*Node, bool)

	// Store caches a shape under its signature.
	Store(signature string, node *Node)
}

// Engine infers shape trees from values. It is an owned handle around a
// shape cache; concurrent inference of the same signature is collapsed into
// a single build.
type Engine struct {
	cache Cache
	group singleflight.Group
}

// NewEngine creates an Engine backed by the given cache. A nil cache
// disables memoization: every object shape is rebuilt from scratch.
func NewEngine(c Cache) *Engine {
	return &Engine{cache: c}
}

// Infer returns the shape of a value. Arrays receive one child shape per
// element; objects are memoized by shallow signature. Inputs containing
// cycles are out of contract and will not terminate.
func (e *Engine) Infer(v any) *Node {
	return e.infer(v, false)
}

// InferOptimized is Infer with homogeneous-array detection: an array whose
// elements are all non-array objects sharing one shallow signature collapses
// to a single shared item shape replayed once per element.
func (e *Engine) InferOptimized(v any) *Node {
	return e.infer(v, true)
}

func (e *Engine) infer(v any, optimized bool) *Node {
	switch val := v.(type) {
	case nil:
		return Primitive(leaf.KindNull)
	case map[string]any:
		return e.inferObject(val, optimized)
	case []any:
		return e.inferArray(val, optimized)
	default:
		if leaf.IsRich(v) {
			return Primitive(SpecialValue)
		}
		return Primitive(leaf.KindOf(v))
	}
}

func (e *Engine) inferArray(items []any, optimized bool) *Node {
	if optimized {
		if sig, ok := homogeneousSignature(items); ok {
			item := e.inferObject(items[0].(map[string]any), optimized)
			return &Node{
				Kind:      KindHomogeneous,
				Signature: sig,
				Item:      item,
				Length:    len(items),
			}
		}
	}

	children := make([]*Node, len(items))
	for i, item := range items {
		children[i] = e.infer(item, optimized)
	}
	return &Node{Kind: KindArray, Items: children}
}

// inferObject memoizes by shallow signature. On a hit the cached node is
// returned without recursing into the new value's contents; a shallow
// collision between objects with divergent nested shapes therefore reuses
// the first-seen deep shape (documented constraint on input homogeneity).
func (e *Engine) inferObject(obj map[string]any, optimized bool) *Node {
	sig := SignatureOf(obj)

	if e.cache == nil {
		return e.buildObject(obj, sig, optimized)
	}
	if node, ok := e.cache.Lookup(sig); ok {
		return node
	}

	built, _, _ := e.group.Do(sig, func() (any, error) {
		if node, ok := e.cache.Lookup(sig); ok {
			return node, nil
		}
		node := e.buildObject(obj, sig, optimized)
		e.cache.Store(sig, node)
		return node, nil
	})
	return built.(*Node)
}

func (e *Engine) buildObject(obj map[string]any, sig string, optimized bool) *Node {
	fields := make(map[string]*Node, len(obj))
	for _, k := range sortedObjectKeys(obj) {
		fields[k] = e.infer(obj[k], optimized)
	}
	return &Node{Kind: KindObject, Signature: sig, Fields: fields}
}

// homogeneousSignature reports whether every element is a non-array object
// and all elements share one shallow signature.
func homogeneousSignature(items []any) (string, bool) {
	if len(items) == 0 {
		return "", false
	}
	var sig string
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return "", false
		}
		s := SignatureOf(obj)
		if i == 0 {
			sig = s
		} else if s != sig {
			return "", false
		}
	}
	return sig, true
}

func sortedObjectKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
