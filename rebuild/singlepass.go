package rebuild

import (
	"fmt"

	"github.com/jonwraymond/shapewire/shape"
)

// SinglePassStrategy layers two optimizations on layout memoization: result
// arrays are pre-allocated to their known lengths and assigned by index, and
// homogeneous arrays run a specialized loop that dispatches on the item
// shape once instead of once per element.
type SinglePassStrategy struct{}

// NewSinglePass creates a single-pass strategy.
func NewSinglePass() *SinglePassStrategy { return &SinglePassStrategy{} }

// Name returns the strategy name.
func (s *SinglePassStrategy) Name() Name { return SinglePass }

// Reconstruct rebuilds a value with pre-sized allocations.
func (s *SinglePassStrategy) Reconstruct(values []any, node *shape.Node) (any, error) {
	if node == nil {
		return nil, ErrNilShape
	}
	c := &cursor{values: values}
	layouts := make(map[*shape.Node][]string)
	v, err := s.node(c, node, layouts)
	if err != nil {
		return nil, err
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *SinglePassStrategy) node(c *cursor, n *shape.Node, layouts map[*shape.Node][]string) (any, error) {
	switch n.Kind {
	case shape.KindPrimitive:
		return c.next()
	case shape.KindObject:
		return s.object(c, n, layouts)
	case shape.KindArray:
		arr := make([]any, len(n.Items))
		for i, item := range n.Items {
			v, err := s.node(c, item, layouts)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case shape.KindHomogeneous:
		return s.homogeneous(c, n, layouts)
	default:
		return nil, fmt.Errorf("rebuild: unknown shape node kind %d", n.Kind)
	}
}

func (s *SinglePassStrategy) object(c *cursor, n *shape.Node, layouts map[*shape.Node][]string) (map[string]any, error) {
	keys, ok := layouts[n]
	if !ok {
		keys = n.SortedKeys()
		layouts[n] = keys
	}
	obj := make(map[string]any, len(keys))
	for _, k := range keys {
		v, err := s.node(c, n.Fields[k], layouts)
		if err != nil {
			return nil, err
		}
		obj[k] = v
	}
	return obj, nil
}

// homogeneous replays the single item shape Length times. The common case of
// an object item skips per-element kind dispatch: the layout is resolved
// once and each element goes straight to field assembly.
func (s *SinglePassStrategy) homogeneous(c *cursor, n *shape.Node, layouts map[*shape.Node][]string) ([]any, error) {
	arr := make([]any, n.Length)

	if n.Item.Kind == shape.KindObject {
		for i := 0; i < n.Length; i++ {
			obj, err := s.object(c, n.Item, layouts)
			if err != nil {
				return nil, err
			}
			arr[i] = obj
		}
		return arr, nil
	}

	for i := 0; i < n.Length; i++ {
		v, err := s.node(c, n.Item, layouts)
		if err != nil {
			return nil, err
		}
		arr[i] = v
	}
	return arr, nil
}

var _ Strategy = (*SinglePassStrategy)(nil)
