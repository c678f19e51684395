package rebuild

import (
	"fmt"

	"github.com/jonwraymond/shapewire/shape"
)

// LayoutMemoStrategy is recursive descent with a per-call layout cache: the
// sorted field list of each distinct object node is computed once and reused
// across all repetitions of that node within the call.
type LayoutMemoStrategy struct{}

// NewLayoutMemo creates a layout-memoized strategy.
func NewLayoutMemo() *LayoutMemoStrategy { return &LayoutMemoStrategy{} }

// Name returns the strategy name.
func (s *LayoutMemoStrategy) Name() Name { return LayoutMemo }

// Reconstruct rebuilds a value, memoizing object layouts per shape node.
func (s *LayoutMemoStrategy) Reconstruct(values []any, node *shape.Node) (any, error) {
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

func (s *LayoutMemoStrategy) node(c *cursor, n *shape.Node, layouts map[*shape.Node][]string) (any, error) {
	switch n.Kind {
	case shape.KindPrimitive:
		return c.next()
	case shape.KindObject:
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
	case shape.KindArray:
		arr := make([]any, 0, len(n.Items))
		for _, item := range n.Items {
			v, err := s.node(c, item, layouts)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case shape.KindHomogeneous:
		arr := make([]any, 0, n.Length)
		for i := 0; i < n.Length; i++ {
			v, err := s.node(c, n.Item, layouts)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("rebuild: unknown shape node kind %d", n.Kind)
	}
}

var _ Strategy = (*LayoutMemoStrategy)(nil)
