package rebuild

import (
	"fmt"

	"github.com/jonwraymond/shapewire/shape"
)

// BaselineStrategy is plain recursive descent. Object key lists are re-sorted
// at every node visit; nothing is cached between or within calls.
type BaselineStrategy struct{}

// NewBaseline creates a baseline strategy.
func NewBaseline() *BaselineStrategy { return &BaselineStrategy{} }

// Name returns the strategy name.
func (s *BaselineStrategy) Name() Name { return Baseline }

// Reconstruct rebuilds a value by straightforward recursion over the shape.
func (s *BaselineStrategy) Reconstruct(values []any, node *shape.Node) (any, error) {
	if node == nil {
		return nil, ErrNilShape
	}
	c := &cursor{values: values}
	v, err := s.node(c, node)
	if err != nil {
		return nil, err
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *BaselineStrategy) node(c *cursor, n *shape.Node) (any, error) {
	switch n.Kind {
	case shape.KindPrimitive:
		return c.next()
	case shape.KindObject:
		obj := make(map[string]any, len(n.Fields))
		for _, k := range n.SortedKeys() {
			v, err := s.node(c, n.Fields[k])
			if err != nil {
				return nil, err
			}
			obj[k] = v
		}
		return obj, nil
	case shape.KindArray:
		arr := make([]any, 0, len(n.Items))
		for _, item := range n.Items {
			v, err := s.node(c, item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case shape.KindHomogeneous:
		arr := make([]any, 0, n.Length)
		for i := 0; i < n.Length; i++ {
			v, err := s.node(c, n.Item)
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

var _ Strategy = (*BaselineStrategy)(nil)
