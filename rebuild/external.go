package rebuild

import (
	"fmt"
	"sort"

	"github.com/jonwraymond/shapewire/shape"
)

// ExternalOrderStrategy is layout memoization with field assembly driven by
// the key-order cache: object fields are built in ascending registry rank,
// with lexicographic order as the fallback for keys absent from the rank
// table. Because each field's leaf span within the flat sequence is known
// from the shape, fields can be assembled in any order without disturbing
// the extraction-order contract.
type ExternalOrderStrategy struct {
	ranks map[string]int
}

// NewExternalOrder creates an externally-ordered strategy over the given
// rank table. A nil or empty table degrades to pure lexicographic order.
func NewExternalOrder(ranks map[string]int) *ExternalOrderStrategy {
	return &ExternalOrderStrategy{ranks: ranks}
}

// Name returns the strategy name.
func (s *ExternalOrderStrategy) Name() Name { return ExternalOrder }

// extLayout is the per-node assembly plan: leaf offsets are computed against
// ascending key order (the extraction order), assembly follows rank order.
type extLayout struct {
	ordered   []string
	offsets   map[string]int
	leafTotal int
}

// Reconstruct rebuilds a value assembling object fields in rank order.
func (s *ExternalOrderStrategy) Reconstruct(values []any, node *shape.Node) (any, error) {
	if node == nil {
		return nil, ErrNilShape
	}
	c := &cursor{values: values}
	layouts := make(map[*shape.Node]*extLayout)
	v, err := s.node(c, node, layouts)
	if err != nil {
		return nil, err
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *ExternalOrderStrategy) node(c *cursor, n *shape.Node, layouts map[*shape.Node]*extLayout) (any, error) {
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
		arr := make([]any, n.Length)
		for i := 0; i < n.Length; i++ {
			v, err := s.node(c, n.Item, layouts)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("rebuild: unknown shape node kind %d", n.Kind)
	}
}

func (s *ExternalOrderStrategy) object(c *cursor, n *shape.Node, layouts map[*shape.Node]*extLayout) (map[string]any, error) {
	lay, ok := layouts[n]
	if !ok {
		lay = s.layout(n)
		layouts[n] = lay
	}

	if c.pos+lay.leafTotal > len(c.values) {
		return nil, fmt.Errorf("%w: shape needs more than %d leaves", ErrValueCount, len(c.values))
	}

	base := c.pos
	obj := make(map[string]any, len(lay.ordered))
	for _, k := range lay.ordered {
		sub := &cursor{values: c.values, pos: base + lay.offsets[k]}
		v, err := s.node(sub, n.Fields[k], layouts)
		if err != nil {
			return nil, err
		}
		obj[k] = v
	}
	c.pos = base + lay.leafTotal
	return obj, nil
}

func (s *ExternalOrderStrategy) layout(n *shape.Node) *extLayout {
	asc := n.SortedKeys()

	offsets := make(map[string]int, len(asc))
	total := 0
	for _, k := range asc {
		offsets[k] = total
		total += n.Fields[k].LeafCount()
	}

	ordered := make([]string, len(asc))
	copy(ordered, asc)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, iok := s.ranks[ordered[i]]
		rj, jok := s.ranks[ordered[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		default:
			return ordered[i] < ordered[j]
		}
	})

	return &extLayout{ordered: ordered, offsets: offsets, leafTotal: total}
}

var _ Strategy = (*ExternalOrderStrategy)(nil)
