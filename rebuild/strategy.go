package rebuild

import (
	"fmt"

	"github.com/jonwraymond/shapewire/shape"
)

// Name identifies a reconstruction strategy.
type Name string

const (
	// Baseline is plain recursive descent with no memoization.
	Baseline Name = "baseline"
	// LayoutMemo caches sorted field lists per distinct shape node within
	// one call.
	LayoutMemo Name = "layout-memo"
	// SinglePass additionally pre-sizes result arrays and specializes the
	// homogeneous-array path.
	SinglePass Name = "single-pass"
	// ExternalOrder assigns object fields in key-registry rank order,
	// falling back to lexicographic order for unranked keys.
	ExternalOrder Name = "external-order"
	// Planned compiles a reconstruction plan per distinct shape and replays
	// it with a tight interpreter loop.
	Planned Name = "planned"
)

// Strategy rebuilds a value from a flat leaf sequence and a shape tree.
//
// Contract:
// - Order: leaves are consumed in exactly the order a matching extraction
//   produced them; object fields replay in ascending key order, array items
//   in index order, homogeneous items by repeating the item shape.
// - Errors: a leaf over- or under-consumption surfaces ErrValueCount; no
//   other failure is permitted for well-formed inputs.
type Strategy interface {
	Name() Name
	Reconstruct(values []any, node *shape.Node) (any, error)
}

// cursor walks a leaf sequence exactly once, left to right.
type cursor struct {
	values []any
	pos    int
}

func (c *cursor) next() (any, error) {
	if c.pos >= len(c.values) {
		return nil, fmt.Errorf("%w: shape needs more than %d leaves", ErrValueCount, len(c.values))
	}
	v := c.values[c.pos]
	c.pos++
	return v, nil
}

// finish verifies the shape consumed the whole sequence.
func (c *cursor) finish() error {
	if c.pos != len(c.values) {
		return fmt.Errorf("%w: consumed %d of %d leaves", ErrValueCount, c.pos, len(c.values))
	}
	return nil
}
