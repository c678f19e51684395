package rebuild

import (
	"fmt"

	"github.com/jonwraymond/shapewire/observe"
	"github.com/jonwraymond/shapewire/shape"
)

// Stats summarizes one shape tree for strategy selection.
type Stats struct {
	// Complexity sums field counts for objects, item counts for arrays, and
	// a tenth of the item count for homogeneous arrays (their shared shape
	// makes repeated items nearly free).
	Complexity float64

	// Depth is the maximum nesting level.
	Depth int

	// ArrayCount counts heterogeneous array nodes.
	ArrayCount int

	// HomogeneousCount counts homogeneous array nodes.
	HomogeneousCount int

	// TotalArrayItems sums item counts across both array kinds.
	TotalArrayItems int

	// ObjectCount counts object nodes.
	ObjectCount int

	// HasExternalOrdering is true iff the external key registry is
	// non-empty.
	HasExternalOrdering bool
}

// Analyze walks a shape tree once and gathers the selector's statistics.
func Analyze(node *shape.Node, externalOrdering bool) Stats {
	st := Stats{HasExternalOrdering: externalOrdering}
	if node != nil {
		st.Depth = analyze(node, &st)
	}
	return st
}

func analyze(n *shape.Node, st *Stats) int {
	switch n.Kind {
	case shape.KindObject:
		st.ObjectCount++
		st.Complexity += float64(len(n.Fields))
		max := 0
		for _, child := range n.Fields {
			if d := analyze(child, st); d > max {
				max = d
			}
		}
		return max + 1
	case shape.KindArray:
		st.ArrayCount++
		st.Complexity += float64(len(n.Items))
		st.TotalArrayItems += len(n.Items)
		max := 0
		for _, child := range n.Items {
			if d := analyze(child, st); d > max {
				max = d
			}
		}
		return max + 1
	case shape.KindHomogeneous:
		st.HomogeneousCount++
		st.Complexity += float64(n.Length) * 0.1
		st.TotalArrayItems += n.Length
		return analyze(n.Item, st) + 1
	default:
		return 1
	}
}

// Thresholds are the selector's tuning constants, kept as data so they can
// be adjusted and tested independently of the algorithms.
type Thresholds struct {
	SimpleMaxComplexity      float64
	SimpleMaxDepth           int
	SimpleMaxValues          int
	ExternalMinComplexity    float64
	HomogeneousMinItems      int
	DeepMinDepth             int
	ArrayHeavyMinObjects     int
	ObjectHeavyMinObjects    int
	ObjectHeavyMinComplexity float64
	PlanMinValues            int
}

// DefaultThresholds returns the stock selector tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SimpleMaxComplexity:      5,
		SimpleMaxDepth:           2,
		SimpleMaxValues:          20,
		ExternalMinComplexity:    3,
		HomogeneousMinItems:      10,
		DeepMinDepth:             2,
		ArrayHeavyMinObjects:     3,
		ObjectHeavyMinObjects:    2,
		ObjectHeavyMinComplexity: 8,
		PlanMinValues:            1000,
	}
}

// Select picks the fastest contract-equivalent strategy for a shape. Rules
// apply in order; the first match wins.
func Select(st Stats, valuesLen int, th Thresholds) Name {
	switch {
	case st.Complexity <= th.SimpleMaxComplexity &&
		st.Depth <= th.SimpleMaxDepth &&
		st.ArrayCount == 0 &&
		valuesLen <= th.SimpleMaxValues:
		return Baseline
	case st.HasExternalOrdering &&
		st.ObjectCount > 0 &&
		st.Complexity > th.ExternalMinComplexity:
		return ExternalOrder
	case st.HomogeneousCount > 0 && st.TotalArrayItems > th.HomogeneousMinItems:
		return SinglePass
	case st.Depth > th.DeepMinDepth ||
		(st.ArrayCount > 0 && st.ObjectCount > th.ArrayHeavyMinObjects):
		return SinglePass
	case st.ObjectCount > th.ObjectHeavyMinObjects &&
		st.Complexity > th.ObjectHeavyMinComplexity:
		return SinglePass
	case valuesLen > th.PlanMinValues && st.HomogeneousCount > 0:
		return Planned
	default:
		return Baseline
	}
}

// ForName returns a strategy instance for a name. Ranks feed the
// external-order strategy; logger receives planned-fallback warnings.
func ForName(name Name, ranks map[string]int, logger observe.Logger) (Strategy, error) {
	switch name {
	case Baseline:
		return NewBaseline(), nil
	case LayoutMemo:
		return NewLayoutMemo(), nil
	case SinglePass:
		return NewSinglePass(), nil
	case ExternalOrder:
		return NewExternalOrder(ranks), nil
	case Planned:
		return NewPlanned(nil, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
