package rebuild

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonwraymond/shapewire/observe"
	"github.com/jonwraymond/shapewire/shape"
)

// PlannedStrategy compiles each distinct shape tree into a linear plan (a
// sequence of copy-leaf / open-object / open-array / close instructions)
// once, then replays it with a tight interpreter loop. The compile cost
// amortizes over many repeated decodes of the same shape. Any compile or
// execution failure falls back to single-pass reconstruction, surfacing a
// warning but never failing the decode.
type PlannedStrategy struct {
	mu         sync.Mutex
	plans      map[*shape.Node]*plan
	fallback   Strategy
	logger     observe.Logger
	onFallback func()
}

// OnFallback registers fn to run whenever reconstruction falls back to the
// fallback strategy.
func (s *PlannedStrategy) OnFallback(fn func()) { s.onFallback = fn }

// NewPlanned creates a planned strategy. A nil fallback defaults to
// single-pass; a nil logger silences fallback warnings.
func NewPlanned(fallback Strategy, logger observe.Logger) *PlannedStrategy {
	if fallback == nil {
		fallback = NewSinglePass()
	}
	return &PlannedStrategy{
		plans:    make(map[*shape.Node]*plan),
		fallback: fallback,
		logger:   logger,
	}
}

// Name returns the strategy name.
func (s *PlannedStrategy) Name() Name { return Planned }

// Reconstruct compiles (or reuses) the plan for the shape and interprets it.
func (s *PlannedStrategy) Reconstruct(values []any, node *shape.Node) (v any, err error) {
	if node == nil {
		return nil, ErrNilShape
	}

	defer func() {
		if r := recover(); r != nil {
			s.warn("plan execution panicked", fmt.Errorf("%v", r))
			s.fallbackUsed()
			v, err = s.fallback.Reconstruct(values, node)
		}
	}()

	p, buildErr := s.plan(node)
	if buildErr != nil {
		s.warn("plan compilation failed", buildErr)
		s.fallbackUsed()
		return s.fallback.Reconstruct(values, node)
	}
	return p.exec(values)
}

func (s *PlannedStrategy) plan(node *shape.Node) (*plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.plans[node]; ok {
		return p, nil
	}
	p, err := buildPlan(node)
	if err != nil {
		return nil, err
	}
	s.plans[node] = p
	return p, nil
}

func (s *PlannedStrategy) warn(msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(context.Background(), msg,
		observe.Field{Key: "strategy", Value: string(Planned)},
		observe.Field{Key: "reason", Value: err.Error()},
	)
}

func (s *PlannedStrategy) fallbackUsed() {
	if s.onFallback != nil {
		s.onFallback()
	}
}

var _ Strategy = (*PlannedStrategy)(nil)

type planOp uint8

const (
	opLeaf planOp = iota
	opOpenObject
	opOpenArray
	opClose
	opRepeat
	opEndRepeat
)

type planInstr struct {
	op   planOp
	keys []string // opOpenObject: fields in ascending key order
	n    int      // opOpenArray: length; opRepeat: iteration count
	skip int      // opRepeat: pc just past the matching opEndRepeat
}

type plan struct {
	instrs []planInstr
}

func buildPlan(node *shape.Node) (*plan, error) {
	p := &plan{}
	if err := p.emit(node); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *plan) emit(n *shape.Node) error {
	switch n.Kind {
	case shape.KindPrimitive:
		p.instrs = append(p.instrs, planInstr{op: opLeaf})
		return nil
	case shape.KindObject:
		keys := n.SortedKeys()
		p.instrs = append(p.instrs, planInstr{op: opOpenObject, keys: keys})
		for _, k := range keys {
			if err := p.emit(n.Fields[k]); err != nil {
				return err
			}
		}
		p.instrs = append(p.instrs, planInstr{op: opClose})
		return nil
	case shape.KindArray:
		p.instrs = append(p.instrs, planInstr{op: opOpenArray, n: len(n.Items)})
		for _, item := range n.Items {
			if err := p.emit(item); err != nil {
				return err
			}
		}
		p.instrs = append(p.instrs, planInstr{op: opClose})
		return nil
	case shape.KindHomogeneous:
		if n.Item == nil {
			return fmt.Errorf("%w: homogeneous node without item shape", ErrPlanBuild)
		}
		p.instrs = append(p.instrs, planInstr{op: opOpenArray, n: n.Length})
		rep := len(p.instrs)
		p.instrs = append(p.instrs, planInstr{op: opRepeat, n: n.Length})
		if err := p.emit(n.Item); err != nil {
			return err
		}
		p.instrs = append(p.instrs, planInstr{op: opEndRepeat})
		p.instrs[rep].skip = len(p.instrs)
		p.instrs = append(p.instrs, planInstr{op: opClose})
		return nil
	default:
		return fmt.Errorf("%w: unknown node kind %d", ErrPlanBuild, n.Kind)
	}
}

// planFrame is one open container during interpretation.
type planFrame struct {
	obj  map[string]any
	arr  []any
	keys []string
	next int
}

type repeatFrame struct {
	start     int
	remaining int
}

func (p *plan) exec(values []any) (any, error) {
	c := &cursor{values: values}

	var (
		stack  []planFrame
		reps   []repeatFrame
		result any
	)

	attach := func(v any) {
		if len(stack) == 0 {
			result = v
			return
		}
		f := &stack[len(stack)-1]
		if f.obj != nil {
			f.obj[f.keys[f.next]] = v
		} else {
			f.arr[f.next] = v
		}
		f.next++
	}

	for pc := 0; pc < len(p.instrs); pc++ {
		in := p.instrs[pc]
		switch in.op {
		case opLeaf:
			v, err := c.next()
			if err != nil {
				return nil, err
			}
			attach(v)
		case opOpenObject:
			stack = append(stack, planFrame{obj: make(map[string]any, len(in.keys)), keys: in.keys})
		case opOpenArray:
			stack = append(stack, planFrame{arr: make([]any, in.n)})
		case opClose:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if f.obj != nil {
				attach(f.obj)
			} else {
				attach(f.arr)
			}
		case opRepeat:
			if in.n <= 0 {
				pc = in.skip - 1 // loop counter advances past opEndRepeat
				continue
			}
			reps = append(reps, repeatFrame{start: pc, remaining: in.n})
		case opEndRepeat:
			r := &reps[len(reps)-1]
			r.remaining--
			if r.remaining > 0 {
				pc = r.start
			} else {
				reps = reps[:len(reps)-1]
			}
		}
	}

	if err := c.finish(); err != nil {
		return nil, err
	}
	return result, nil
}
