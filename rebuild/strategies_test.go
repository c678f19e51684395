package rebuild

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jonwraymond/shapewire/extract"
	"github.com/jonwraymond/shapewire/observe"
	"github.com/jonwraymond/shapewire/shape"
)

func allStrategies(t *testing.T, ranks map[string]int) []Strategy {
	t.Helper()
	out := make([]Strategy, 0, 5)
	for _, name := range []Name{Baseline, LayoutMemo, SinglePass, ExternalOrder, Planned} {
		s, err := ForName(name, ranks, nil)
		if err != nil {
			t.Fatalf("ForName(%q) failed: %v", name, err)
		}
		out = append(out, s)
	}
	return out
}

// TestStrategies_SharedContract verifies every strategy rebuilds the same
// tree from the same (values, shape) pair, for plain and optimized shapes.
func TestStrategies_SharedContract(t *testing.T) {
	original := map[string]any{
		"user": map[string]any{
			"name":  "alice",
			"roles": []any{"admin", "ops"},
		},
		"records": []any{
			map[string]any{"id": 1, "ok": true},
			map[string]any{"id": 2, "ok": false},
		},
		"note": "hello",
	}

	values := extract.Extract(original)
	engine := shape.NewEngine(nil)

	shapes := map[string]*shape.Node{
		"plain":     engine.Infer(original),
		"optimized": engine.InferOptimized(original),
	}

	for label, node := range shapes {
		for _, s := range allStrategies(t, nil) {
			t.Run(label+"/"+string(s.Name()), func(t *testing.T) {
				got, err := s.Reconstruct(values, node)
				if err != nil {
					t.Fatalf("Reconstruct failed: %v", err)
				}
				if !reflect.DeepEqual(got, original) {
					t.Errorf("mismatch:\n got: %#v\nwant: %#v", got, original)
				}
			})
		}
	}
}

// TestStrategies_ValueCountMismatch verifies every strategy fails loudly on
// too few or too many values.
func TestStrategies_ValueCountMismatch(t *testing.T) {
	original := map[string]any{"a": 1, "b": 2, "c": 3}
	node := shape.NewEngine(nil).Infer(original)

	for _, s := range allStrategies(t, nil) {
		t.Run(string(s.Name()), func(t *testing.T) {
			if _, err := s.Reconstruct([]any{1}, node); !errors.Is(err, ErrValueCount) {
				t.Errorf("under-supply: expected ErrValueCount, got: %v", err)
			}
			if _, err := s.Reconstruct([]any{1, 2, 3, 4}, node); !errors.Is(err, ErrValueCount) {
				t.Errorf("over-supply: expected ErrValueCount, got: %v", err)
			}
		})
	}
}

// TestStrategies_NilShape verifies nil shapes are rejected.
func TestStrategies_NilShape(t *testing.T) {
	for _, s := range allStrategies(t, nil) {
		if _, err := s.Reconstruct(nil, nil); !errors.Is(err, ErrNilShape) {
			t.Errorf("%s: expected ErrNilShape, got: %v", s.Name(), err)
		}
	}
}

// TestExternalOrder_RankedAssembly verifies rank-ordered assembly produces
// the same tree as lexicographic assembly.
func TestExternalOrder_RankedAssembly(t *testing.T) {
	original := map[string]any{
		"zeta":  1,
		"alpha": map[string]any{"y": 2, "x": 3},
		"mid":   []any{4, 5},
	}
	values := extract.Extract(original)
	node := shape.NewEngine(nil).Infer(original)

	// Registry order deliberately disagrees with lexicographic order, and
	// "mid" is absent to exercise the fallback.
	ranks := map[string]int{"zeta": 0, "alpha": 1, "y": 2, "x": 3}

	got, err := NewExternalOrder(ranks).Reconstruct(values, node)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if !reflect.DeepEqual(got, original) {
		t.Errorf("mismatch:\n got: %#v\nwant: %#v", got, original)
	}
}

// TestPlanned_ReusesPlan verifies one plan is compiled per distinct shape.
func TestPlanned_ReusesPlan(t *testing.T) {
	original := map[string]any{"a": 1, "b": "x"}
	values := extract.Extract(original)
	node := shape.NewEngine(nil).Infer(original)

	s := NewPlanned(nil, nil)

	for i := 0; i < 3; i++ {
		got, err := s.Reconstruct(values, node)
		if err != nil {
			t.Fatalf("Reconstruct failed: %v", err)
		}
		if !reflect.DeepEqual(got, original) {
			t.Errorf("mismatch on call %d: %#v", i, got)
		}
	}

	if len(s.plans) != 1 {
		t.Errorf("expected 1 compiled plan, got %d", len(s.plans))
	}
}

// TestPlanned_Homogeneous verifies the repeat instructions replay the item
// shape the right number of times.
func TestPlanned_Homogeneous(t *testing.T) {
	original := []any{
		map[string]any{"n": 1},
		map[string]any{"n": 2},
		map[string]any{"n": 3},
	}
	values := extract.Extract(original)
	node := shape.NewEngine(nil).InferOptimized(original)

	if node.Kind != shape.KindHomogeneous {
		t.Fatalf("expected homogeneous shape, got kind %d", node.Kind)
	}

	got, err := NewPlanned(nil, nil).Reconstruct(values, node)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if !reflect.DeepEqual(got, original) {
		t.Errorf("mismatch:\n got: %#v\nwant: %#v", got, original)
	}
}

// fixedStrategy returns a canned value; used to observe fallback routing.
type fixedStrategy struct{ v any }

func (f *fixedStrategy) Name() Name { return SinglePass }
func (f *fixedStrategy) Reconstruct([]any, *shape.Node) (any, error) {
	return f.v, nil
}

// TestPlanned_FallbackOnBuildFailure verifies compile failures fall back with
// a warning instead of failing the decode.
func TestPlanned_FallbackOnBuildFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("warn", &buf)

	s := NewPlanned(&fixedStrategy{v: "fallback-result"}, logger)

	fallbacks := 0
	s.OnFallback(func() { fallbacks++ })

	bad := &shape.Node{Kind: shape.NodeKind(99)}
	got, err := s.Reconstruct(nil, bad)
	if err != nil {
		t.Fatalf("expected fallback to absorb the failure, got: %v", err)
	}
	if got != "fallback-result" {
		t.Errorf("expected fallback result, got %v", got)
	}
	if fallbacks != 1 {
		t.Errorf("expected 1 fallback, got %d", fallbacks)
	}
	if !strings.Contains(buf.String(), "plan compilation failed") {
		t.Errorf("expected warning in log output, got: %s", buf.String())
	}
}

// TestLayoutMemo_RepeatedNodes verifies memoization handles one shape node
// appearing many times in a single call.
func TestLayoutMemo_RepeatedNodes(t *testing.T) {
	original := []any{
		map[string]any{"k": "a", "v": 1},
		map[string]any{"k": "b", "v": 2},
	}
	values := extract.Extract(original)
	node := shape.NewEngine(nil).InferOptimized(original)

	got, err := NewLayoutMemo().Reconstruct(values, node)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if !reflect.DeepEqual(got, original) {
		t.Errorf("mismatch:\n got: %#v\nwant: %#v", got, original)
	}
}
