package extract

import (
	"reflect"
	"testing"
	"time"

	"github.com/jonwraymond/shapewire/leaf"
)

func TestExtract_KeyOrder(t *testing.T) {
	v := map[string]any{
		"zeta":  1,
		"alpha": 2,
		"mid":   3,
	}
	got := Extract(v)
	want := []any{2, 3, 1} // ascending key order: alpha, mid, zeta
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestExtract_Nested(t *testing.T) {
	v := map[string]any{
		"b": []any{10, map[string]any{"y": 2, "x": 1}},
		"a": "first",
	}
	got := Extract(v)
	want := []any{"first", 10, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestExtract_RichLeavesKeptNative(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	v := map[string]any{
		"t": ts,
		"m": leaf.NewMap(leaf.Pair{Key: "k", Value: 1}),
		"e": &leaf.Error{Message: "boom"},
	}
	got := Extract(v)
	if len(got) != 3 {
		t.Fatalf("Extract produced %d leaves, want 3", len(got))
	}
	// e, m, t in key order
	if _, ok := got[0].(*leaf.Error); !ok {
		t.Errorf("leaf 0 = %T, want *leaf.Error", got[0])
	}
	if _, ok := got[1].(*leaf.Map); !ok {
		t.Errorf("leaf 1 = %T, want *leaf.Map", got[1])
	}
	if got[2] != ts {
		t.Errorf("leaf 2 = %v, want the native timestamp", got[2])
	}
}

func TestExtract_ScalarRoot(t *testing.T) {
	got := Extract("solo")
	if len(got) != 1 || got[0] != "solo" {
		t.Errorf("Extract(scalar) = %v, want [solo]", got)
	}

	got = Extract(nil)
	if len(got) != 1 || got[0] != nil {
		t.Errorf("Extract(nil) = %v, want [nil]", got)
	}
}

func TestPaths_MatchExtract(t *testing.T) {
	sample := map[string]any{
		"name": "alice",
		"pets": []any{
			map[string]any{"kind": "cat", "age": 3},
			map[string]any{"kind": "dog", "age": 5},
		},
		"active": true,
	}

	paths := Paths(sample)
	if len(paths) != 6 {
		t.Fatalf("Paths produced %d paths, want 6", len(paths))
	}

	// Same value: byte-identical output.
	if got, want := ByPaths(sample, paths), Extract(sample); !reflect.DeepEqual(got, want) {
		t.Errorf("ByPaths = %v, want %v", got, want)
	}

	// Different values, same shape: still identical to traversal.
	other := map[string]any{
		"name": "bob",
		"pets": []any{
			map[string]any{"kind": "fish", "age": 1},
			map[string]any{"kind": "bird", "age": 2},
		},
		"active": false,
	}
	if got, want := ByPaths(other, paths), Extract(other); !reflect.DeepEqual(got, want) {
		t.Errorf("ByPaths on same-shape value = %v, want %v", got, want)
	}
}

func TestByPaths_UnresolvableStepsYieldNil(t *testing.T) {
	paths := Paths(map[string]any{"a": map[string]any{"b": 1}})
	got := ByPaths(map[string]any{"a": "flat"}, paths)
	if len(got) != 1 || got[0] != nil {
		t.Errorf("ByPaths on mismatched value = %v, want [nil]", got)
	}
}

func TestPaths_Steps(t *testing.T) {
	paths := Paths(map[string]any{"xs": []any{true}})
	if len(paths) != 1 {
		t.Fatalf("Paths produced %d paths, want 1", len(paths))
	}
	p := paths[0]
	if len(p) != 2 || !p[0].IsKey || p[0].Key != "xs" || p[1].IsKey || p[1].Index != 0 {
		t.Errorf("path = %+v, want [Field(xs) Index(0)]", p)
	}
}
