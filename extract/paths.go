package extract

import "sort"

// Step is one property access along a leaf path: either a field lookup or an
// array index.
type Step struct {
	Key   string
	Index int
	IsKey bool
}

// Field returns a step that descends into an object field.
func Field(key string) Step { return Step{Key: key, IsKey: true} }

// Index returns a step that descends into an array element.
func Index(i int) Step { return Step{Index: i} }

// Path is the access chain from a root value to one leaf.
type Path []Step

// Paths computes one path per leaf of a sample value, in extraction order.
// Computed once per shape and reused, it lets repeat extractions skip key
// sorting entirely.
func Paths(v any) []Path {
	return appendPaths(nil, nil, v)
}

func appendPaths(out []Path, prefix Path, v any) []Path {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = appendPaths(out, append(prefix, Field(k)), val[k])
		}
		return out
	case []any:
		for i, item := range val {
			out = appendPaths(out, append(prefix, Index(i)), item)
		}
		return out
	default:
		leafPath := make(Path, len(prefix))
		copy(leafPath, prefix)
		return append(out, leafPath)
	}
}

// ByPaths extracts leaves by direct path lookup instead of re-deriving key
// order. For a value matching the shape the paths were computed from, the
// result is identical to Extract. Leaves whose path no longer resolves are
// emitted as nil.
func ByPaths(v any, paths []Path) []any {
	out := make([]any, len(paths))
	for i, p := range paths {
		out[i] = resolve(v, p)
	}
	return out
}

func resolve(v any, p Path) any {
	cur := v
	for _, step := range p {
		if step.IsKey {
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = obj[step.Key]
			continue
		}
		arr, ok := cur.([]any)
		if !ok || step.Index < 0 || step.Index >= len(arr) {
			return nil
		}
		cur = arr[step.Index]
	}
	return cur
}
