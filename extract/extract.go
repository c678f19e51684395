package extract

import "sort"

// Extract flattens a value into its ordered leaf sequence. Primitive and
// rich scalar values are appended in their native in-memory form; tag
// wrapping for the wire happens later.
func Extract(v any) []any {
	return appendLeaves(nil, v)
}

func appendLeaves(out []any, v any) []any {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = appendLeaves(out, val[k])
		}
		return out
	case []any:
		for _, item := range val {
			out = appendLeaves(out, item)
		}
		return out
	default:
		return append(out, v)
	}
}
