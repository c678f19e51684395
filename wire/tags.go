package wire

import (
	"time"

	"github.com/jonwraymond/shapewire/leaf"
)

// Wire object keys for tagged rich scalars. Fixed by the packet format.
const (
	TagKey   = "__type"
	ValueKey = "value"
)

// Tag names for the rich scalar types. The set is closed; anything else
// found under TagKey passes through untouched.
const (
	TagDate  = "Date"
	TagMap   = "Map"
	TagSet   = "Set"
	TagError = "Error"
)

// dateLayout matches the millisecond-precision ISO-8601 form emitted by
// other packet implementations.
const dateLayout = "2006-01-02T15:04:05.000Z07:00"

// MarshalLeaves converts a flat leaf sequence to its wire form. Plain
// primitives pass through; rich scalars become tagged objects.
func MarshalLeaves(values []any) []any {
	if values == nil {
		return nil
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = MarshalLeaf(v)
	}
	return out
}

// MarshalLeaf converts one leaf value to its wire form.
func MarshalLeaf(v any) any {
	switch val := v.(type) {
	case time.Time:
		return tagged(TagDate, val.UTC().Format(dateLayout))

	case *leaf.Map:
		pairs := val.Pairs()
		payload := make([]any, len(pairs))
		for i, p := range pairs {
			payload[i] = []any{MarshalLeaf(p.Key), MarshalLeaf(p.Value)}
		}
		return tagged(TagMap, payload)

	case *leaf.Set:
		elems := val.Elems()
		payload := make([]any, len(elems))
		for i, e := range elems {
			payload[i] = MarshalLeaf(e)
		}
		return tagged(TagSet, payload)

	case *leaf.Error:
		return tagged(TagError, map[string]any{
			"message": val.Message,
			"name":    val.Name,
			"stack":   val.Stack,
		})

	case leaf.Undefined:
		// The shape records the undefined kind; the slot itself travels
		// as null.
		return nil

	default:
		return v
	}
}

func tagged(tag string, payload any) map[string]any {
	return map[string]any{TagKey: tag, ValueKey: payload}
}

// Unmarshal walks a reconstructed tree and revives tagged wire objects into
// their in-memory rich types. Containers are rewritten in place where
// possible; tagged objects with unknown tags are returned unchanged.
func Unmarshal(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if tag, ok := val[TagKey].(string); ok {
			if revived, ok := reviveTagged(tag, val[ValueKey]); ok {
				return revived
			}
			return val
		}
		for k, child := range val {
			val[k] = Unmarshal(child)
		}
		return val

	case []any:
		for i, child := range val {
			val[i] = Unmarshal(child)
		}
		return val

	default:
		return v
	}
}

func reviveTagged(tag string, payload any) (any, bool) {
	switch tag {
	case TagDate:
		s, ok := payload.(string)
		if !ok {
			return nil, false
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, false
		}
		return t, true

	case TagMap:
		entries, ok := payload.([]any)
		if !ok {
			return nil, false
		}
		m := leaf.NewMap()
		for _, e := range entries {
			pair, ok := e.([]any)
			if !ok || len(pair) != 2 {
				return nil, false
			}
			m.Set(Unmarshal(pair[0]), Unmarshal(pair[1]))
		}
		return m, true

	case TagSet:
		elems, ok := payload.([]any)
		if !ok {
			return nil, false
		}
		s := leaf.NewSet()
		for _, e := range elems {
			s.Add(Unmarshal(e))
		}
		return s, true

	case TagError:
		fields, ok := payload.(map[string]any)
		if !ok {
			return nil, false
		}
		e := &leaf.Error{}
		if msg, ok := fields["message"].(string); ok {
			e.Message = msg
		}
		if name, ok := fields["name"].(string); ok {
			e.Name = name
		}
		if stack, ok := fields["stack"].(string); ok {
			e.Stack = stack
		}
		return e, true

	default:
		return nil, false
	}
}
