package identity

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/jonwraymond/shapewire/leaf"
)

// Local is an in-process identity service. IDs are xxhash digests of a deep
// canonical description of the value's structure; the registry records every
// object key it has seen, in first-registration order.
type Local struct {
	mu         sync.Mutex
	described  map[string]string // ID -> canonical description
	collisions map[string]int    // ID -> structures that collided on it
	keys       []string
	keyIndex   map[string]int
}

// NewLocal creates an empty local identity service.
func NewLocal() *Local {
	return &Local{
		described:  make(map[string]string),
		collisions: make(map[string]int),
		keyIndex:   make(map[string]int),
	}
}

// Describe returns the structure identity for a value, registering any
// object keys the value introduces.
func (l *Local) Describe(value any) (Info, error) {
	var sb strings.Builder
	depth := describeValue(&sb, value, 1)
	desc := sb.String()

	id := "s" + strconv.FormatUint(xxhash.Sum64String(desc), 16)

	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.described[id]; ok {
		if prev != desc {
			l.collisions[id]++
		}
	} else {
		l.described[id] = desc
	}
	l.registerKeysLocked(value)

	return Info{
		ID:             id,
		Levels:         depth,
		CollisionCount: l.collisions[id],
	}, nil
}

// Len returns the number of registered keys.
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}

// Keys returns all registered keys in insertion order.
func (l *Local) Keys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.keys))
	copy(out, l.keys)
	return out
}

var (
	_ Service     = (*Local)(nil)
	_ KeyRegistry = (*Local)(nil)
)

// describeValue appends a deep canonical description of v and returns the
// maximum nesting depth reached. Object keys are visited in ascending order
// so structurally identical values describe identically.
func describeValue(sb *strings.Builder, v any, depth int) int {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		max := depth
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(k)
			sb.WriteByte(':')
			if d := describeValue(sb, val[k], depth+1); d > max {
				max = d
			}
		}
		sb.WriteByte('}')
		return max
	case []any:
		max := depth
		sb.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				sb.WriteByte(',')
			}
			if d := describeValue(sb, item, depth+1); d > max {
				max = d
			}
		}
		sb.WriteByte(']')
		return max
	default:
		sb.WriteString(string(leaf.KindOf(v)))
		return depth
	}
}

// registerKeysLocked records every object key in v that the registry has not
// seen yet, in ascending order per object so registration is deterministic.
func (l *Local) registerKeysLocked(v any) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, seen := l.keyIndex[k]; !seen {
				l.keyIndex[k] = len(l.keys)
				l.keys = append(l.keys, k)
			}
			l.registerKeysLocked(val[k])
		}
	case []any:
		for _, item := range val {
			l.registerKeysLocked(item)
		}
	}
}
