package cache

import (
	"math"
	"sort"
)

// Store is an LRU key/value store with immutable state: every operation that
// changes recency or contents returns a new snapshot instead of mutating the
// receiver. Snapshots are cheap at the bounded sizes the codec uses and make
// the store safe to reason about and trivial to test.
type Store[K comparable, V any] struct {
	entries map[K]storeEntry[V]
	maxSize int
	counter uint64
}

type storeEntry[V any] struct {
	value   V
	recency uint64
}

// Entry is one key/value pair exported for migration.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// StoreStats describes a snapshot of the store.
type StoreStats struct {
	Size          int
	MaxSize       int
	AccessCounter uint64
	// Utilization is Size/MaxSize as a rounded percentage.
	Utilization int
}

// NewStore creates an empty store bounded to maxSize entries. A bound of
// zero or less disables the store: every lookup misses and every insert is
// dropped.
func NewStore[K comparable, V any](maxSize int) *Store[K, V] {
	return &Store[K, V]{
		entries: map[K]storeEntry[V]{},
		maxSize: maxSize,
	}
}

// Get returns the value for key and a snapshot with that key's recency bumped
// to the next access counter value. On miss the receiver itself is returned
// unchanged.
func (s *Store[K, V]) Get(key K) (V, *Store[K, V], bool) {
	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, s, false
	}

	next := s.clone()
	next.counter++
	next.entries[key] = storeEntry[V]{value: e.value, recency: next.counter}
	return e.value, next, true
}

// Set returns a snapshot with key bound to value. An existing key is updated
// in place with bumped recency and no eviction; a new key evicts the least
// recently used entry first when the store is full.
func (s *Store[K, V]) Set(key K, value V) *Store[K, V] {
	if s.maxSize <= 0 {
		return s
	}

	next := s.clone()
	next.counter++

	if _, exists := next.entries[key]; !exists && len(next.entries) >= next.maxSize {
		next.evictOldest()
	}
	next.entries[key] = storeEntry[V]{value: value, recency: next.counter}
	return next
}

// Has reports whether key is present without touching recency.
func (s *Store[K, V]) Has(key K) bool {
	_, ok := s.entries[key]
	return ok
}

// Clear returns an empty snapshot with the same bound.
func (s *Store[K, V]) Clear() *Store[K, V] {
	return NewStore[K, V](s.maxSize)
}

// Len returns the number of entries.
func (s *Store[K, V]) Len() int { return len(s.entries) }

// MaxSize returns the configured bound.
func (s *Store[K, V]) MaxSize() int { return s.maxSize }

// Stats returns size, bound, access counter and utilization.
func (s *Store[K, V]) Stats() StoreStats {
	st := StoreStats{
		Size:          len(s.entries),
		MaxSize:       s.maxSize,
		AccessCounter: s.counter,
	}
	if s.maxSize > 0 {
		st.Utilization = int(math.Round(float64(st.Size) / float64(s.maxSize) * 100))
	}
	return st
}

// Entries returns all entries ordered by descending recency (most recently
// used first). The order is the input contract of Migrate.
func (s *Store[K, V]) Entries() []Entry[K, V] {
	type keyed struct {
		key     K
		recency uint64
	}
	order := make([]keyed, 0, len(s.entries))
	for k, e := range s.entries {
		order = append(order, keyed{key: k, recency: e.recency})
	}
	sort.Slice(order, func(i, j int) bool { return order[i].recency > order[j].recency })

	out := make([]Entry[K, V], len(order))
	for i, o := range order {
		out[i] = Entry[K, V]{Key: o.key, Value: s.entries[o.key].value}
	}
	return out
}

// Migrate builds a fresh store bounded to newMaxSize, re-inserting at most
// newMaxSize of the given entries in their given most-recent-first order.
// Recency counters restart from zero; relative order among migrated entries
// is preserved.
func Migrate[K comparable, V any](entries []Entry[K, V], newMaxSize int) *Store[K, V] {
	next := NewStore[K, V](newMaxSize)
	if newMaxSize <= 0 {
		return next
	}

	keep := entries
	if len(keep) > newMaxSize {
		keep = keep[:newMaxSize]
	}
	// Insert least-recent first so recency order matches the input order.
	for i := len(keep) - 1; i >= 0; i-- {
		next.counter++
		next.entries[keep[i].Key] = storeEntry[V]{value: keep[i].Value, recency: next.counter}
	}
	return next
}

func (s *Store[K, V]) clone() *Store[K, V] {
	next := &Store[K, V]{
		entries: make(map[K]storeEntry[V], len(s.entries)),
		maxSize: s.maxSize,
		counter: s.counter,
	}
	for k, e := range s.entries {
		next.entries[k] = e
	}
	return next
}

func (s *Store[K, V]) evictOldest() {
	var (
		oldestKey K
		oldest    uint64
		found     bool
	)
	for k, e := range s.entries {
		if !found || e.recency < oldest {
			oldestKey, oldest, found = k, e.recency, true
		}
	}
	if found {
		delete(s.entries, oldestKey)
	}
}
