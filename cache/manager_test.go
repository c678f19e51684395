package cache

import (
	"fmt"
	"sync"
	"testing"
)

// fakeRegistry is a minimal in-memory KeyRegistry for tests.
type fakeRegistry struct {
	keys []string
}

func (r *fakeRegistry) Len() int       { return len(r.keys) }
func (r *fakeRegistry) Keys() []string { return r.keys }

var _ KeyRegistry = (*fakeRegistry)(nil)

func TestManager_LookupStore(t *testing.T) {
	m := NewManager[string](DefaultConfig())

	if _, ok := m.Lookup("sig"); ok {
		t.Error("Lookup on empty manager should miss")
	}

	m.Store("sig", "node")
	got, ok := m.Lookup("sig")
	if !ok {
		t.Fatal("Lookup after Store should hit")
	}
	if got != "node" {
		t.Errorf("Lookup = %q, want %q", got, "node")
	}

	st := m.Stats()
	if st.Hits != 1 || st.Misses != 1 {
		t.Errorf("Hits/Misses = %d/%d, want 1/1", st.Hits, st.Misses)
	}
}

func TestManager_ConfigureMigratesShapes(t *testing.T) {
	m := NewManager[int](Config{MaxShapeEntries: 10})
	for i := 0; i < 5; i++ {
		m.Store(fmt.Sprintf("sig-%d", i), i)
	}

	// Shrinking keeps the most recently used entries.
	m.Configure(Options{MaxShapeEntries: 3})

	st := m.Stats()
	if st.Shapes.Size != 3 {
		t.Errorf("shape cache size after shrink = %d, want 3", st.Shapes.Size)
	}
	if st.Shapes.MaxSize != 3 {
		t.Errorf("shape cache bound after shrink = %d, want 3", st.Shapes.MaxSize)
	}
	if _, ok := m.Lookup("sig-4"); !ok {
		t.Error("most recent entry must survive migration")
	}
	if _, ok := m.Lookup("sig-0"); ok {
		t.Error("oldest entry must be dropped by migration")
	}
}

func TestManager_ConfigureDiscardsOversizedKeyOrder(t *testing.T) {
	m := NewManager[int](DefaultConfig())
	reg := &fakeRegistry{keys: []string{"a", "b", "c", "d"}}

	ranks := m.KeyRanks(reg)
	if len(ranks) != 4 {
		t.Fatalf("KeyRanks built %d entries, want 4", len(ranks))
	}

	m.Configure(Options{MaxKeyOrderEntries: 2})

	if st := m.Stats(); st.KeyOrder.Size != 0 {
		t.Errorf("key-order cache size after shrink = %d, want 0 (discarded)", st.KeyOrder.Size)
	}

	// Rebuilt lazily on next use, truncated to the new bound.
	ranks = m.KeyRanks(reg)
	if len(ranks) != 2 {
		t.Errorf("rebuilt key-order cache has %d entries, want 2", len(ranks))
	}
	if ranks["a"] != 0 || ranks["b"] != 1 {
		t.Errorf("ranks = %v, want a=0 b=1", ranks)
	}
}

func TestManager_EvictOldEntries(t *testing.T) {
	m := NewManager[int](Config{MaxShapeEntries: 10, EvictThresholdPct: 70})
	for i := 0; i < 8; i++ {
		m.Store(fmt.Sprintf("sig-%d", i), i)
	}

	// Utilization 80% >= threshold 70%: trim to 70% of the bound.
	removed := m.EvictOldEntries()
	if removed < 1 {
		t.Errorf("EvictOldEntries removed %d, want >= 1", removed)
	}
	if st := m.Stats(); st.Shapes.Size > 7 {
		t.Errorf("shape cache size after eviction = %d, want <= 7", st.Shapes.Size)
	}
}

func TestManager_EvictBelowThresholdIsNoop(t *testing.T) {
	m := NewManager[int](Config{MaxShapeEntries: 10, EvictThresholdPct: 70})
	for i := 0; i < 3; i++ {
		m.Store(fmt.Sprintf("sig-%d", i), i)
	}

	if removed := m.EvictOldEntries(); removed != 0 {
		t.Errorf("EvictOldEntries below threshold removed %d, want 0", removed)
	}
	if st := m.Stats(); st.Shapes.Size != 3 {
		t.Errorf("shape cache size = %d, want 3", st.Shapes.Size)
	}
}

func TestManager_EvictDiscardsKeyOrder(t *testing.T) {
	m := NewManager[int](Config{MaxKeyOrderEntries: 4, EvictThresholdPct: 75})
	reg := &fakeRegistry{keys: []string{"a", "b", "c"}}
	m.KeyRanks(reg)

	// 3 of 4 entries = 75% utilization, at threshold: discard.
	removed := m.EvictOldEntries()
	if removed != 3 {
		t.Errorf("EvictOldEntries removed %d, want 3", removed)
	}
	if st := m.Stats(); st.KeyOrder.Size != 0 {
		t.Errorf("key-order cache size = %d, want 0", st.KeyOrder.Size)
	}
}

func TestManager_ResetIdempotence(t *testing.T) {
	m := NewManager[int](DefaultConfig())
	m.Store("sig", 1)
	m.KeyRanks(&fakeRegistry{keys: []string{"a"}})
	m.Lookup("sig")

	m.Reset()

	st := m.Stats()
	if st.Shapes.Size != 0 {
		t.Errorf("shape cache size after Reset = %d, want 0", st.Shapes.Size)
	}
	if st.KeyOrder.Size != 0 {
		t.Errorf("key-order cache size after Reset = %d, want 0", st.KeyOrder.Size)
	}
	if st.Hits != 0 || st.Misses != 0 {
		t.Errorf("counters after Reset = %d/%d, want 0/0", st.Hits, st.Misses)
	}

	// Reset twice is safe.
	m.Reset()
	if st := m.Stats(); st.Shapes.Size != 0 {
		t.Error("second Reset must leave the caches empty")
	}
}

func TestManager_KeyRanksReuseAndRebuild(t *testing.T) {
	m := NewManager[int](DefaultConfig())
	reg := &fakeRegistry{keys: []string{"x", "y"}}

	first := m.KeyRanks(reg)
	second := m.KeyRanks(reg)
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("KeyRanks sizes = %d/%d, want 2/2", len(first), len(second))
	}
	if st := m.Stats(); st.KeyOrder.Size != 2 {
		t.Errorf("key-order cache size = %d, want 2", st.KeyOrder.Size)
	}

	// Registry growth forces a wholesale rebuild.
	reg.keys = append(reg.keys, "z")
	third := m.KeyRanks(reg)
	if len(third) != 3 {
		t.Errorf("rebuilt ranks size = %d, want 3", len(third))
	}
	if third["z"] != 2 {
		t.Errorf("rank of z = %d, want 2", third["z"])
	}
}

func TestManager_KeyRanksEmptyRegistry(t *testing.T) {
	m := NewManager[int](DefaultConfig())
	if ranks := m.KeyRanks(nil); ranks != nil {
		t.Error("KeyRanks(nil) should return nil")
	}
	if ranks := m.KeyRanks(&fakeRegistry{}); ranks != nil {
		t.Error("KeyRanks on empty registry should return nil")
	}
}

func TestManager_DisabledShapeCache(t *testing.T) {
	m := NewManager[int](DefaultConfig())
	m.Configure(Options{MaxShapeEntries: -1})

	m.Store("sig", 1)
	if _, ok := m.Lookup("sig"); ok {
		t.Error("disabled shape cache must miss every lookup")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager[int](Config{MaxShapeEntries: 32})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("sig-%d", i%40)
				switch i % 4 {
				case 0:
					m.Store(key, i)
				case 1:
					m.Lookup(key)
				case 2:
					m.Stats()
				case 3:
					m.EvictOldEntries()
				}
			}
		}(g)
	}
	wg.Wait()
}
