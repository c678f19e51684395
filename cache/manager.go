package cache

import (
	"math"
	"sync"
)

// Default bounds for a freshly created Manager.
const (
	DefaultMaxShapeEntries    = 1000
	DefaultMaxKeyOrderEntries = 500
	DefaultEvictThresholdPct  = 80
)

// Fraction of the shape-cache bound kept after an automatic eviction.
const evictTargetPct = 70

// Config is the live configuration of a Manager.
type Config struct {
	// MaxShapeEntries bounds the shape cache. Zero or less disables it.
	MaxShapeEntries int

	// MaxKeyOrderEntries bounds the key-order cache. Zero or less disables it.
	MaxKeyOrderEntries int

	// EvictThresholdPct is the utilization percentage at or above which
	// EvictOldEntries trims the caches.
	EvictThresholdPct int

	// EnableStats turns on hit/miss counting for the shape cache.
	EnableStats bool
}

// DefaultConfig returns the default Manager configuration.
func DefaultConfig() Config {
	return Config{
		MaxShapeEntries:    DefaultMaxShapeEntries,
		MaxKeyOrderEntries: DefaultMaxKeyOrderEntries,
		EvictThresholdPct:  DefaultEvictThresholdPct,
		EnableStats:        true,
	}
}

// Options selectively overrides Manager configuration. Zero-valued fields
// keep the current setting.
type Options struct {
	MaxShapeEntries    int
	MaxKeyOrderEntries int
	EvictThresholdPct  int
	EnableStats        *bool
}

// KeyRegistry is the read-only view of the external identity service's
// growable key registry. Keys returns key names in global insertion order.
type KeyRegistry interface {
	Len() int
	Keys() []string
}

// KeyOrderStats describes the key-order cache.
type KeyOrderStats struct {
	Size        int
	MaxSize     int
	Utilization int
}

// Stats is the combined view returned by Manager.Stats.
type Stats struct {
	Shapes   StoreStats
	KeyOrder KeyOrderStats
	Config   Config
	Hits     uint64
	Misses   uint64
}

// Manager owns the codec's process-wide cache state: an LRU shape cache and
// a key-order cache rebuilt wholesale from an external key registry. It is an
// explicit owned handle, not a package-level singleton, so callers can run
// isolated instances side by side.
//
// Contract:
// - Concurrency: all methods are safe for concurrent use; snapshot swaps are
//   serialized internally.
// - Lifecycle: create, Configure any number of times, use, Reset or drop.
type Manager[V any] struct {
	mu     sync.Mutex
	cfg    Config
	shapes *Store[string, V]

	keyOrder     map[string]int
	keyOrderSeen int // registry size at last rebuild

	hits   uint64
	misses uint64
}

// NewManager creates a Manager with the given configuration. Zero-valued
// bounds in cfg are replaced with defaults; use Configure to set a bound to
// an explicit non-default value, including a disabling one.
func NewManager[V any](cfg Config) *Manager[V] {
	def := DefaultConfig()
	if cfg.MaxShapeEntries == 0 {
		cfg.MaxShapeEntries = def.MaxShapeEntries
	}
	if cfg.MaxKeyOrderEntries == 0 {
		cfg.MaxKeyOrderEntries = def.MaxKeyOrderEntries
	}
	if cfg.EvictThresholdPct == 0 {
		cfg.EvictThresholdPct = def.EvictThresholdPct
	}
	return &Manager[V]{
		cfg:    cfg,
		shapes: NewStore[string, V](cfg.MaxShapeEntries),
	}
}

// Lookup returns the cached shape for signature, bumping its recency.
func (m *Manager[V]) Lookup(signature string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, next, ok := m.shapes.Get(signature)
	m.shapes = next
	if m.cfg.EnableStats {
		if ok {
			m.hits++
		} else {
			m.misses++
		}
	}
	return value, ok
}

// Store caches a shape under its signature, evicting the least recently used
// entry when the cache is full.
func (m *Manager[V]) Store(signature string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shapes = m.shapes.Set(signature, value)
}

// Configure merges opts into the live configuration. The shape cache is
// immediately migrated to the new bound, keeping the most recently used
// entries; the key-order cache is discarded if it now exceeds its bound.
func (m *Manager[V]) Configure(opts Options) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if opts.MaxShapeEntries != 0 {
		m.cfg.MaxShapeEntries = opts.MaxShapeEntries
	}
	if opts.MaxKeyOrderEntries != 0 {
		m.cfg.MaxKeyOrderEntries = opts.MaxKeyOrderEntries
	}
	if opts.EvictThresholdPct != 0 {
		m.cfg.EvictThresholdPct = opts.EvictThresholdPct
	}
	if opts.EnableStats != nil {
		m.cfg.EnableStats = *opts.EnableStats
	}

	if m.shapes.MaxSize() != m.cfg.MaxShapeEntries {
		m.shapes = Migrate(m.shapes.Entries(), m.cfg.MaxShapeEntries)
	}
	if len(m.keyOrder) > m.cfg.MaxKeyOrderEntries {
		m.keyOrder = nil
		m.keyOrderSeen = 0
	}
}

// Stats returns shape-cache stats, key-order-cache stats and the live
// configuration.
func (m *Manager[V]) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	ko := KeyOrderStats{
		Size:    len(m.keyOrder),
		MaxSize: m.cfg.MaxKeyOrderEntries,
	}
	if ko.MaxSize > 0 {
		ko.Utilization = int(math.Round(float64(ko.Size) / float64(ko.MaxSize) * 100))
	}

	return Stats{
		Shapes:   m.shapes.Stats(),
		KeyOrder: ko,
		Config:   m.cfg,
		Hits:     m.hits,
		Misses:   m.misses,
	}
}

// EvictOldEntries trims both caches when they sit at or above the configured
// utilization threshold. The shape cache is migrated down to 70% of its
// bound, keeping the most recently used entries; the key-order cache is
// discarded entirely. Returns the total number of entries removed.
func (m *Manager[V]) EvictOldEntries() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0

	st := m.shapes.Stats()
	if st.MaxSize > 0 && st.Utilization >= m.cfg.EvictThresholdPct {
		target := st.MaxSize * evictTargetPct / 100
		entries := m.shapes.Entries()
		if len(entries) > target {
			removed += len(entries) - target
			m.shapes = Migrate(entries[:target], st.MaxSize)
		}
	}

	if m.cfg.MaxKeyOrderEntries > 0 && len(m.keyOrder) > 0 {
		koUtil := len(m.keyOrder) * 100 / m.cfg.MaxKeyOrderEntries
		if koUtil >= m.cfg.EvictThresholdPct {
			removed += len(m.keyOrder)
			m.keyOrder = nil
			m.keyOrderSeen = 0
		}
	}

	return removed
}

// Reset unconditionally empties both caches and the hit/miss counters. It is
// intended for test isolation; in steady state it forfeits all accumulated
// reuse benefit.
func (m *Manager[V]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shapes = m.shapes.Clear()
	m.keyOrder = nil
	m.keyOrderSeen = 0
	m.hits = 0
	m.misses = 0
}

// KeyRanks returns the key-order cache, rebuilding it wholesale from the
// registry whenever the registry's size diverges from the recorded size. The
// registry's first MaxKeyOrderEntries keys are ranked by insertion order.
// Returns nil when the registry is nil or empty, or when the cache is
// disabled. The returned map is shared and must not be modified.
func (m *Manager[V]) KeyRanks(reg KeyRegistry) map[string]int {
	if reg == nil {
		return nil
	}
	size := reg.Len()
	if size == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxKeyOrderEntries <= 0 {
		return nil
	}
	if m.keyOrder != nil && m.keyOrderSeen == size && len(m.keyOrder) <= m.cfg.MaxKeyOrderEntries {
		return m.keyOrder
	}

	keys := reg.Keys()
	if len(keys) > m.cfg.MaxKeyOrderEntries {
		keys = keys[:m.cfg.MaxKeyOrderEntries]
	}
	ranks := make(map[string]int, len(keys))
	for i, k := range keys {
		ranks[k] = i
	}
	m.keyOrder = ranks
	m.keyOrderSeen = size
	return ranks
}
