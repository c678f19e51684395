package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/shapewire/cache"
)

// StatsSource is anything that can report combined cache statistics. Both a
// codec handle and a bare cache manager qualify.
type StatsSource interface {
	CacheStats() cache.Stats
}

// ManagerSource adapts a cache.Manager to the StatsSource interface.
func ManagerSource[V any](m *cache.Manager[V]) StatsSource {
	return managerSource[V]{m}
}

type managerSource[V any] struct {
	m *cache.Manager[V]
}

func (s managerSource[V]) CacheStats() cache.Stats { return s.m.Stats() }

// CacheCheckerConfig configures the cache health checker.
type CacheCheckerConfig struct {
	// WarningPct is the shape-cache utilization percentage that triggers
	// degraded status. Default: 80.
	WarningPct int

	// CriticalPct is the utilization percentage that triggers unhealthy
	// status. Default: 95.
	CriticalPct int
}

// CacheChecker reports the health of a codec's cache subsystem. High
// sustained utilization means the shape cache is evicting shapes that are
// still in use, which degrades every subsequent encode.
type CacheChecker struct {
	source StatsSource
	config CacheCheckerConfig
}

// NewCacheChecker creates a cache health checker.
func NewCacheChecker(source StatsSource, config CacheCheckerConfig) *CacheChecker {
	if config.WarningPct <= 0 || config.WarningPct > 100 {
		config.WarningPct = 80
	}
	if config.CriticalPct <= 0 || config.CriticalPct > 100 {
		config.CriticalPct = 95
	}
	if config.CriticalPct < config.WarningPct {
		config.CriticalPct = config.WarningPct
	}
	return &CacheChecker{source: source, config: config}
}

// Name returns the name of this checker.
func (c *CacheChecker) Name() string { return "cache" }

// Check reports cache health from the current utilization.
func (c *CacheChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	st := c.source.CacheStats()

	details := map[string]any{
		"shape_size":         st.Shapes.Size,
		"shape_max_size":     st.Shapes.MaxSize,
		"shape_utilization":  st.Shapes.Utilization,
		"key_order_size":     st.KeyOrder.Size,
		"key_order_max_size": st.KeyOrder.MaxSize,
		"hits":               st.Hits,
		"misses":             st.Misses,
	}

	if st.Shapes.MaxSize <= 0 {
		return Degraded("shape cache disabled").WithDetails(details)
	}

	switch {
	case st.Shapes.Utilization >= c.config.CriticalPct:
		return Unhealthy(
			fmt.Sprintf("shape cache utilization critical: %d%%", st.Shapes.Utilization),
			ErrCheckFailed,
		).WithDetails(details)
	case st.Shapes.Utilization >= c.config.WarningPct:
		return Degraded(
			fmt.Sprintf("shape cache utilization high: %d%%", st.Shapes.Utilization),
		).WithDetails(details)
	default:
		return Healthy(
			fmt.Sprintf("shape cache utilization normal: %d%%", st.Shapes.Utilization),
		).WithDetails(details)
	}
}

var _ Checker = (*CacheChecker)(nil)
