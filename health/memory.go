package health

import (
	"context"
	"fmt"
	"runtime"
)

// MemoryCheckerConfig configures the memory health checker.
type MemoryCheckerConfig struct {
	// WarningThreshold is the fraction of MaxAlloc that triggers degraded
	// status. Default: 0.8.
	WarningThreshold float64

	// CriticalThreshold is the fraction of MaxAlloc that triggers unhealthy
	// status. Default: 0.95.
	CriticalThreshold float64

	// MaxAlloc is the expected allocation ceiling in bytes. Zero uses the
	// memory obtained from the OS.
	MaxAlloc uint64
}

// MemoryChecker reports process heap usage. Shape trees and cached layouts
// are retained indefinitely by design, so heap growth is the first sign of an
// unbounded cache configuration.
type MemoryChecker struct {
	config MemoryCheckerConfig
}

// NewMemoryChecker creates a memory health checker.
func NewMemoryChecker(config MemoryCheckerConfig) *MemoryChecker {
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= 0 || config.CriticalThreshold >= 1 {
		config.CriticalThreshold = 0.95
	}
	if config.CriticalThreshold < config.WarningThreshold {
		config.CriticalThreshold = config.WarningThreshold
	}
	return &MemoryChecker{config: config}
}

// Name returns the name of this checker.
func (m *MemoryChecker) Name() string { return "memory" }

// Check reports memory health from the runtime's allocation stats.
func (m *MemoryChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	maxAlloc := m.config.MaxAlloc
	if maxAlloc == 0 {
		maxAlloc = stats.Sys
	}

	usage := float64(stats.Alloc) / float64(maxAlloc)

	details := map[string]any{
		"alloc_bytes":   stats.Alloc,
		"max_alloc":     maxAlloc,
		"usage_percent": usage * 100,
		"heap_objects":  stats.HeapObjects,
		"num_gc":        stats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	switch {
	case usage >= m.config.CriticalThreshold:
		return Unhealthy(
			fmt.Sprintf("memory usage critical: %.1f%%", usage*100),
			ErrCheckFailed,
		).WithDetails(details)
	case usage >= m.config.WarningThreshold:
		return Degraded(
			fmt.Sprintf("memory usage high: %.1f%%", usage*100),
		).WithDetails(details)
	default:
		return Healthy(
			fmt.Sprintf("memory usage normal: %.1f%%", usage*100),
		).WithDetails(details)
	}
}

var _ Checker = (*MemoryChecker)(nil)
