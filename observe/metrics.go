package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records codec traffic and cache behavior.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOp records one encode or decode with duration and error status.
	RecordOp(ctx context.Context, meta OpMeta, duration time.Duration, err error)

	// RecordCacheLookups records a batch of shape-cache lookup outcomes.
	RecordCacheLookups(ctx context.Context, hits, misses int64)

	// RecordStrategy records a strategy-selector decision.
	RecordStrategy(ctx context.Context, strategy string)

	// RecordPlanFallback records a planned-reconstruction fallback.
	RecordPlanFallback(ctx context.Context)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter         metric.Meter
	opCount       metric.Int64Counter
	errorCount    metric.Int64Counter
	durationHist  metric.Float64Histogram
	cacheLookups  metric.Int64Counter
	strategyCount metric.Int64Counter
	planFallbacks metric.Int64Counter
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	opCount, err := meter.Int64Counter(
		"codec.ops.total",
		metric.WithDescription("Total number of codec operations"),
		metric.WithUnit("{op}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"codec.ops.errors",
		metric.WithDescription("Total number of codec operation errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"codec.ops.duration_ms",
		metric.WithDescription("Codec operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		"codec.shape_cache.lookups",
		metric.WithDescription("Shape cache lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	strategyCount, err := meter.Int64Counter(
		"codec.rebuild.strategy_selected",
		metric.WithDescription("Reconstruction strategy selections"),
		metric.WithUnit("{selection}"),
	)
	if err != nil {
		return nil, err
	}

	planFallbacks, err := meter.Int64Counter(
		"codec.rebuild.plan_fallbacks",
		metric.WithDescription("Planned reconstruction fallbacks to single-pass"),
		metric.WithUnit("{fallback}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:         meter,
		opCount:       opCount,
		errorCount:    errorCount,
		durationHist:  durationHist,
		cacheLookups:  cacheLookups,
		strategyCount: strategyCount,
		planFallbacks: planFallbacks,
	}, nil
}

// RecordOp records metrics for one codec operation.
func (m *metricsImpl) RecordOp(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("codec.op", meta.Op),
	}
	if meta.Strategy != "" {
		attrs = append(attrs, attribute.String("codec.strategy", meta.Strategy))
	}

	opt := metric.WithAttributes(attrs...)

	m.opCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000.0, opt)
}

func (m *metricsImpl) RecordCacheLookups(ctx context.Context, hits, misses int64) {
	if hits > 0 {
		m.cacheLookups.Add(ctx, hits, metric.WithAttributes(attribute.String("result", "hit")))
	}
	if misses > 0 {
		m.cacheLookups.Add(ctx, misses, metric.WithAttributes(attribute.String("result", "miss")))
	}
}

func (m *metricsImpl) RecordStrategy(ctx context.Context, strategy string) {
	m.strategyCount.Add(ctx, 1, metric.WithAttributes(attribute.String("codec.strategy", strategy)))
}

func (m *metricsImpl) RecordPlanFallback(ctx context.Context) {
	m.planFallbacks.Add(ctx, 1)
}

// NoopMetrics returns a Metrics implementation that does nothing.
func NoopMetrics() Metrics { return &noopMetrics{} }

type noopMetrics struct{}

func (m *noopMetrics) RecordOp(context.Context, OpMeta, time.Duration, error) {}
func (m *noopMetrics) RecordCacheLookups(context.Context, int64, int64)       {}
func (m *noopMetrics) RecordStrategy(context.Context, string)                 {}
func (m *noopMetrics) RecordPlanFallback(context.Context)                     {}

var (
	_ Metrics = (*metricsImpl)(nil)
	_ Metrics = (*noopMetrics)(nil)
)
