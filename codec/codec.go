package codec

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/shapewire/cache"
	"github.com/jonwraymond/shapewire/extract"
	"github.com/jonwraymond/shapewire/identity"
	"github.com/jonwraymond/shapewire/observe"
	"github.com/jonwraymond/shapewire/rebuild"
	"github.com/jonwraymond/shapewire/shape"
	"github.com/jonwraymond/shapewire/wire"
)

// Config configures a Codec. Zero-valued fields fall back to defaults.
type Config struct {
	// Cache configures the shape and key-order caches.
	Cache cache.Config

	// Thresholds tunes the strategy selector. Zero value uses the stock
	// tuning.
	Thresholds rebuild.Thresholds

	// Optimized enables homogeneous-array detection during inference.
	Optimized bool

	// Packet names the packet serialization: json, msgpack or cbor.
	// Empty selects json.
	Packet string

	// Logger receives structured events. Nil discards them.
	Logger observe.Logger

	// Tracer records operation spans. Nil disables tracing.
	Tracer observe.Tracer

	// Metrics records operation counters. Nil disables metrics.
	Metrics observe.Metrics
}

// Codec is the encode/decode handle. It owns the shape cache, the learned
// structure definitions and the reconstruction machinery.
//
// Contract:
// - Concurrency: all methods are safe for concurrent use.
// - Lifecycle: create with New, use, Reset for test isolation.
type Codec struct {
	engine   *shape.Engine
	caches   *cache.Manager[*shape.Node]
	identity identity.Service
	registry cache.KeyRegistry

	thresholds rebuild.Thresholds
	optimized  bool
	packet     wire.Codec
	planned    *rebuild.PlannedStrategy

	logger  observe.Logger
	tracer  observe.Tracer
	metrics observe.Metrics

	mu   sync.RWMutex
	defs map[string]*shape.Node
}

// New creates a Codec. The identity service stamps structure IDs; registry is
// its key registry, read to build the externally-ordered strategy's rank
// table (nil disables external ordering).
func New(id identity.Service, registry cache.KeyRegistry, cfg Config) (*Codec, error) {
	if id == nil {
		return nil, ErrMissingIdentity
	}

	packet, err := wire.CodecByName(cfg.Packet)
	if err != nil {
		return nil, err
	}

	if (cfg.Thresholds == rebuild.Thresholds{}) {
		cfg.Thresholds = rebuild.DefaultThresholds()
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = observe.NewNoopTracer()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.NoopMetrics()
	}

	caches := cache.NewManager[*shape.Node](cfg.Cache)

	c := &Codec{
		engine:     shape.NewEngine(caches),
		caches:     caches,
		identity:   id,
		registry:   registry,
		thresholds: cfg.Thresholds,
		optimized:  cfg.Optimized,
		packet:     packet,
		planned:    rebuild.NewPlanned(nil, cfg.Logger),
		logger:     cfg.Logger,
		tracer:     cfg.Tracer,
		metrics:    cfg.Metrics,
		defs:       make(map[string]*shape.Node),
	}
	c.planned.OnFallback(func() {
		c.metrics.RecordPlanFallback(context.Background())
	})
	return c, nil
}

// NewWithObserver creates a Codec whose logger, tracer and metrics all come
// from one Observer. Telemetry fields in cfg are overwritten.
func NewWithObserver(id identity.Service, registry cache.KeyRegistry, obs observe.Observer, cfg Config) (*Codec, error) {
	metrics, err := observe.NewMetrics(obs.Meter())
	if err != nil {
		return nil, fmt.Errorf("codec: build metrics: %w", err)
	}
	cfg.Logger = obs.Logger()
	cfg.Tracer = observe.NewTracer(obs.Tracer())
	cfg.Metrics = metrics
	return New(id, registry, cfg)
}

// Encode learns the value's shape and identity and returns a values-only
// packet carrying the structure ID and the flattened leaves.
func (c *Codec) Encode(ctx context.Context, v any) (p *wire.Packet, err error) {
	start := time.Now()
	meta := observe.OpMeta{Op: "encode"}

	ctx, span := c.tracer.StartSpan(ctx, meta)
	defer func() {
		c.tracer.EndSpan(span, err)
		c.metrics.RecordOp(ctx, meta, time.Since(start), err)
	}()

	before := c.caches.Stats()

	var node *shape.Node
	if c.optimized {
		node = c.engine.InferOptimized(v)
	} else {
		node = c.engine.Infer(v)
	}

	after := c.caches.Stats()
	c.metrics.RecordCacheLookups(ctx,
		int64(after.Hits-before.Hits), int64(after.Misses-before.Misses))

	info, err := c.identity.Describe(v)
	if err != nil {
		return nil, fmt.Errorf("codec: describe structure: %w", err)
	}

	c.mu.Lock()
	c.defs[info.ID] = node
	c.mu.Unlock()

	values := extract.Extract(v)
	meta.StructureID = info.ID
	meta.LeafCount = len(values)

	c.logger.WithOp(meta).Debug(ctx, "value encoded")

	return &wire.Packet{
		Kind:        wire.KindValuesOnly,
		StructureID: info.ID,
		Values:      wire.MarshalLeaves(values),
		Metadata: wire.Metadata{
			CollisionCount: info.CollisionCount,
			Levels:         info.Levels,
		},
	}, nil
}

// Decode reconstructs the original tree from a values-only packet using the
// previously learned shape for its structure ID.
func (c *Codec) Decode(ctx context.Context, p *wire.Packet) (v any, err error) {
	start := time.Now()
	meta := observe.OpMeta{Op: "decode"}

	ctx, span := c.tracer.StartSpan(ctx, meta)
	defer func() {
		c.tracer.EndSpan(span, err)
		c.metrics.RecordOp(ctx, meta, time.Since(start), err)
	}()

	if err = p.Validate(); err != nil {
		return nil, err
	}
	meta.StructureID = p.StructureID
	meta.LeafCount = len(p.Values)

	c.mu.RLock()
	node, ok := c.defs[p.StructureID]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStructure, p.StructureID)
	}

	out, name, err := c.reconstruct(p.Values, node, "")
	if err != nil {
		return nil, err
	}
	meta.Strategy = string(name)
	c.metrics.RecordStrategy(ctx, string(name))
	c.logger.WithOp(meta).Debug(ctx, "packet decoded")

	return wire.Unmarshal(out), nil
}

// Reconstruct rebuilds a tree from a flat leaf sequence and a shape. An empty
// strategy name auto-selects; a non-empty name forces that strategy.
func (c *Codec) Reconstruct(values []any, node *shape.Node, name rebuild.Name) (any, error) {
	out, _, err := c.reconstruct(values, node, name)
	return out, err
}

func (c *Codec) reconstruct(values []any, node *shape.Node, name rebuild.Name) (any, rebuild.Name, error) {
	ranks := c.caches.KeyRanks(c.registry)

	if name == "" {
		st := rebuild.Analyze(node, len(ranks) > 0)
		name = rebuild.Select(st, len(values), c.thresholds)
	}

	var strategy rebuild.Strategy
	if name == rebuild.Planned {
		strategy = c.planned
	} else {
		var err error
		strategy, err = rebuild.ForName(name, ranks, c.logger)
		if err != nil {
			return nil, name, err
		}
	}

	out, err := strategy.Reconstruct(values, node)
	return out, name, err
}

// DefinitionFor returns the learned structure definition for an ID.
func (c *Codec) DefinitionFor(id string) (shape.Definition, bool) {
	c.mu.RLock()
	node, ok := c.defs[id]
	c.mu.RUnlock()
	if !ok {
		return shape.Definition{}, false
	}
	return shape.Definition{Shape: node, ID: id}, true
}

// EncodeBytes encodes v and serializes the packet with the configured packet
// codec.
func (c *Codec) EncodeBytes(ctx context.Context, v any) ([]byte, error) {
	p, err := c.Encode(ctx, v)
	if err != nil {
		return nil, err
	}
	return c.packet.Marshal(p)
}

// DecodeBytes deserializes a packet with the configured packet codec and
// decodes it.
func (c *Codec) DecodeBytes(ctx context.Context, data []byte) (any, error) {
	var p wire.Packet
	if err := c.packet.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("codec: unmarshal packet: %w", err)
	}
	return c.Decode(ctx, &p)
}

// ConfigureCache merges opts into the live cache configuration.
func (c *Codec) ConfigureCache(opts cache.Options) {
	c.caches.Configure(opts)
}

// CacheStats returns combined cache statistics.
func (c *Codec) CacheStats() cache.Stats {
	return c.caches.Stats()
}

// EvictOldEntries trims the caches when they sit at or above the configured
// utilization threshold. Returns the number of entries removed.
func (c *Codec) EvictOldEntries() int {
	return c.caches.EvictOldEntries()
}

// Reset empties the caches and forgets all learned structure definitions.
// Intended for test isolation.
func (c *Codec) Reset() {
	c.caches.Reset()
	c.mu.Lock()
	c.defs = make(map[string]*shape.Node)
	c.mu.Unlock()
}
