// Package cache provides the bounded caching layer for the shape codec.
//
// It provides a generic LRU Store with immutable snapshots, recency-based
// eviction and snapshot migration, and a Manager that owns the two caches
// the codec relies on: the shape cache (signature to shape node) and the
// key-order cache (key name to rank, rebuilt wholesale from an external
// key registry).
package cache
