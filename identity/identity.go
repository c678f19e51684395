package identity

// Info is what the codec reads from the identity service for one value: an
// opaque structure identifier plus the metadata echoed into packet headers.
type Info struct {
	// ID uniquely identifies the value's structure. The codec treats it as
	// opaque and uses it only as a cache key for callers.
	ID string

	// Levels is the nesting depth of the described structure.
	Levels int

	// CollisionCount is the number of distinct structures that hashed to the
	// same identifier bucket so far.
	CollisionCount int
}

// Service produces structure identities for values.
//
// Contract:
// - Determinism: structurally identical values must receive equal IDs.
// - Concurrency: implementations must be safe for concurrent use.
type Service interface {
	// Describe returns the structure identity for a value.
	Describe(value any) (Info, error)
}

// KeyRegistry exposes the service's global key-insertion registry. The codec
// only ever reads it: Len to detect growth, Keys for the insertion order used
// to build key-order rank tables.
type KeyRegistry interface {
	// Len returns the current number of registered keys.
	Len() int

	// Keys returns all registered key names in insertion order.
	Keys() []string
}
