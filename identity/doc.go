// Package identity defines the narrow contract the codec consumes from the
// structural-identity service: a Describe function that stamps a value's
// structure with a stable identifier, and a read-only key registry whose
// insertion order drives the externally-ordered reconstruction strategy.
//
// The Local type is an in-process implementation sufficient for standalone
// use and tests; deployments with a shared identity service supply their own
// Service and KeyRegistry implementations instead.
package identity
