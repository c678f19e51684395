// Package shape infers structural descriptions of tree-shaped values.
//
// A shape records types and nesting but never values: two structurally
// identical inputs produce shape trees with equal signatures, which is what
// lets repeat traffic ship only its leaf values. Object shapes are memoized
// in a caller-supplied cache keyed by their shallow signature.
package shape
