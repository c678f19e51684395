// Package leaf classifies values into the coarse kinds used by shape
// signatures and defines the rich scalar types (timestamps, ordered pair
// collections, unique element collections, and error values) that travel
// as single opaque leaves through the codec.
package leaf
