// Package extract flattens tree-shaped values into ordered leaf sequences.
//
// Extraction order is the codec's load-bearing invariant: arrays are walked
// index-ascending and objects in ascending lexicographic key order, exactly
// matching the order the shape engine records fields and the order every
// reconstruction strategy replays them.
package extract
