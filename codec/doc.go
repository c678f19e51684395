// Package codec ties the pipeline together: shape inference, structure
// identity, leaf extraction and strategy-selected reconstruction, behind an
// Encoder/Decoder pair sharing one Codec handle.
//
// Encoding learns the value's shape, stamps it with an identity from the
// structure-identity service, and emits a values-only packet holding just the
// structure ID and the flattened leaves. Decoding looks the shape up by ID,
// picks the fastest contract-equivalent reconstruction strategy for it, and
// rebuilds the original tree.
//
// A Codec is an owned handle: cache state, learned definitions and telemetry
// all hang off the instance, so isolated codecs can run side by side.
package codec
