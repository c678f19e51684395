// Package wire defines the on-the-wire form of flattened leaf values.
//
// Rich scalars (dates, ordered maps, sets, errors) cannot survive a plain
// JSON round trip, so they travel as tagged objects:
//
//	{"__type": "Date", "value": "2024-01-15T10:30:00.000Z"}
//
// The tagged form is part of the packet format and must stay bit-exact so
// packets remain compatible across implementations. MarshalLeaves converts a
// flat value sequence to wire form; Unmarshal walks a reconstructed tree and
// revives tagged objects back into their in-memory types. Objects carrying an
// unknown "__type" tag pass through unchanged.
//
// Packets themselves serialize through a pluggable Codec (JSON, MessagePack,
// CBOR).
package wire
