package wire

import (
	"errors"
	"fmt"
)

// KindValuesOnly is the only packet kind: shapes never travel, only the
// structure identifier and the flat value sequence.
const KindValuesOnly = "values-only"

// Packet errors.
var (
	ErrUnknownPacketKind = errors.New("wire: unknown packet kind")
	ErrMissingStructure  = errors.New("wire: packet has no structure id")
)

// Metadata carries structure bookkeeping alongside the values.
type Metadata struct {
	CollisionCount int `json:"collisionCount" msgpack:"collisionCount" cbor:"collisionCount"`
	Levels         int `json:"levels" msgpack:"levels" cbor:"levels"`
}

// Packet is the unit of transmission: a structure identifier plus the
// flattened leaf values in wire form.
type Packet struct {
	Kind        string   `json:"kind" msgpack:"kind" cbor:"kind"`
	StructureID string   `json:"structureId" msgpack:"structureId" cbor:"structureId"`
	Values      []any    `json:"values" msgpack:"values" cbor:"values"`
	Metadata    Metadata `json:"metadata" msgpack:"metadata" cbor:"metadata"`
}

// Validate checks the packet is well-formed for decoding.
func (p *Packet) Validate() error {
	if p.Kind != KindValuesOnly {
		return fmt.Errorf("%w: %q", ErrUnknownPacketKind, p.Kind)
	}
	if p.StructureID == "" {
		return ErrMissingStructure
	}
	return nil
}
