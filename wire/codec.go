package wire

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// A Codec serializes packets to and from bytes.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Round trip: Unmarshal(Marshal(p)) must yield an equivalent packet with
//   values decoded as map[string]any / []any / primitives.
type Codec interface {
	// Name returns the codec's registry name.
	Name() string

	Marshal(p *Packet) ([]byte, error)
	Unmarshal(data []byte, p *Packet) error
}

// Codec registry names.
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
	CodecCBOR    = "cbor"
)

// CodecByName returns the codec registered under name.
func CodecByName(name string) (Codec, error) {
	switch name {
	case CodecJSON, "":
		return JSONCodec(), nil
	case CodecMsgpack:
		return MsgpackCodec(), nil
	case CodecCBOR:
		return CBORCodec(), nil
	default:
		return nil, fmt.Errorf("wire: unknown codec %q", name)
	}
}

// JSONCodec returns the JSON packet codec.
func JSONCodec() Codec { return jsonCodec{} }

type jsonCodec struct{}

func (jsonCodec) Name() string { return CodecJSON }

func (jsonCodec) Marshal(p *Packet) ([]byte, error) {
	return json.Marshal(p)
}

func (jsonCodec) Unmarshal(data []byte, p *Packet) error {
	return json.Unmarshal(data, p)
}

// MsgpackCodec returns the MessagePack packet codec.
func MsgpackCodec() Codec { return msgpackCodec{} }

type msgpackCodec struct{}

func (msgpackCodec) Name() string { return CodecMsgpack }

func (msgpackCodec) Marshal(p *Packet) ([]byte, error) {
	return msgpack.Marshal(p)
}

func (msgpackCodec) Unmarshal(data []byte, p *Packet) error {
	return msgpack.Unmarshal(data, p)
}

// CBORCodec returns the CBOR packet codec.
func CBORCodec() Codec { return cborCodec{dec: cborDecMode()} }

type cborCodec struct {
	dec cbor.DecMode
}

func (cborCodec) Name() string { return CodecCBOR }

func (cborCodec) Marshal(p *Packet) ([]byte, error) {
	return cbor.Marshal(p)
}

func (c cborCodec) Unmarshal(data []byte, p *Packet) error {
	return c.dec.Unmarshal(data, p)
}

// cborDecMode decodes untyped maps as map[string]any so tagged wire objects
// keep the shape Unmarshal expects.
func cborDecMode() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}
