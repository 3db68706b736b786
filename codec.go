// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// Encoder encodes a typed value into bytes.
type Encoder interface {
	Encode(v any) ([]byte, error)
}

// Decoder decodes bytes into the value pointed to by v.
type Decoder interface {
	Decode(data []byte, v any) error
}

// Codec is both an [Encoder] and a [Decoder].
type Codec interface {
	Encoder
	Decoder
}

// JSONCodec is the canonical JSON [Codec].
//
// Encoding does not escape HTML characters and does not append a
// trailing newline. The zero value is ready to use.
type JSONCodec struct{}

var _ Codec = JSONCodec{}

// Encode implements [Encoder].
func (JSONCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode implements [Decoder].
func (JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Encode encodes v using enc, wrapping failures into [*EncodingError].
func Encode(enc Encoder, v any) ([]byte, error) {
	data, err := enc.Encode(v)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	return data, nil
}

// Decode decodes data into a new T using dec, wrapping failures into [*DecodingError].
func Decode[T any](dec Decoder, data []byte) (T, error) {
	var value T
	if err := dec.Decode(data, &value); err != nil {
		var zero T
		return zero, &DecodingError{Type: typeName[T](), Err: err}
	}
	return value, nil
}

// typeName returns a printable name for T.
func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

// Pair is an ordered key-value pair of strings used for headers and query items.
type Pair struct {
	Key   string
	Value string
}

// ToObject encodes v and parses the result as a JSON object, preserving the
// order in which the encoder emitted the members.
//
// Returns [*CastError] if the encoded value is not an object.
func ToObject(enc Encoder, v any) ([]Member, error) {
	data, err := Encode(enc, v)
	if err != nil {
		return nil, err
	}
	value, err := ParseValue(data)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	if value.Kind != KindObject {
		return nil, &CastError{Payload: value.describe()}
	}
	return value.Members, nil
}

// Stringify flattens the members of a JSON object into string pairs.
//
// Strings are used verbatim, numbers keep their literal representation,
// booleans become "true" or "false", null becomes "null", and nested
// arrays or objects become compact JSON.
func Stringify(members []Member) []Pair {
	out := make([]Pair, 0, len(members))
	for _, m := range members {
		out = append(out, Pair{Key: m.Key, Value: m.Value.leafString()})
	}
	return out
}
