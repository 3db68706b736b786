// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"encoding/json"
	"strings"
)

// optional is a builder field that may not have been set yet.
type optional[T any] struct {
	value T
	set   bool
}

func (o *optional[T]) put(value T) {
	o.value, o.set = value, true
}

func (o *optional[T]) clear() {
	var zero T
	o.value, o.set = zero, false
}

// required returns the field value or a [*MissingFieldError] when the field
// is unset, except that unset [Empty] fields yield the zero [Empty].
func required[T any](o optional[T], name string) (T, error) {
	if o.set || isEmptyType[T]() {
		return o.value, nil
	}
	var zero T
	return zero, &MissingFieldError{Name: name}
}

// RequestBuilder accumulates the parts of a request for an endpoint whose
// headers, query items and body have types H, Q and B and whose response
// body decodes into R.
//
// Setters return the same builder to allow chaining and overwrite previous
// values. Accessors validate lazily and fail with [*MissingFieldError] when
// a required field is unset. A builder is meant to be configured and
// consumed by a single goroutine.
type RequestBuilder[H, Q, B, R any] struct {
	method        optional[string]
	path          optional[string]
	headers       optional[H]
	query         optional[Q]
	body          optional[B]
	encoder       optional[Encoder]
	decoder       optional[Decoder]
	queryEncoder  Encoder
	headerEncoder Encoder

	// explicitEncoder and explicitDecoder record calls to WithEncoder
	// and WithDecoder, which take precedence over WithDefaultCodec.
	explicitEncoder bool
	explicitDecoder bool
}

var _ RequestSource = &RequestBuilder[Empty, Empty, Empty, Empty]{}

// NewRequestBuilder returns a new [*RequestBuilder] using [JSONCodec] as
// the default encoder and decoder. Prefer [*Schema.NewRequestBuilder].
func NewRequestBuilder[H, Q, B, R any]() *RequestBuilder[H, Q, B, R] {
	b := &RequestBuilder[H, Q, B, R]{}
	b.encoder.put(JSONCodec{})
	b.decoder.put(JSONCodec{})
	return b
}

// WithRequest copies the non-absent parts of value into the builder.
//
// The method is always set, defaulting to GET. The path and channels are
// set only when value provides them.
func (b *RequestBuilder[H, Q, B, R]) WithRequest(value RequestValue[H, Q, B]) *RequestBuilder[H, Q, B, R] {
	b.WithMethod(value.MethodOrDefault())
	if value.Path != "" {
		b.WithPath(value.Path)
	}
	if value.Headers != nil {
		b.WithHeaders(*value.Headers)
	}
	if value.Query != nil {
		b.WithQuery(*value.Query)
	}
	if value.Body != nil {
		b.WithBody(*value.Body)
	}
	return b
}

// WithMethod sets the HTTP method.
func (b *RequestBuilder[H, Q, B, R]) WithMethod(method string) *RequestBuilder[H, Q, B, R] {
	b.method.put(method)
	return b
}

// WithPath sets the request path, which may also be an absolute URL.
func (b *RequestBuilder[H, Q, B, R]) WithPath(path string) *RequestBuilder[H, Q, B, R] {
	b.path.put(path)
	return b
}

// WithHeaders sets the headers channel value.
func (b *RequestBuilder[H, Q, B, R]) WithHeaders(headers H) *RequestBuilder[H, Q, B, R] {
	b.headers.put(headers)
	return b
}

// WithQuery sets the query items channel value.
func (b *RequestBuilder[H, Q, B, R]) WithQuery(query Q) *RequestBuilder[H, Q, B, R] {
	b.query.put(query)
	return b
}

// WithBody sets the body channel value.
func (b *RequestBuilder[H, Q, B, R]) WithBody(body B) *RequestBuilder[H, Q, B, R] {
	b.body.put(body)
	return b
}

// WithEncoder sets the default encoder. A nil encoder unsets it.
func (b *RequestBuilder[H, Q, B, R]) WithEncoder(enc Encoder) *RequestBuilder[H, Q, B, R] {
	b.explicitEncoder = true
	if enc == nil {
		b.encoder.clear()
		return b
	}
	b.encoder.put(enc)
	return b
}

// WithDecoder sets the response decoder. A nil decoder unsets it.
func (b *RequestBuilder[H, Q, B, R]) WithDecoder(dec Decoder) *RequestBuilder[H, Q, B, R] {
	b.explicitDecoder = true
	if dec == nil {
		b.decoder.clear()
		return b
	}
	b.decoder.put(dec)
	return b
}

// WithDefaultCodec uses c as the encoder and the decoder unless they were
// set or unset with [*RequestBuilder.WithEncoder] and
// [*RequestBuilder.WithDecoder]. A nil codec is ignored.
func (b *RequestBuilder[H, Q, B, R]) WithDefaultCodec(c Codec) *RequestBuilder[H, Q, B, R] {
	if c == nil {
		return b
	}
	if !b.explicitEncoder {
		b.encoder.put(c)
	}
	if !b.explicitDecoder {
		b.decoder.put(c)
	}
	return b
}

// WithQueryEncoder sets the encoder used only for query items.
func (b *RequestBuilder[H, Q, B, R]) WithQueryEncoder(enc Encoder) *RequestBuilder[H, Q, B, R] {
	b.queryEncoder = enc
	return b
}

// WithHeaderEncoder sets the encoder used only for headers.
func (b *RequestBuilder[H, Q, B, R]) WithHeaderEncoder(enc Encoder) *RequestBuilder[H, Q, B, R] {
	b.headerEncoder = enc
	return b
}

// Method returns the upper-cased HTTP method.
func (b *RequestBuilder[H, Q, B, R]) Method() (string, error) {
	method, err := required(b.method, "method")
	if err != nil {
		return "", err
	}
	return strings.ToUpper(method), nil
}

// Path returns the request path.
func (b *RequestBuilder[H, Q, B, R]) Path() (string, error) {
	return required(b.path, "path")
}

// Headers returns the headers in the order emitted by the encoder.
//
// Uses the header encoder if set, otherwise the default encoder.
func (b *RequestBuilder[H, Q, B, R]) Headers() ([]Pair, error) {
	if isEmptyType[H]() {
		return nil, nil
	}
	headers, err := required(b.headers, "headers")
	if err != nil {
		return nil, err
	}
	enc, err := b.channelEncoder(b.headerEncoder)
	if err != nil {
		return nil, err
	}
	members, err := ToObject(enc, headers)
	if err != nil {
		return nil, err
	}
	return Stringify(members), nil
}

// QueryItems returns the query items in the order emitted by the encoder,
// dropping items whose key is empty.
//
// Uses the query encoder if set, otherwise the default encoder.
func (b *RequestBuilder[H, Q, B, R]) QueryItems() ([]Pair, error) {
	if isEmptyType[Q]() {
		return nil, nil
	}
	query, err := required(b.query, "query")
	if err != nil {
		return nil, err
	}
	enc, err := b.channelEncoder(b.queryEncoder)
	if err != nil {
		return nil, err
	}
	members, err := ToObject(enc, query)
	if err != nil {
		return nil, err
	}
	items := Stringify(members)
	out := items[:0]
	for _, item := range items {
		if item.Key != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

// Body returns the encoded body.
//
// [Empty] bodies encode to "{}". Bodies of type []byte or [json.RawMessage]
// are returned without encoding.
func (b *RequestBuilder[H, Q, B, R]) Body() ([]byte, error) {
	body, err := required(b.body, "body")
	if err != nil {
		return nil, err
	}
	switch raw := any(body).(type) {
	case []byte:
		return raw, nil
	case json.RawMessage:
		return raw, nil
	}
	enc, err := b.Encoder()
	if err != nil {
		return nil, err
	}
	return Encode(enc, body)
}

// Encoder returns the default encoder.
func (b *RequestBuilder[H, Q, B, R]) Encoder() (Encoder, error) {
	return required(b.encoder, "encoder")
}

// Decoder returns the response decoder.
func (b *RequestBuilder[H, Q, B, R]) Decoder() (Decoder, error) {
	return required(b.decoder, "decoder")
}

// QueryEncoder returns the query encoder override or nil.
func (b *RequestBuilder[H, Q, B, R]) QueryEncoder() Encoder {
	return b.queryEncoder
}

// HeaderEncoder returns the header encoder override or nil.
func (b *RequestBuilder[H, Q, B, R]) HeaderEncoder() Encoder {
	return b.headerEncoder
}

func (b *RequestBuilder[H, Q, B, R]) channelEncoder(override Encoder) (Encoder, error) {
	if override != nil {
		return override, nil
	}
	return b.Encoder()
}
