// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import "context"

// ResponseEnvelope is a decoded response body with its transport metadata.
type ResponseEnvelope[T any] struct {
	// Body is the decoded response body.
	Body T

	// Response is the raw response the body was decoded from.
	Response *RawResponse
}

// DecodeFunc decodes a [*RawResponse] body into a [*ResponseEnvelope].
type DecodeFunc[T any] struct {
	// Decoder is the [Decoder] to use.
	Decoder Decoder
}

// NewDecodeFunc returns a new [*DecodeFunc].
func NewDecodeFunc[T any](dec Decoder) *DecodeFunc[T] {
	return &DecodeFunc[T]{Decoder: dec}
}

var _ Func[*RawResponse, *ResponseEnvelope[int]] = &DecodeFunc[int]{}

// Call implements [Func].
func (op *DecodeFunc[T]) Call(ctx context.Context, resp *RawResponse) (*ResponseEnvelope[T], error) {
	body, err := Decode[T](op.Decoder, resp.Body)
	if err != nil {
		return nil, err
	}
	return &ResponseEnvelope[T]{Body: body, Response: resp}, nil
}

// Client executes requests described by [*RequestBuilder].
//
// All fields are safe to modify after construction but before first use.
type Client struct {
	// BaseURL is joined to relative paths.
	//
	// Set by [NewClient] from [Config.BaseURL].
	BaseURL string

	// Codec is the encoder and decoder of builders that do not set their own.
	//
	// Set by [NewClient] from [Config.Codec].
	Codec Codec

	// Performer executes the wire requests.
	//
	// Set by [NewClient] to a [*HTTPPerformer].
	Performer Performer
}

// NewClient returns a new [*Client] using a [*HTTPPerformer].
//
// The cfg argument contains the common configuration for apiflow operations.
//
// The logger argument is the [SLogger] to use for structured logging.
func NewClient(cfg *Config, logger SLogger) *Client {
	return &Client{
		BaseURL:   cfg.BaseURL,
		Codec:     cfg.Codec,
		Performer: NewHTTPPerformer(cfg, logger),
	}
}

// Prepare converts the builder into a [*WireRequest] without executing it.
//
// Like [Do] and [DoShared], Prepare seeds the builder with [Client.Codec]
// using [*RequestBuilder.WithDefaultCodec].
func Prepare[H, Q, B, R any](c *Client, b *RequestBuilder[H, Q, B, R]) (*WireRequest, error) {
	return ToWireRequest(b.WithDefaultCodec(c.Codec), c.BaseURL)
}

// Do builds, executes, and decodes the request described by b.
//
// The decoder is resolved before anything is sent, so a builder lacking a
// decoder fails without touching the network.
func Do[H, Q, B, R any](ctx context.Context, c *Client, b *RequestBuilder[H, Q, B, R]) (*ResponseEnvelope[R], error) {
	dec, err := b.WithDefaultCodec(c.Codec).Decoder()
	if err != nil {
		return nil, err
	}
	pipeline := Compose3(
		Func[RequestSource, *WireRequest](NewWireFunc(&Config{BaseURL: c.BaseURL})),
		Func[*WireRequest, *RawResponse](NewPerformFunc(c.Performer)),
		Func[*RawResponse, *ResponseEnvelope[R]](NewDecodeFunc[R](dec)),
	)
	return pipeline.Call(ctx, b)
}

// DoShared prepares the request described by b and wraps its execution
// with [Store].
//
// The returned publisher emits the decoded envelope to each subscriber. The
// request starts only when [*SharedExecution.Connect] is called.
func DoShared[H, Q, B, R any](c *Client, b *RequestBuilder[H, Q, B, R]) (*SharedExecution, Publisher[*ResponseEnvelope[R]], error) {
	dec, err := b.WithDefaultCodec(c.Codec).Decoder()
	if err != nil {
		return nil, nil, err
	}
	req, err := Prepare(c, b)
	if err != nil {
		return nil, nil, err
	}
	se := Store(c.Performer, req)
	decode := NewDecodeFunc[R](dec)
	envelopes := Map(Publisher[*RawResponse](se), func(resp *RawResponse) (*ResponseEnvelope[R], error) {
		return decode.Call(context.Background(), resp)
	})
	return se, envelopes, nil
}
