// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every stage of the pipeline.
//
// Callers cannot tell validation from transport failures by call site;
// use [errors.Is] against these values or [errors.As] against the typed
// errors below to inspect a failure.
var (
	// ErrMissingRequiredField indicates that a builder field was read before being set.
	ErrMissingRequiredField = errors.New("apiflow: missing required field")

	// ErrURLConstruction indicates that the request URL could not be built.
	ErrURLConstruction = errors.New("apiflow: cannot construct URL")

	// ErrEncoding indicates that a value could not be encoded.
	ErrEncoding = errors.New("apiflow: encoding failed")

	// ErrDecoding indicates that a response body could not be decoded.
	ErrDecoding = errors.New("apiflow: decoding failed")

	// ErrCast indicates that an encoded value did not have the expected JSON shape.
	ErrCast = errors.New("apiflow: unexpected JSON shape")

	// ErrTransport indicates a network or transport level failure.
	ErrTransport = errors.New("apiflow: transport failed")

	// ErrStreamCompletedWithoutValue indicates that a stream completed
	// successfully without emitting any value.
	ErrStreamCompletedWithoutValue = errors.New("apiflow: stream completed without value")

	// ErrOperationCanceled indicates that the consumer canceled the operation.
	ErrOperationCanceled = errors.New("apiflow: operation canceled")
)

// MissingFieldError is returned by [*RequestBuilder] accessors when the
// corresponding field is required and was never set.
type MissingFieldError struct {
	// Name is the field name (e.g., "path").
	Name string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("apiflow: missing required field %q", e.Name)
}

// Unwrap returns [ErrMissingRequiredField].
func (e *MissingFieldError) Unwrap() error {
	return ErrMissingRequiredField
}

// URLError is returned by [ToWireRequest] when the URL cannot be built.
type URLError struct {
	// Stage is either "components" or "url".
	Stage string

	// Err is the underlying parse error, if any.
	Err error
}

func (e *URLError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("apiflow: cannot construct URL (%s): %s", e.Stage, e.Err.Error())
	}
	return fmt.Sprintf("apiflow: cannot construct URL (%s)", e.Stage)
}

// Unwrap returns [ErrURLConstruction] and the underlying error.
func (e *URLError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrURLConstruction}
	}
	return []error{ErrURLConstruction, e.Err}
}

// EncodingError wraps a codec failure while encoding a value.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return "apiflow: encoding failed: " + e.Err.Error()
}

// Unwrap returns [ErrEncoding] and the underlying error.
func (e *EncodingError) Unwrap() []error {
	return []error{ErrEncoding, e.Err}
}

// DecodingError wraps a codec failure while decoding a value.
type DecodingError struct {
	// Type is the name of the target type.
	Type string

	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("apiflow: cannot decode %s: %s", e.Type, e.Err.Error())
}

// Unwrap returns [ErrDecoding] and the underlying error.
func (e *DecodingError) Unwrap() []error {
	return []error{ErrDecoding, e.Err}
}

// CastError is returned when an encoded value is not a JSON object.
type CastError struct {
	// Payload describes the value that was found instead.
	Payload string
}

func (e *CastError) Error() string {
	return "apiflow: cannot cast to JSON object: " + e.Payload
}

// Unwrap returns [ErrCast].
func (e *CastError) Unwrap() error {
	return ErrCast
}

// TransportError wraps a failure returned by the network transport.
//
// The underlying error is passed through opaquely.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "apiflow: transport failed: " + e.Err.Error()
}

// Unwrap returns [ErrTransport] and the underlying error.
func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// CanceledError is returned when a consumer stops waiting because its
// context is done.
type CanceledError struct {
	// Cause is the context error or cause.
	Cause error
}

func (e *CanceledError) Error() string {
	return "apiflow: operation canceled: " + e.Cause.Error()
}

// Unwrap returns [ErrOperationCanceled] and the context cause.
func (e *CanceledError) Unwrap() []error {
	return []error{ErrOperationCanceled, e.Cause}
}

// newTransportError wraps err unless it already belongs to the taxonomy.
func newTransportError(err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Err: err}
}
