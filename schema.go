// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import "net/http"

// RequestValue is the request an endpoint declares.
//
// Empty strings and nil pointers mean "absent": [*RequestBuilder.WithRequest]
// skips them instead of overwriting what the builder already contains.
type RequestValue[H, Q, B any] struct {
	// Method is the HTTP method; empty means GET.
	Method string

	// Path is the request path or absolute URL.
	Path string

	// Headers is the headers channel value.
	Headers *H

	// Query is the query items channel value.
	Query *Q

	// Body is the body channel value.
	Body *B
}

// MethodOrDefault returns the declared method or GET when unset.
func (v RequestValue[H, Q, B]) MethodOrDefault() string {
	if v.Method == "" {
		return http.MethodGet
	}
	return v.Method
}

// Schema describes an endpoint at compile time.
//
// The type parameters are the headers channel H, the query items channel Q,
// the body channel B, and the decoded response body R. Use [Empty] for
// channels the endpoint does not use. Define schemas once, as package-level
// values, and create a fresh builder for each request.
type Schema[H, Q, B, R any] struct {
	// Name identifies the endpoint in logs.
	Name string

	// Request is the request declared by the endpoint.
	Request RequestValue[H, Q, B]
}

// NewRequestBuilder returns a new [*RequestBuilder] populated from the
// schema's declared request.
func (s *Schema[H, Q, B, R]) NewRequestBuilder() *RequestBuilder[H, Q, B, R] {
	return NewRequestBuilder[H, Q, B, R]().WithRequest(s.Request)
}
