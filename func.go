// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import "context"

// Func is a single pipeline stage that turns an input into an output.
//
// The request pipeline is a chain of Func: a request source becomes a
// [*WireRequest], which becomes a [*RawResponse], which becomes a
// [*ResponseEnvelope]. Use [Compose2], [Compose3] or [Compose4] to chain
// stages; the compiler checks that each output matches the next input.
//
// Resource cleanup contract: when a Func receives a closeable resource as input
// and returns an error, it is responsible for closing that resource before returning.
type Func[A, B any] interface {
	Call(ctx context.Context, input A) (B, error)
}

// FuncAdapter wraps a function as a [Func] implementation.
type FuncAdapter[A, B any] func(ctx context.Context, input A) (B, error)

// Call implements [Func].
func (f FuncAdapter[A, B]) Call(ctx context.Context, input A) (B, error) {
	return f(ctx, input)
}
