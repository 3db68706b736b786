// SPDX-License-Identifier: GPL-3.0-or-later

// Package apiflow provides typed, composable HTTP API calls.
//
// # Core Abstraction
//
// Every stage of a request is a [Func]:
//
//	type Func[A, B any] interface {
//		Call(ctx context.Context, input A) (B, error)
//	}
//
// Stages are chained via [Compose2] through [Compose5], so the compiler
// verifies that the output of a stage matches the input of the next one.
// [Do] runs the request pipeline:
//
//	RequestSource -> [WireFunc] -> *WireRequest -> [PerformFunc] -> *RawResponse -> [DecodeFunc] -> *ResponseEnvelope
//
// # Describing Requests
//
// A [Schema] declares an endpoint with four type parameters: the headers
// channel H, the query items channel Q, the body channel B, and the decoded
// response R. Use [Empty] for unused channels. A [*RequestBuilder] collects
// the values of a single request and validates them lazily: accessors
// fail with [*MissingFieldError] when a required field is unset.
//
// Headers and query items are produced by encoding the channel value as a
// JSON object with the builder's [Encoder] and flattening its members in
// order (see [Stringify]). [ToWireRequest] joins the path to the base URL,
// attaches the query, and resolves the body for methods other than GET.
//
// # Performing Requests
//
// A [Performer] executes a [*WireRequest] exactly once. [*HTTPPerformer] is
// the default and uses [*DialTransport], which builds a fresh connection
// per request:
//
//	host:port -> [EndpointFunc] -> [ConnectFunc] -> [CancelWatchFunc] -> [TLSHandshakeFunc] -> [HTTPConnFunc]
//
// The [EndpointFunc] uses [Config.Resolver], which may be a [*DNSResolver]
// speaking DNS over UDP, TCP, TLS, or HTTPS. [*LimitedPerformer] adds
// client-side rate limiting.
//
// Non-2xx responses are not errors: the status code travels with the
// [*RawResponse] and the [*ResponseEnvelope].
//
// # Sharing and Bridging
//
// [Store] wraps a request into a [*SharedExecution], a connectable
// [Publisher] whose underlying request runs at most once no matter how many
// consumers subscribe. A [*Bridge] consumes any [Publisher] with pull-style
// methods ([*Bridge.First], [*Bridge.FirstOptional], [*Bridge.Values]) and
// cancels the upstream subscription when the consumer returns or its
// context is done.
//
// # Errors
//
// Every failure wraps one of the sentinel errors ([ErrMissingRequiredField],
// [ErrURLConstruction], [ErrEncoding], [ErrDecoding], [ErrCast],
// [ErrTransport], [ErrStreamCompletedWithoutValue], [ErrOperationCanceled]).
// Use [errors.Is] to inspect them.
//
// # Observability
//
// All primitives log via [SLogger] (compatible with [log/slog]). By default,
// logging is disabled. Operations emit span events (*Start/*Done pairs)
// that include t0, t, err, and errClass on completion. Headers listed in
// [Config.RedactHeaders] and credential query parameters are replaced with
// "[REDACTED]" unless [Config.TraceSecrets] is set.
//
// Use [NewSpanID] to generate a time-ordered identifier (UUIDv7) and attach
// it to the logger with [*slog.Logger.With] to correlate events.
//
// # Context
//
// Operations never modify the context they receive. The caller controls
// timeouts via [context.WithTimeout] or [signal.NotifyContext]. Inside
// [*DialTransport], [CancelWatchFunc] closes the connection when the
// context is done so that blocking I/O fails immediately.
package apiflow
