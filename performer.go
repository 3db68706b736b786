// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// RawResponse is the undecoded result of executing a [*WireRequest].
type RawResponse struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Header contains the response headers.
	Header http.Header

	// Body contains the whole response body.
	Body []byte
}

// Performer executes a [*WireRequest].
//
// Each Perform call executes the request exactly once: there are no retries
// and no caching. Failures of the network transport are returned as
// [*TransportError]. Use [Store] to share one execution among consumers.
type Performer interface {
	Perform(ctx context.Context, req *WireRequest) (*RawResponse, error)
}

// PerformerFunc adapts a function to the [Performer] interface.
//
// This is the simplest way to inject a fake transport in tests.
type PerformerFunc func(ctx context.Context, req *WireRequest) (*RawResponse, error)

var _ Performer = PerformerFunc(nil)

// Perform implements [Performer].
func (f PerformerFunc) Perform(ctx context.Context, req *WireRequest) (*RawResponse, error) {
	return f(ctx, req)
}

// PerformFunc lifts a [Performer] into a [Func].
type PerformFunc struct {
	// Performer is the [Performer] to use.
	Performer Performer
}

// NewPerformFunc returns a new [*PerformFunc].
func NewPerformFunc(p Performer) *PerformFunc {
	return &PerformFunc{Performer: p}
}

var _ Func[*WireRequest, *RawResponse] = &PerformFunc{}

// Call implements [Func].
func (op *PerformFunc) Call(ctx context.Context, req *WireRequest) (*RawResponse, error) {
	return op.Performer.Perform(ctx, req)
}

// errBodyTooLarge indicates that the response body exceeds MaxBodySize.
var errBodyTooLarge = errors.New("apiflow: response body too large")

// HTTPPerformer is the default [Performer].
//
// It converts the [*WireRequest] into an [*http.Request], performs a single
// round trip using Transport, and reads the whole body. Headers named by
// Redactor are never logged unless redaction is disabled.
//
// All fields are safe to modify after construction but before first use.
// Fields must not be mutated concurrently with calls to [Perform].
type HTTPPerformer struct {
	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewHTTPPerformer] from [Config.ErrClassifier].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use.
	//
	// Set by [NewHTTPPerformer] to the user-provided logger.
	Logger SLogger

	// MaxBodySize is the maximum response body size.
	//
	// Set by [NewHTTPPerformer] from [Config.MaxBodySize].
	MaxBodySize int64

	// Redactor removes secrets from logged requests.
	//
	// Set by [NewHTTPPerformer] using [NewRedactor].
	Redactor *Redactor

	// TimeNow is the function to get the current time.
	//
	// Set by [NewHTTPPerformer] from [Config.TimeNow].
	TimeNow func() time.Time

	// Transport performs the HTTP round trip.
	//
	// Set by [NewHTTPPerformer] to a [*DialTransport].
	Transport http.RoundTripper
}

// NewHTTPPerformer returns a new [*HTTPPerformer] using a [*DialTransport].
//
// The cfg argument contains the common configuration for apiflow operations.
//
// The logger argument is the [SLogger] to use for structured logging.
func NewHTTPPerformer(cfg *Config, logger SLogger) *HTTPPerformer {
	return &HTTPPerformer{
		ErrClassifier: cfg.ErrClassifier,
		Logger:        logger,
		MaxBodySize:   cfg.MaxBodySize,
		Redactor:      NewRedactor(cfg),
		TimeNow:       cfg.TimeNow,
		Transport:     NewDialTransport(cfg, logger),
	}
}

var _ Performer = &HTTPPerformer{}

// Perform implements [Performer].
func (p *HTTPPerformer) Perform(ctx context.Context, req *WireRequest) (*RawResponse, error) {
	spanID := NewSpanID()
	t0 := p.TimeNow()
	deadline, _ := ctx.Deadline()
	p.logStart(spanID, req, t0, deadline)
	resp, err := p.perform(ctx, req)
	p.logDone(spanID, req, t0, deadline, resp, err)
	return resp, err
}

func (p *HTTPPerformer) perform(ctx context.Context, req *WireRequest) (*RawResponse, error) {
	httpReq, err := req.NewHTTPRequest(ctx)
	if err != nil {
		return nil, newTransportError(err)
	}
	httpResp, err := p.Transport.RoundTrip(httpReq)
	if err != nil {
		return nil, newTransportError(err)
	}
	defer httpResp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(httpResp.Body, p.MaxBodySize+1))
	if err != nil {
		return nil, newTransportError(err)
	}
	if int64(len(body)) > p.MaxBodySize {
		return nil, newTransportError(fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, p.MaxBodySize))
	}
	resp := &RawResponse{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}
	return resp, nil
}

func (p *HTTPPerformer) logStart(spanID string, req *WireRequest, t0, deadline time.Time) {
	p.Logger.Debug(
		"performRequest",
		slog.String("curl", req.Curl(p.Redactor)),
		slog.String("spanID", spanID),
	)
	p.Logger.Info(
		"performStart",
		slog.Time("deadline", deadline),
		slog.String("httpMethod", req.Method()),
		slog.Any("httpRequestHeaders", p.Redactor.Headers(req.header)),
		slog.String("httpUrl", p.Redactor.URL(req.url)),
		slog.String("spanID", spanID),
		slog.Time("t", t0),
	)
}

func (p *HTTPPerformer) logDone(spanID string, req *WireRequest,
	t0, deadline time.Time, resp *RawResponse, err error) {
	var (
		statusCode int
		headers    http.Header
		bodySize   int
	)
	if resp != nil {
		statusCode = resp.StatusCode
		headers = resp.Header
		bodySize = len(resp.Body)
	}
	p.Logger.Info(
		"performDone",
		slog.Time("deadline", deadline),
		slog.Any("err", err),
		slog.String("errClass", p.ErrClassifier.Classify(err)),
		slog.String("httpMethod", req.Method()),
		slog.String("httpUrl", p.Redactor.URL(req.url)),
		slog.Int("httpResponseBodySize", bodySize),
		slog.Any("httpResponseHeaders", p.Redactor.HTTPHeader(headers)),
		slog.Int("httpResponseStatusCode", statusCode),
		slog.String("spanID", spanID),
		slog.Time("t0", t0),
		slog.Time("t", p.TimeNow()),
	)
}
