// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPerformer returns an [*HTTPPerformer] using txp.
func newTestPerformer(txp http.RoundTripper, logger SLogger) *HTTPPerformer {
	p := NewHTTPPerformer(NewConfig(), logger)
	p.Transport = txp
	return p
}

// NewHTTPPerformer populates all fields from Config and the provided logger.
func TestNewHTTPPerformer(t *testing.T) {
	cfg := NewConfig()

	p := NewHTTPPerformer(cfg, DefaultSLogger())

	assert.Equal(t, cfg.MaxBodySize, p.MaxBodySize)
	assert.IsType(t, &DialTransport{}, p.Transport)
	assert.NotNil(t, p.Redactor)
	assert.NotNil(t, p.TimeNow)
	assert.NotNil(t, p.ErrClassifier)
	assert.NotNil(t, p.Logger)
}

// Perform returns the status, headers, and body, treating any status as success.
func TestHTTPPerformerPerform(t *testing.T) {
	for _, status := range []int{200, 401, 404, 500} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var got *http.Request
			p := newTestPerformer(funcRoundTripper(func(req *http.Request) (*http.Response, error) {
				got = req
				return &http.Response{
					StatusCode: status,
					Header:     http.Header{"Content-Type": {"application/json"}},
					Body:       io.NopCloser(strings.NewReader(`{"page":1}`)),
				}, nil
			}), DefaultSLogger())
			wr := mustWireRequest(&stubSource{
				method:  "GET",
				path:    "https://api.example.com/3/movie/now_playing",
				headers: []Pair{{"accept", "application/json"}},
			}, "")

			resp, err := p.Perform(context.Background(), wr)

			require.NoError(t, err)
			assert.Equal(t, status, resp.StatusCode)
			assert.Equal(t, `{"page":1}`, string(resp.Body))
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			assert.Equal(t, "GET", got.Method)
			assert.Equal(t, []string{"application/json"}, got.Header["accept"])
		})
	}
}

// Perform wraps transport failures into TransportError.
func TestHTTPPerformerTransportError(t *testing.T) {
	wantErr := errors.New("connection refused")
	p := newTestPerformer(funcRoundTripper(func(req *http.Request) (*http.Response, error) {
		return nil, wantErr
	}), DefaultSLogger())

	_, err := p.Perform(context.Background(), mustWireRequest(&stubSource{method: "GET", path: "https://a.example/"}, ""))

	require.ErrorIs(t, err, ErrTransport)
	require.ErrorIs(t, err, wantErr)
}

// Perform refuses bodies larger than MaxBodySize.
func TestHTTPPerformerBodyTooLarge(t *testing.T) {
	p := newTestPerformer(funcRoundTripper(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("0123456789"))}, nil
	}), DefaultSLogger())
	p.MaxBodySize = 4

	_, err := p.Perform(context.Background(), mustWireRequest(&stubSource{method: "GET", path: "https://a.example/"}, ""))

	require.ErrorIs(t, err, ErrTransport)
	require.ErrorIs(t, err, errBodyTooLarge)
}

// Perform logs the request span without leaking credentials.
func TestHTTPPerformerLogging(t *testing.T) {
	logger, records := newCapturingLogger()
	p := newTestPerformer(funcRoundTripper(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("{}"))}, nil
	}), logger)
	wr := mustWireRequest(&stubSource{
		method:  "GET",
		path:    "https://api.example.com/3/account",
		headers: []Pair{{"Authorization", "Bearer s3cr3t"}},
		query:   []Pair{{"api_key", "s3cr3t"}},
	}, "")

	_, err := p.Perform(context.Background(), wr)
	require.NoError(t, err)

	assert.Equal(t, []string{"performRequest", "performStart", "performDone"}, records.Messages())
	for _, msg := range records.Messages() {
		record, _ := records.Find(msg)
		record.Attrs(func(a slog.Attr) bool {
			assert.NotContains(t, a.Value.String(), "s3cr3t", "%s.%s", msg, a.Key)
			return true
		})
	}
	done, _ := records.Find("performDone")
	status, _ := recordAttr(done, "httpResponseStatusCode")
	assert.Equal(t, "200", status)
}

// PerformerFunc and PerformFunc adapt functions and performers.
func TestPerformFunc(t *testing.T) {
	want := &RawResponse{StatusCode: 204}
	p := PerformerFunc(func(ctx context.Context, req *WireRequest) (*RawResponse, error) {
		return want, nil
	})

	got, err := NewPerformFunc(p).Call(context.Background(), mustWireRequest(&stubSource{method: "GET", path: "https://a.example/"}, ""))

	require.NoError(t, err)
	assert.Same(t, want, got)
}
