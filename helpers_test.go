// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/bassosimone/netstub"
	"github.com/bassosimone/slogstub"
	"github.com/bassosimone/tlsstub"
)

// recordSink collects records emitted through a capturing logger.
type recordSink struct {
	mu      sync.Mutex
	records []slog.Record
}

// Messages returns the messages of the captured records in order.
func (rs *recordSink) Messages() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make([]string, 0, len(rs.records))
	for _, r := range rs.records {
		out = append(out, r.Message)
	}
	return out
}

// Find returns the first record with the given message.
func (rs *recordSink) Find(message string) (slog.Record, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for _, r := range rs.records {
		if r.Message == message {
			return r, true
		}
	}
	return slog.Record{}, false
}

// newCapturingLogger returns a logger that captures all log records. The
// handler is safe for concurrent use because performers may log from
// background goroutines.
func newCapturingLogger() (*slog.Logger, *recordSink) {
	rs := &recordSink{}
	handler := &slogstub.FuncHandler{
		EnabledFunc: func(ctx context.Context, level slog.Level) bool {
			return true
		},
		HandleFunc: func(ctx context.Context, record slog.Record) error {
			rs.mu.Lock()
			rs.records = append(rs.records, record)
			rs.mu.Unlock()
			return nil
		},
	}
	return slog.New(handler), rs
}

// recordAttr returns the string value of the named attribute of r.
func recordAttr(r slog.Record, key string) (value string, found bool) {
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			value, found = a.Value.String(), true
			return false
		}
		return true
	})
	return
}

// newMockTLSEngine returns a [*tlsstub.FuncTLSEngine] whose ClientFunc
// returns conn and whose NameFunc returns "mock".
func newMockTLSEngine(conn TLSConn) *tlsstub.FuncTLSEngine[TLSConn] {
	return &tlsstub.FuncTLSEngine[TLSConn]{
		ClientFunc: func(c net.Conn, config *tls.Config) TLSConn {
			return conn
		},
		NameFunc: func() string {
			return "mock"
		},
		ParrotFunc: func() string {
			return ""
		},
	}
}

// newMinimalConn returns a [*netstub.FuncConn] with only LocalAddrFunc and
// RemoteAddrFunc set, which is what [safeconn] needs for logging.
func newMinimalConn() *netstub.FuncConn {
	return &netstub.FuncConn{
		LocalAddrFunc:  func() net.Addr { return &net.TCPAddr{} },
		RemoteAddrFunc: func() net.Addr { return &net.TCPAddr{} },
	}
}

// funcRoundTripper implements [http.RoundTripper] using a function.
type funcRoundTripper func(*http.Request) (*http.Response, error)

func (f funcRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// mustWireRequest converts src or panics.
func mustWireRequest(src RequestSource, baseURL string) *WireRequest {
	wr, err := ToWireRequest(src, baseURL)
	if err != nil {
		panic(err)
	}
	return wr
}
