// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bassosimone/safeconn"
)

// httpBodyWrap wraps a response body read through hc.
//
// The wrapper emits httpBodyStreamStart on the first Read and, only if
// at least one Read happened, httpBodyStreamDone on Close.
func httpBodyWrap(body io.ReadCloser, hc *HTTPConn) io.ReadCloser {
	return &httpBodyWrapper{
		body:     body,
		errClass: hc.ErrClassifier,
		laddr:    safeconn.LocalAddr(hc.conn),
		logger:   hc.Logger,
		protocol: safeconn.Network(hc.conn),
		raddr:    safeconn.RemoteAddr(hc.conn),
		timeNow:  hc.TimeNow,
	}
}

type httpBodyWrapper struct {
	body      io.ReadCloser
	closeOnce sync.Once
	didRead   atomic.Bool
	errClass  ErrClassifier
	laddr     string
	logger    SLogger
	protocol  string
	raddr     string
	readOnce  sync.Once
	t0        time.Time
	timeNow   func() time.Time
}

var _ io.ReadCloser = &httpBodyWrapper{}

// Close implements [io.ReadCloser].
func (b *httpBodyWrapper) Close() (err error) {
	b.closeOnce.Do(func() {
		err = b.body.Close()
		if b.didRead.Load() { // t0 is visible once this is true
			b.logger.Info(
				"httpBodyStreamDone",
				slog.Any("err", err),
				slog.String("errClass", b.errClass.Classify(err)),
				slog.String("localAddr", b.laddr),
				slog.String("protocol", b.protocol),
				slog.String("remoteAddr", b.raddr),
				slog.Time("t0", b.t0),
				slog.Time("t", b.timeNow()),
			)
		}
	})
	return
}

// Read implements [io.ReadCloser].
func (b *httpBodyWrapper) Read(buffer []byte) (int, error) {
	b.readOnce.Do(func() {
		b.t0 = b.timeNow()
		b.didRead.Store(true)
		b.logger.Info(
			"httpBodyStreamStart",
			slog.String("localAddr", b.laddr),
			slog.String("protocol", b.protocol),
			slog.String("remoteAddr", b.raddr),
			slog.Time("t", b.t0),
		)
	})
	return b.body.Read(buffer)
}

// connClosingBody closes the owning connection when the body is closed.
type connClosingBody struct {
	io.ReadCloser
	conn      io.Closer
	closeOnce sync.Once
}

// Close implements [io.ReadCloser].
func (b *connClosingBody) Close() (err error) {
	b.closeOnce.Do(func() {
		err = b.ReadCloser.Close()
		b.conn.Close()
	})
	return
}
