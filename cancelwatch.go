// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"
	"net"
)

// NewCancelWatchFunc returns a new [*CancelWatchFunc].
func NewCancelWatchFunc() *CancelWatchFunc {
	return &CancelWatchFunc{}
}

// CancelWatchFunc closes the connection as soon as the context is done.
//
// [*DialTransport] uses one connection per request, so the request context
// lifetime is the connection lifetime: canceling a request interrupts any
// blocking read or write immediately rather than at the next deadline.
//
// Closing the returned connection unregisters the watcher and closes the
// underlying connection, so no goroutine outlives the connection even if
// the context is never canceled. Do not use this with connections that
// must outlive the context.
type CancelWatchFunc struct{}

var _ Func[net.Conn, net.Conn] = &CancelWatchFunc{}

// Call implements [Func].
func (op *CancelWatchFunc) Call(ctx context.Context, conn net.Conn) (net.Conn, error) {
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	return &cancelWatchedConn{Conn: conn, stop: stop}, nil
}

// cancelWatchedConn wraps a [net.Conn] with a context cancellation watcher.
type cancelWatchedConn struct {
	net.Conn
	stop func() bool
}

// Close unregisters the context watcher and closes the underlying connection.
func (c *cancelWatchedConn) Close() error {
	c.stop()
	return c.Conn.Close()
}
