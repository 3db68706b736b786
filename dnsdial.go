// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"
	"net"
)

// dnsUnusedDialer is a [Dialer] that panics if DialContext is called.
//
// [*DNSResolver] hands already connected conns to the DNS transports,
// which therefore must never dial on their own.
type dnsUnusedDialer struct{}

var _ Dialer = dnsUnusedDialer{}

// DialContext implements [Dialer].
func (dnsUnusedDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	panic("apiflow: DNS transport must not dial")
}
