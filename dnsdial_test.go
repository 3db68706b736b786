// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The DNS transports must never dial on their own.
func TestDNSUnusedDialerPanics(t *testing.T) {
	assert.PanicsWithValue(t, "apiflow: DNS transport must not dial", func() {
		dnsUnusedDialer{}.DialContext(context.Background(), "udp", "8.8.8.8:53")
	})
}
