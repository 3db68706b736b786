// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/bassosimone/netstub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewConnectFunc populates all fields from Config and the provided logger.
func TestNewConnectFunc(t *testing.T) {
	cfg := NewConfig()

	fn := NewConnectFunc(cfg, "tcp", DefaultSLogger())

	require.NotNil(t, fn)
	assert.Equal(t, "tcp", fn.Network)
	assert.NotNil(t, fn.Dialer)
	assert.NotNil(t, fn.Logger)
	assert.NotNil(t, fn.TimeNow)
	assert.NotNil(t, fn.ErrClassifier)
}

// Call tries the candidate addresses in order and stops at the first success.
func TestConnectFunc(t *testing.T) {
	first := netip.MustParseAddrPort("192.0.2.1:443")
	second := netip.MustParseAddrPort("192.0.2.2:443")

	tests := []struct {
		// name describes what this test case verifies.
		name string

		// addresses are the candidate addresses.
		addresses []netip.AddrPort

		// failing lists the addresses whose dial fails.
		failing map[string]bool

		// wantDials is the expected sequence of dialed addresses.
		wantDials []string

		// wantErr indicates whether we expect an error.
		wantErr bool
	}{
		{
			name:      "first address succeeds",
			addresses: []netip.AddrPort{first, second},
			wantDials: []string{first.String()},
		},
		{
			name:      "falls back to the second address",
			addresses: []netip.AddrPort{first, second},
			failing:   map[string]bool{first.String(): true},
			wantDials: []string{first.String(), second.String()},
		},
		{
			name:      "all addresses fail",
			addresses: []netip.AddrPort{first, second},
			failing:   map[string]bool{first.String(): true, second.String(): true},
			wantDials: []string{first.String(), second.String()},
			wantErr:   true,
		},
		{
			name:      "no addresses",
			addresses: nil,
			wantDials: nil,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dials []string
			cfg := NewConfig()
			cfg.Dialer = &netstub.FuncDialer{
				DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
					dials = append(dials, address)
					if tt.failing[address] {
						return nil, errors.New("connection refused")
					}
					conn := newMinimalConn()
					conn.CloseFunc = func() error { return nil }
					return conn, nil
				},
			}

			fn := NewConnectFunc(cfg, "tcp", DefaultSLogger())
			conn, err := fn.Call(context.Background(), tt.addresses)

			assert.Equal(t, tt.wantDials, dials)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, conn)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, conn)
			conn.Close()
		})
	}
}

// Call stops trying addresses once the context is done.
func TestConnectFuncStopsOnCanceledContext(t *testing.T) {
	dials := 0
	cfg := NewConfig()
	cfg.Dialer = &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			dials++
			return nil, ctx.Err()
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fn := NewConnectFunc(cfg, "tcp", DefaultSLogger())
	_, err := fn.Call(ctx, []netip.AddrPort{
		netip.MustParseAddrPort("192.0.2.1:443"),
		netip.MustParseAddrPort("192.0.2.2:443"),
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, dials)
}

// Call propagates the caller's context deadline to the dialer.
func TestConnectFuncCallerContextDeadline(t *testing.T) {
	cfg := NewConfig()
	expectedTimeout := 5 * time.Second
	cfg.Dialer = &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.True(t, time.Until(deadline) <= expectedTimeout)
			return nil, errors.New("expected error")
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), expectedTimeout)
	defer cancel()

	fn := NewConnectFunc(cfg, "udp", DefaultSLogger())
	_, err := fn.Call(ctx, []netip.AddrPort{netip.MustParseAddrPort("8.8.8.8:53")})

	require.Error(t, err)
}

// Call emits a connectStart/connectDone pair per attempt.
func TestConnectFuncLogging(t *testing.T) {
	logger, records := newCapturingLogger()

	cfg := NewConfig()
	cfg.Dialer = &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			return nil, errors.New("connection refused")
		},
	}

	fn := NewConnectFunc(cfg, "tcp", logger)
	_, _ = fn.Call(context.Background(), []netip.AddrPort{
		netip.MustParseAddrPort("192.0.2.1:443"),
		netip.MustParseAddrPort("192.0.2.2:443"),
	})

	assert.Equal(t, []string{"connectStart", "connectDone", "connectStart", "connectDone"}, records.Messages())
}
