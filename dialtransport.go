// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
)

// DialTransport is an [http.RoundTripper] using one connection per request.
//
// For each request it resolves the host, connects to the first reachable
// address, performs the TLS handshake for https URLs (using the URL host as
// the server name), and performs the round trip over an [*HTTPConn]. The
// connection is closed when the response body is closed, or right away if
// the round trip fails. Canceling the request context closes the connection.
//
// All fields are safe to modify after construction but before first use.
type DialTransport struct {
	// Config is the configuration used to build each pipeline stage.
	//
	// Set by [NewDialTransport] to the user-provided config.
	Config *Config

	// Logger is the [SLogger] to use.
	//
	// Set by [NewDialTransport] to the user-provided logger.
	Logger SLogger
}

// NewDialTransport returns a new [*DialTransport].
//
// The cfg argument contains the common configuration for apiflow operations.
//
// The logger argument is the [SLogger] to use for structured logging.
func NewDialTransport(cfg *Config, logger SLogger) *DialTransport {
	return &DialTransport{Config: cfg, Logger: logger}
}

var _ http.RoundTripper = &DialTransport{}

// RoundTrip implements [http.RoundTripper].
func (txp *DialTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	host := req.URL.Hostname()
	port := req.URL.Port()

	var dial Func[string, *HTTPConn]
	switch req.URL.Scheme {
	case "https":
		if port == "" {
			port = "443"
		}
		dial = Compose5(
			Func[string, []netip.AddrPort](NewEndpointFunc(txp.Config, txp.Logger)),
			Func[[]netip.AddrPort, net.Conn](NewConnectFunc(txp.Config, "tcp", txp.Logger)),
			Func[net.Conn, net.Conn](NewCancelWatchFunc()),
			Func[net.Conn, TLSConn](NewTLSHandshakeFunc(txp.Config, host, txp.Logger)),
			Func[TLSConn, *HTTPConn](NewHTTPConnFunc[TLSConn](txp.Config, txp.Logger)),
		)
	case "http":
		if port == "" {
			port = "80"
		}
		dial = Compose4(
			Func[string, []netip.AddrPort](NewEndpointFunc(txp.Config, txp.Logger)),
			Func[[]netip.AddrPort, net.Conn](NewConnectFunc(txp.Config, "tcp", txp.Logger)),
			Func[net.Conn, net.Conn](NewCancelWatchFunc()),
			Func[net.Conn, *HTTPConn](NewHTTPConnFunc[net.Conn](txp.Config, txp.Logger)),
		)
	default:
		return nil, fmt.Errorf("apiflow: unsupported URL scheme %q", req.URL.Scheme)
	}

	hc, err := dial.Call(ctx, net.JoinHostPort(host, port))
	if err != nil {
		return nil, err
	}
	resp, err := hc.RoundTrip(req)
	if err != nil {
		hc.Close()
		return nil, err
	}
	resp.Body = &connClosingBody{ReadCloser: resp.Body, conn: hc}
	return resp, nil
}
