// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"

	"github.com/bassosimone/dnscodec"
	"github.com/bassosimone/dnsoverhttps"
	"github.com/bassosimone/dnsoverstream"
	"github.com/bassosimone/minest"
	"github.com/miekg/dns"
)

// DNS protocols supported by [*DNSResolver].
const (
	DNSProtocolUDP   = "udp"
	DNSProtocolTCP   = "tcp"
	DNSProtocolTLS   = "dot"
	DNSProtocolHTTPS = "doh"
)

// DNSResolver is a [Resolver] querying a specific DNS server.
//
// Each lookup opens a fresh connection to Server, sends an A query, and
// closes the connection. Use it as [Config.Resolver] to bypass the system
// resolver. The Config Resolver field is never consulted, so a config may
// reference the resolver that uses it.
//
// All fields are safe to modify after construction but before first use.
// Fields must not be mutated concurrently with calls to [LookupHost].
type DNSResolver struct {
	// Config provides the dialer, the TLS template, and the logging hooks.
	//
	// Set by the constructors to the user-provided config.
	Config *Config

	// Logger is the [SLogger] to use.
	//
	// Set by the constructors to the user-provided logger.
	Logger SLogger

	// Protocol is one of the DNSProtocol constants.
	Protocol string

	// Server is the DNS server address.
	Server netip.AddrPort

	// ServerName is the TLS server name for "dot" and "doh".
	ServerName string

	// URL is the DNS-over-HTTPS endpoint for "doh".
	URL string
}

// NewDNSOverUDPResolver returns a [*DNSResolver] using DNS-over-UDP.
func NewDNSOverUDPResolver(cfg *Config, server netip.AddrPort, logger SLogger) *DNSResolver {
	return &DNSResolver{Config: cfg, Logger: logger, Protocol: DNSProtocolUDP, Server: server}
}

// NewDNSOverTCPResolver returns a [*DNSResolver] using DNS-over-TCP.
func NewDNSOverTCPResolver(cfg *Config, server netip.AddrPort, logger SLogger) *DNSResolver {
	return &DNSResolver{Config: cfg, Logger: logger, Protocol: DNSProtocolTCP, Server: server}
}

// NewDNSOverTLSResolver returns a [*DNSResolver] using DNS-over-TLS.
func NewDNSOverTLSResolver(cfg *Config, server netip.AddrPort, serverName string, logger SLogger) *DNSResolver {
	return &DNSResolver{
		Config:     cfg,
		Logger:     logger,
		Protocol:   DNSProtocolTLS,
		Server:     server,
		ServerName: serverName,
	}
}

// NewDNSOverHTTPSResolver returns a [*DNSResolver] using DNS-over-HTTPS.
//
// The URL host is used as the TLS server name.
func NewDNSOverHTTPSResolver(cfg *Config, server netip.AddrPort, endpoint string, logger SLogger) (*DNSResolver, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, &URLError{Stage: "url"}
	}
	r := &DNSResolver{
		Config:     cfg,
		Logger:     logger,
		Protocol:   DNSProtocolHTTPS,
		Server:     server,
		ServerName: u.Hostname(),
		URL:        endpoint,
	}
	return r, nil
}

var _ Resolver = &DNSResolver{}

// LookupHost implements [Resolver] returning the IPv4 addresses of host.
func (r *DNSResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	query := dnscodec.NewQuery(host, dns.TypeA)
	resp, err := r.exchange(ctx, host, query)
	if err != nil {
		return nil, err
	}
	return resp.RecordsA()
}

func (r *DNSResolver) exchange(ctx context.Context, domain string, query *dnscodec.Query) (*dnscodec.Response, error) {
	switch r.Protocol {
	case DNSProtocolUDP:
		return r.exchangeUDP(ctx, domain, query)
	case DNSProtocolTCP:
		return r.exchangeTCP(ctx, domain, query)
	case DNSProtocolTLS:
		return r.exchangeTLS(ctx, domain, query)
	case DNSProtocolHTTPS:
		return r.exchangeHTTPS(ctx, domain, query)
	default:
		return nil, fmt.Errorf("apiflow: unsupported DNS protocol %q", r.Protocol)
	}
}

func (r *DNSResolver) connect(ctx context.Context, network string) (net.Conn, error) {
	op := NewConnectFunc(r.Config, network, r.Logger)
	return op.Call(ctx, []netip.AddrPort{r.Server})
}

func (r *DNSResolver) handshake(ctx context.Context, conn net.Conn, alpn ...string) (TLSConn, error) {
	op := NewTLSHandshakeFunc(r.Config, r.ServerName, r.Logger)
	op.Config = op.Config.Clone()
	op.Config.NextProtos = alpn
	return op.Call(ctx, conn)
}

func (r *DNSResolver) exchangeUDP(ctx context.Context, domain string, query *dnscodec.Query) (*dnscodec.Response, error) {
	conn, err := r.connect(ctx, "udp")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	lc := newDNSExchangeLog(r, conn, deadline)
	txp := minest.NewDNSOverUDPTransport(dnsUnusedDialer{}, r.Server)
	txp.ObserveRawQuery = lc.observeQuery
	txp.ObserveRawResponse = lc.observeResponse

	lc.start(domain)
	resp, err := txp.ExchangeWithConn(ctx, conn, query)
	lc.done(domain, err)
	return resp, err
}

func (r *DNSResolver) exchangeTCP(ctx context.Context, domain string, query *dnscodec.Query) (*dnscodec.Response, error) {
	conn, err := r.connect(ctx, "tcp")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	lc := newDNSExchangeLog(r, conn, deadline)
	streamDialer := dnsoverstream.NewStreamOpenerDialerTCP(dnsUnusedDialer{})
	txp := dnsoverstream.NewTransport(streamDialer, r.Server)
	txp.ObserveRawQuery = lc.observeQuery
	txp.ObserveRawResponse = lc.observeResponse

	lc.start(domain)
	resp, err := txp.ExchangeWithStreamOpener(ctx, dnsoverstream.NewTCPStreamOpener(conn), query)
	lc.done(domain, err)
	return resp, err
}

func (r *DNSResolver) exchangeTLS(ctx context.Context, domain string, query *dnscodec.Query) (*dnscodec.Response, error) {
	conn, err := r.connect(ctx, "tcp")
	if err != nil {
		return nil, err
	}
	tconn, err := r.handshake(ctx, conn, "dot")
	if err != nil {
		return nil, err
	}
	defer tconn.Close()

	deadline, _ := ctx.Deadline()
	lc := newDNSExchangeLog(r, tconn, deadline)
	streamDialer := dnsoverstream.NewStreamOpenerDialerTCP(dnsUnusedDialer{})
	txp := dnsoverstream.NewTransport(streamDialer, r.Server)
	txp.ObserveRawQuery = lc.observeQuery
	txp.ObserveRawResponse = lc.observeResponse

	lc.start(domain)
	resp, err := txp.ExchangeWithStreamOpener(ctx, dnsoverstream.NewTLSStreamOpener(tconn), query)
	lc.done(domain, err)
	return resp, err
}

func (r *DNSResolver) exchangeHTTPS(ctx context.Context, domain string, query *dnscodec.Query) (*dnscodec.Response, error) {
	conn, err := r.connect(ctx, "tcp")
	if err != nil {
		return nil, err
	}
	tconn, err := r.handshake(ctx, conn, "h2", "http/1.1")
	if err != nil {
		return nil, err
	}
	hc, err := NewHTTPConnFunc[TLSConn](r.Config, r.Logger).Call(ctx, tconn)
	if err != nil {
		tconn.Close()
		return nil, err
	}
	defer hc.Close()

	deadline, _ := ctx.Deadline()
	lc := newDNSExchangeLog(r, tconn, deadline)
	lc.start(domain)
	httpReq, queryMsg, err := dnsoverhttps.NewRequestWithHook(ctx, query, r.URL, lc.observeQuery)
	if err != nil {
		lc.done(domain, err)
		return nil, err
	}
	httpResp, err := hc.RoundTrip(httpReq)
	if err != nil {
		lc.done(domain, err)
		return nil, err
	}
	resp, err := dnsoverhttps.ReadResponseWithHook(ctx, httpResp, queryMsg, lc.observeResponse)
	lc.done(domain, err)
	return resp, err
}
