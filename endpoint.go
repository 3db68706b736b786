// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/netip"
	"strconv"
	"time"
)

// Resolver maps a domain name to IP addresses.
//
// The [*net.Resolver] and [*DNSResolver] types satisfy this interface.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// errNoUsableAddress indicates that the resolver returned no IP addresses.
var errNoUsableAddress = errors.New("apiflow: no usable address for host")

// NewEndpointFunc returns a new [*EndpointFunc].
//
// The cfg argument contains the common configuration for apiflow operations.
//
// The logger argument is the [SLogger] to use for structured logging.
func NewEndpointFunc(cfg *Config, logger SLogger) *EndpointFunc {
	return &EndpointFunc{
		ErrClassifier: cfg.ErrClassifier,
		Logger:        logger,
		Resolver:      cfg.Resolver,
		TimeNow:       cfg.TimeNow,
	}
}

// EndpointFunc turns a "host:port" target into candidate [netip.AddrPort].
//
// IP literals are returned without resolving. Domain names are resolved
// using Resolver, preserving the order of the returned addresses.
//
// All fields are safe to modify after construction but before first use.
// Fields must not be mutated concurrently with calls to [Call].
type EndpointFunc struct {
	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewEndpointFunc] from [Config.ErrClassifier].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use.
	//
	// Set by [NewEndpointFunc] to the user-provided logger.
	Logger SLogger

	// Resolver is the [Resolver] to use.
	//
	// Set by [NewEndpointFunc] from [Config.Resolver].
	Resolver Resolver

	// TimeNow is the function to get the current time.
	//
	// Set by [NewEndpointFunc] from [Config.TimeNow].
	TimeNow func() time.Time
}

var _ Func[string, []netip.AddrPort] = &EndpointFunc{}

// Call implements [Func].
func (op *EndpointFunc) Call(ctx context.Context, target string) ([]netip.AddrPort, error) {
	host, portString, err := net.SplitHostPort(target)
	if err != nil {
		return nil, err
	}
	port, err := strconv.ParseUint(portString, 10, 16)
	if err != nil {
		return nil, err
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.AddrPort{netip.AddrPortFrom(addr, uint16(port))}, nil
	}

	t0 := op.TimeNow()
	deadline, _ := ctx.Deadline()
	op.logLookupStart(host, t0, deadline)
	addrs, err := op.Resolver.LookupHost(ctx, host)
	endpoints := parseEndpoints(addrs, uint16(port))
	if err == nil && len(endpoints) <= 0 {
		err = errNoUsableAddress
	}
	op.logLookupDone(host, t0, deadline, addrs, err)
	if err != nil {
		return nil, err
	}
	return endpoints, nil
}

func parseEndpoints(addrs []string, port uint16) (out []netip.AddrPort) {
	for _, s := range addrs {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			continue
		}
		out = append(out, netip.AddrPortFrom(addr.Unmap(), port))
	}
	return
}

func (op *EndpointFunc) logLookupStart(host string, t0, deadline time.Time) {
	op.Logger.Info(
		"dnsLookupStart",
		slog.Time("deadline", deadline),
		slog.String("dnsDomain", host),
		slog.Time("t", t0),
	)
}

func (op *EndpointFunc) logLookupDone(host string, t0, deadline time.Time, addrs []string, err error) {
	op.Logger.Info(
		"dnsLookupDone",
		slog.Time("deadline", deadline),
		slog.Any("dnsAddrs", addrs),
		slog.String("dnsDomain", host),
		slog.Any("err", err),
		slog.String("errClass", op.ErrClassifier.Classify(err)),
		slog.Time("t0", t0),
		slog.Time("t", op.TimeNow()),
	)
}
