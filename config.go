// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"crypto/tls"
	"net"
	"time"
)

// Config holds common configuration for apiflow operations.
//
// Pass this to constructor functions to pre-wire dependencies.
// All fields have sensible defaults set by [NewConfig].
type Config struct {
	// BaseURL is prepended to relative request paths by [ToWireRequest].
	//
	// Set by [NewConfig] to the empty string, meaning that paths must be absolute.
	BaseURL string

	// Codec is the encoder and decoder of requests executed by [*Client]
	// whose builders do not set their own (see [*RequestBuilder.WithDefaultCodec]).
	//
	// Set by [NewConfig] to [JSONCodec].
	Codec Codec

	// Dialer is used by [*ConnectFunc].
	//
	// Set by [NewConfig] to [*net.Dialer].
	Dialer Dialer

	// Resolver is used by [*EndpointFunc] to map domain names to addresses.
	//
	// Set by [NewConfig] to [*net.Resolver]. Use [*DNSResolver] to resolve
	// using an explicit DNS server and protocol.
	Resolver Resolver

	// TLSConfig is the template for TLS handshakes performed by [*DialTransport].
	//
	// Set by [NewConfig] to a config offering "h2" and "http/1.1" via ALPN.
	// The ServerName is filled in per request.
	TLSConfig *tls.Config

	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to [DefaultErrClassifier].
	ErrClassifier ErrClassifier

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time

	// RedactHeaders lists header names whose values are never logged.
	//
	// Set by [NewConfig] to [DefaultRedactHeaders].
	RedactHeaders []string

	// TraceSecrets disables redaction when logging requests.
	//
	// Set by [NewConfig] to false. Only enable this for local debugging.
	TraceSecrets bool

	// MaxBodySize is the maximum number of response body bytes read by [*HTTPPerformer].
	//
	// Set by [NewConfig] to 8 MiB.
	MaxBodySize int64
}

// DefaultRedactHeaders contains the headers redacted by default.
var DefaultRedactHeaders = []string{"Authorization", "Cookie", "Proxy-Authorization", "X-Api-Key"}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		BaseURL:  "",
		Codec:    JSONCodec{},
		Dialer:   &net.Dialer{},
		Resolver: &net.Resolver{},
		TLSConfig: &tls.Config{
			NextProtos: []string{"h2", "http/1.1"},
		},
		ErrClassifier: DefaultErrClassifier,
		TimeNow:       time.Now,
		RedactHeaders: DefaultRedactHeaders,
		TraceSecrets:  false,
		MaxBodySize:   8 << 20,
	}
}
