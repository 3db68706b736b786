// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"net/http"
	"net/url"
	"strings"
)

// redacted replaces secret values in logs.
const redacted = "[REDACTED]"

// redactQueryKeys lists query parameters that carry credentials.
var redactQueryKeys = []string{"api_key", "access_token", "token"}

// Redactor removes secrets from requests before they are logged.
//
// A nil *Redactor redacts using [DefaultRedactHeaders].
type Redactor struct {
	// Names lists the header names to redact (case insensitive).
	Names []string

	// Disabled turns redaction off.
	Disabled bool
}

// NewRedactor returns a [*Redactor] configured from cfg.
func NewRedactor(cfg *Config) *Redactor {
	return &Redactor{Names: cfg.RedactHeaders, Disabled: cfg.TraceSecrets}
}

func (rd *Redactor) names() []string {
	if rd == nil {
		return DefaultRedactHeaders
	}
	return rd.Names
}

func (rd *Redactor) disabled() bool {
	return rd != nil && rd.Disabled
}

func (rd *Redactor) isSecret(name string) bool {
	for _, candidate := range rd.names() {
		if strings.EqualFold(candidate, name) {
			return true
		}
	}
	return false
}

// Headers returns a copy of pairs with secret values replaced.
func (rd *Redactor) Headers(pairs []Pair) []Pair {
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if !rd.disabled() && rd.isSecret(p.Key) {
			p.Value = redacted
		}
		out = append(out, p)
	}
	return out
}

// HTTPHeader returns a copy of header with secret values replaced.
func (rd *Redactor) HTTPHeader(header http.Header) http.Header {
	out := make(http.Header, len(header))
	for key, values := range header {
		if !rd.disabled() && rd.isSecret(key) {
			values = []string{redacted}
		}
		out[key] = append([]string(nil), values...)
	}
	return out
}

// URL returns u as a string with credential query parameters replaced.
func (rd *Redactor) URL(u *url.URL) string {
	if rd.disabled() || u.RawQuery == "" {
		return u.String()
	}
	parts := strings.Split(u.RawQuery, "&")
	for idx, part := range parts {
		key, _, _ := strings.Cut(part, "=")
		for _, secret := range redactQueryKeys {
			if strings.EqualFold(key, secret) {
				parts[idx] = key + "=" + url.QueryEscape(redacted)
			}
		}
	}
	copied := *u
	copied.RawQuery = strings.Join(parts, "&")
	return copied.String()
}
