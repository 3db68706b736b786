// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEchoHandler replies with the request method and path.
func newEchoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, r.Method+" "+r.URL.RequestURI())
	})
}

// DialTransport performs plaintext and TLS round trips on a fresh connection.
func TestDialTransport(t *testing.T) {
	tests := []struct {
		// name describes what this test case verifies.
		name string

		// newServer starts the test server.
		newServer func(http.Handler) *httptest.Server
	}{
		{name: "http", newServer: httptest.NewServer},
		{name: "https", newServer: httptest.NewTLSServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := tt.newServer(newEchoHandler())
			defer srv.Close()

			cfg := NewConfig()
			if srv.Certificate() != nil {
				pool := x509.NewCertPool()
				pool.AddCert(srv.Certificate())
				cfg.TLSConfig = &tls.Config{RootCAs: pool, NextProtos: []string{"h2", "http/1.1"}}
			}
			logger, records := newCapturingLogger()
			txp := NewDialTransport(cfg, logger)

			req, err := http.NewRequestWithContext(context.Background(), "GET", srv.URL+"/3/movie?page=1", nil)
			require.NoError(t, err)
			resp, err := txp.RoundTrip(req)
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.NoError(t, resp.Body.Close())

			assert.Equal(t, 200, resp.StatusCode)
			assert.Equal(t, "GET /3/movie?page=1", string(body))
			assert.Contains(t, records.Messages(), "connectStart")
			assert.Contains(t, records.Messages(), "httpRoundTripDone")
			if tt.name == "https" {
				assert.Contains(t, records.Messages(), "tlsHandshakeDone")
			}
		})
	}
}

// DialTransport rejects schemes other than http and https.
func TestDialTransportUnsupportedScheme(t *testing.T) {
	req, err := http.NewRequest("GET", "ftp://example.com/", nil)
	require.NoError(t, err)

	_, err = NewDialTransport(NewConfig(), DefaultSLogger()).RoundTrip(req)

	require.ErrorContains(t, err, "unsupported URL scheme")
}

// An HTTPPerformer using the default transport talks to a real server.
func TestHTTPPerformerOverDialTransport(t *testing.T) {
	srv := httptest.NewServer(newEchoHandler())
	defer srv.Close()

	cfg := NewConfig()
	cfg.BaseURL = srv.URL
	c := NewClient(cfg, DefaultSLogger())
	b := NewRequestBuilder[Empty, testQuery, Empty, string]().
		WithMethod("GET").
		WithPath("/3/movie/now_playing").
		WithQuery(testQuery{Page: 1, Language: "en"}).
		WithDecoder(textDecoder{})

	env, err := Do(context.Background(), c, b)

	require.NoError(t, err)
	assert.Equal(t, "GET /3/movie/now_playing?page=1&language=en", env.Body)
}

// textDecoder decodes the body as a plain string.
type textDecoder struct{}

func (textDecoder) Decode(data []byte, v any) error {
	*(v.(*string)) = string(data)
	return nil
}
