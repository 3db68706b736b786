// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource is a [RequestSource] returning fixed values.
type stubSource struct {
	method   string
	path     string
	headers  []Pair
	query    []Pair
	body     []byte
	bodyErr  error
	bodyRead bool
}

func (s *stubSource) Method() (string, error) { return s.method, nil }
func (s *stubSource) Path() (string, error) { return s.path, nil }
func (s *stubSource) Headers() ([]Pair, error) { return s.headers, nil }
func (s *stubSource) QueryItems() ([]Pair, error) { return s.query, nil }
func (s *stubSource) Body() ([]byte, error) {
	s.bodyRead = true
	return s.body, s.bodyErr
}

// The now playing request resolves to the expected URL without a body.
func TestToWireRequestNowPlaying(t *testing.T) {
	b := NewRequestBuilder[testHeaders, testQuery, Empty, testResult]().
		WithMethod("GET").
		WithPath("/3/movie/now_playing").
		WithHeaders(testHeaders{Authorization: "Bearer k", Accept: "application/json"}).
		WithQuery(testQuery{Page: 1, Language: "en"})

	wr, err := ToWireRequest(b, "https://api.example.com")

	require.NoError(t, err)
	assert.Equal(t, "GET", wr.Method())
	assert.Equal(t, "https://api.example.com/3/movie/now_playing?page=1&language=en", wr.URL().String())
	assert.Nil(t, wr.Body())
	assert.Equal(t, []Pair{
		{Key: "Authorization", Value: "Bearer k"},
		{Key: "accept", Value: "application/json"},
	}, wr.Header())
}

// ToWireRequest joins paths, attaches queries, and resolves bodies.
func TestToWireRequest(t *testing.T) {
	tests := []struct {
		// name describes what this test case verifies.
		name string

		// src is the request source.
		src *stubSource

		// baseURL is the base URL.
		baseURL string

		// wantURL is the expected URL.
		wantURL string

		// wantBody is the expected body.
		wantBody []byte

		// wantBodyRead indicates whether the body should be resolved.
		wantBodyRead bool

		// wantErr is the expected error, if any.
		wantErr error
	}{
		{
			name:    "empty query has no question mark",
			src:     &stubSource{method: "GET", path: "/3/genre/movie/list"},
			baseURL: "https://api.example.com/",
			wantURL: "https://api.example.com/3/genre/movie/list",
		},
		{
			name:    "path without leading slash",
			src:     &stubSource{method: "GET", path: "3/configuration/countries"},
			baseURL: "https://api.example.com",
			wantURL: "https://api.example.com/3/configuration/countries",
		},
		{
			name:    "absolute path ignores base URL",
			src:     &stubSource{method: "GET", path: "https://other.example.org/x"},
			baseURL: "https://api.example.com",
			wantURL: "https://other.example.org/x",
		},
		{
			name:    "query items are escaped in order",
			src:     &stubSource{method: "GET", path: "/search", query: []Pair{{"query", "fight club"}, {"a", "&"}}},
			baseURL: "https://api.example.com",
			wantURL: "https://api.example.com/search?query=fight+club&a=%26",
		},
		{
			name:         "POST resolves the body",
			src:          &stubSource{method: "POST", path: "/favorite", body: []byte(`{"x":1}`)},
			baseURL:      "https://api.example.com",
			wantURL:      "https://api.example.com/favorite",
			wantBody:     []byte(`{"x":1}`),
			wantBodyRead: true,
		},
		{
			name:         "nil body becomes empty for POST",
			src:          &stubSource{method: "POST", path: "/favorite"},
			baseURL:      "https://api.example.com",
			wantURL:      "https://api.example.com/favorite",
			wantBody:     []byte{},
			wantBodyRead: true,
		},
		{
			name:    "GET never resolves the body",
			src:     &stubSource{method: "GET", path: "/x", bodyErr: errors.New("must not be read")},
			baseURL: "https://api.example.com",
			wantURL: "https://api.example.com/x",
		},
		{
			name:         "body failure",
			src:          &stubSource{method: "POST", path: "/x", bodyErr: ErrEncoding},
			baseURL:      "https://api.example.com",
			wantBodyRead: true,
			wantErr:      ErrEncoding,
		},
		{
			name:    "relative URL without base",
			src:     &stubSource{method: "GET", path: "/x"},
			wantErr: ErrURLConstruction,
		},
		{
			name:    "unparseable URL",
			src:     &stubSource{method: "GET", path: "http://[::1"},
			wantErr: ErrURLConstruction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wr, err := ToWireRequest(tt.src, tt.baseURL)

			assert.Equal(t, tt.wantBodyRead, tt.src.bodyRead)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, wr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, wr.URL().String())
			assert.Equal(t, tt.wantBody, wr.Body())
		})
	}
}

// Accessors return copies that do not alias the request.
func TestWireRequestImmutable(t *testing.T) {
	wr := mustWireRequest(&stubSource{
		method:  "POST",
		path:    "https://api.example.com/x",
		headers: []Pair{{"Accept", "application/json"}},
		body:    []byte("abc"),
	}, "")

	wr.Header()[0].Value = "changed"
	wr.Body()[0] = 'z'
	wr.URL().Path = "/changed"

	assert.Equal(t, "application/json", wr.Header()[0].Value)
	assert.Equal(t, "abc", string(wr.Body()))
	assert.Equal(t, "/x", wr.URL().Path)
}

// NewHTTPRequest preserves header names and attaches the body.
func TestWireRequestNewHTTPRequest(t *testing.T) {
	wr := mustWireRequest(&stubSource{
		method:  "POST",
		path:    "https://api.example.com/x",
		headers: []Pair{{"accept", "application/json"}, {"X-Multi", "1"}, {"X-Multi", "2"}},
		body:    []byte("abc"),
	}, "")

	req, err := wr.NewHTTPRequest(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"application/json"}, req.Header["accept"])
	assert.Equal(t, []string{"1", "2"}, req.Header["X-Multi"])
	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(body))
}

// Curl renders the request with secrets redacted.
func TestWireRequestCurl(t *testing.T) {
	wr := mustWireRequest(&stubSource{
		method:  "POST",
		path:    "https://api.example.com/x",
		headers: []Pair{{"Authorization", "Bearer s3cr3t"}},
		query:   []Pair{{"api_key", "s3cr3t"}},
		body:    []byte(`{"a":1}`),
	}, "")

	assert.Equal(t,
		`curl -i -X POST -H "Authorization: [REDACTED]" -d '{"a":1}' "https://api.example.com/x?api_key=%5BREDACTED%5D"`,
		wr.Curl(nil))
	assert.Contains(t, wr.Curl(&Redactor{Disabled: true}), "Bearer s3cr3t")
}

// WireFunc uses the configured base URL.
func TestWireFunc(t *testing.T) {
	cfg := NewConfig()
	cfg.BaseURL = "https://api.example.com"

	wr, err := NewWireFunc(cfg).Call(context.Background(), &stubSource{method: "GET", path: "/x"})

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/x", wr.URL().String())
}
