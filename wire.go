// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// RequestSource is the accessor contract consumed by [ToWireRequest].
//
// [*RequestBuilder] implements it; so may any other type that can resolve
// the parts of a request.
type RequestSource interface {
	Method() (string, error)
	Path() (string, error)
	Headers() ([]Pair, error)
	QueryItems() ([]Pair, error)
	Body() ([]byte, error)
}

// WireRequest is a fully resolved request ready for a [Performer].
//
// A WireRequest is immutable: accessors return copies.
type WireRequest struct {
	method string
	url    *url.URL
	header []Pair
	body   []byte
}

// Method returns the HTTP method token.
func (r *WireRequest) Method() string {
	return r.method
}

// URL returns a copy of the absolute request URL.
func (r *WireRequest) URL() *url.URL {
	u := *r.url
	return &u
}

// Header returns a copy of the ordered request headers.
func (r *WireRequest) Header() []Pair {
	return slices.Clone(r.header)
}

// Body returns a copy of the body, or nil when the request carries none.
func (r *WireRequest) Body() []byte {
	return bytes.Clone(r.body)
}

// NewHTTPRequest converts the wire request into an [*http.Request] bound to ctx.
//
// Header names are sent as supplied, without canonicalization.
func (r *WireRequest) NewHTTPRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader = http.NoBody
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.url.String(), body)
	if err != nil {
		return nil, err
	}
	for _, h := range r.header {
		req.Header[h.Key] = append(req.Header[h.Key], h.Value)
	}
	return req, nil
}

// Curl returns an equivalent curl command line, redacting secrets according to rd.
func (r *WireRequest) Curl(rd *Redactor) string {
	var sb strings.Builder
	sb.WriteString("curl -i -X ")
	sb.WriteString(r.method)
	for _, h := range rd.Headers(r.header) {
		sb.WriteString(` -H "`)
		sb.WriteString(h.Key)
		sb.WriteString(": ")
		sb.WriteString(h.Value)
		sb.WriteString(`"`)
	}
	if r.body != nil {
		sb.WriteString(" -d '")
		sb.WriteString(string(r.body))
		sb.WriteString("'")
	}
	sb.WriteString(` "`)
	sb.WriteString(rd.URL(r.url))
	sb.WriteString(`"`)
	return sb.String()
}

// ToWireRequest resolves src into a [*WireRequest].
//
// Relative paths are joined to baseURL. The query component is present only
// when src yields at least one query item. The body is resolved only for
// methods other than GET. Any failure is returned as is and no partial
// request is produced.
func ToWireRequest(src RequestSource, baseURL string) (*WireRequest, error) {
	// 1. resolve and parse the path
	path, err := src.Path()
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(joinURL(baseURL, path))
	if err != nil {
		return nil, &URLError{Stage: "components", Err: err}
	}

	// 2. attach the query items
	items, err := src.QueryItems()
	if err != nil {
		return nil, err
	}
	u.RawQuery = encodeQuery(items)
	u.ForceQuery = false

	// 3. make sure we have an absolute URL
	if !u.IsAbs() || u.Host == "" {
		return nil, &URLError{Stage: "url"}
	}

	// 4. resolve the method
	method, err := src.Method()
	if err != nil {
		return nil, err
	}

	// 5. resolve the headers
	header, err := src.Headers()
	if err != nil {
		return nil, err
	}

	// 6. resolve the body unless this is a GET
	var body []byte
	if method != http.MethodGet {
		if body, err = src.Body(); err != nil {
			return nil, err
		}
		if body == nil {
			body = []byte{}
		}
	}

	wr := &WireRequest{
		method: method,
		url:    u,
		header: slices.Clone(header),
		body:   body,
	}
	return wr, nil
}

// joinURL prepends baseURL to relative paths.
func joinURL(baseURL, path string) string {
	if baseURL == "" || strings.Contains(path, "://") {
		return path
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + path
}

// encodeQuery URL-encodes items preserving their order.
func encodeQuery(items []Pair) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, url.QueryEscape(item.Key)+"="+url.QueryEscape(item.Value))
	}
	return strings.Join(parts, "&")
}

// WireFunc converts a [RequestSource] into a [*WireRequest].
//
// All fields are safe to modify after construction but before first use.
// Fields must not be mutated concurrently with calls to [Call].
type WireFunc struct {
	// BaseURL is joined to relative paths.
	//
	// Set by [NewWireFunc] from [Config.BaseURL].
	BaseURL string
}

// NewWireFunc returns a new [*WireFunc].
func NewWireFunc(cfg *Config) *WireFunc {
	return &WireFunc{BaseURL: cfg.BaseURL}
}

var _ Func[RequestSource, *WireRequest] = &WireFunc{}

// Call implements [Func].
func (op *WireFunc) Call(ctx context.Context, src RequestSource) (*WireRequest, error) {
	return ToWireRequest(src, op.BaseURL)
}
