// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"net/http"
	urlpkg "net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/http/httpguts"
)

// A Request is an outbound HTTP request travelling through a pipeline.
//
// Policies may modify the request's headers (for example to sign it)
// before delegating to the rest of the pipeline. They should not
// replace the URL or method of a request after it has been signed.
type Request struct {
	// Method specifies the HTTP method (GET, POST, PUT, etc.).
	Method string

	// URL specifies the target of the request: scheme, host, path and
	// query.
	URL *urlpkg.URL

	// Header contains the request header fields to be sent. Values of
	// the same name keep their insertion order.
	Header http.Header

	// Content is the optional request body. A nil Content means no body
	// is sent.
	Content Content

	id string
}

// New returns a new Request given a method, URL, and optional content.
//
// An empty method means GET. The method must be a valid HTTP token and
// the URL must parse. A new, globally unique, client request id is
// assigned to the request.
func New(method, url string, content Content) (*Request, error) {
	if method == "" {
		method = http.MethodGet
	}
	if !httpguts.ValidHeaderFieldName(method) {
		return nil, fmt.Errorf("httpipe/request: invalid method %q", method)
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, err
	}
	u.Host = removeEmptyPort(u.Host)
	return &Request{
		Method:  method,
		URL:     u,
		Header:  make(http.Header),
		Content: content,
		id:      uuid.NewString(),
	}, nil
}

// ClientRequestID returns the correlation id assigned to the request
// when it was created. The id never changes.
func (r *Request) ClientRequestID() string {
	return r.id
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort is lifted verbatim from net/http/http.go
//
// removeEmptyPort strips the empty port in ":port" to ""
// as mandated by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
