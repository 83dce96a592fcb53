// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpipe

import (
	"net/http"

	"github.com/gogama/httpipe/request"
)

const (
	// ClientRequestIDHeader is the default header on which
	// ClientRequestIDPolicy sends a request's correlation id.
	ClientRequestIDHeader = "x-ms-client-request-id"

	// ReturnClientRequestIDHeader asks the service to echo the
	// correlation id back on the response.
	ReturnClientRequestIDHeader = "x-ms-return-client-request-id"
)

type mismatchKey struct{}

// ClientRequestIDPolicy returns a policy which sends each request's
// correlation id on the named header (ClientRequestIDHeader if header
// is empty), and asks the service to echo it back.
//
// If the service echoes a different id, the echoed value is recorded
// on the message and can be retrieved with EchoedClientRequestID.
func ClientRequestIDPolicy(header string) Policy {
	if header == "" {
		header = ClientRequestIDHeader
	}
	header = http.CanonicalHeaderKey(header)
	return Synchronous(HookFuncs{
		BeforeFunc: func(m *request.Message) {
			m.Request.Header.Set(header, m.Request.ClientRequestID())
			m.Request.Header.Set(ReturnClientRequestIDHeader, "true")
		},
		AfterFunc: func(m *request.Message) {
			echoed := m.Header().Get(header)
			if echoed != "" && echoed != m.Request.ClientRequestID() {
				m.SetValue(mismatchKey{}, echoed)
			}
		},
	})
}

// EchoedClientRequestID returns the correlation id echoed by the
// service if it did not match the one sent, and whether there was such
// a mismatch.
func EchoedClientRequestID(m *request.Message) (string, bool) {
	s, ok := m.Value(mismatchKey{}).(string)
	return s, ok
}
