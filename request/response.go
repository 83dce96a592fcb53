// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import "net/http"

// A Response is the result of sending a Request, as populated by the
// transport at the end of the pipeline.
type Response struct {
	// Status is the HTTP status code, e.g. 200.
	Status int

	// Header contains the response header fields.
	Header http.Header

	// Content is the response body. It is nil if the response has no
	// body. Whoever ends up holding the response is responsible for
	// closing it.
	Content Stream

	id string
}

// NewResponse returns a new Response correlated with req.
func NewResponse(req *Request, status int, header http.Header, content Stream) *Response {
	if header == nil {
		header = make(http.Header)
	}
	return &Response{
		Status:  status,
		Header:  header,
		Content: content,
		id:      req.ClientRequestID(),
	}
}

// ClientRequestID returns the correlation id of the request which
// produced this response.
func (r *Response) ClientRequestID() string {
	return r.id
}

// Close closes the response content, if there is any.
func (r *Response) Close() error {
	if r.Content == nil {
		return nil
	}
	return r.Content.Close()
}
