// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/httpipe/transient"
)

const nilCtxMsg = "httpipe/request: nil context"

// A Message carries one logical call through a pipeline.
//
// A Message is created per call, flows forward through the policies in
// chain order, and back through them in reverse order. It is owned by
// exactly one in-flight call and must not be shared across calls.
//
// Policies may set values on a Message using its SetValue method and
// read them back using the Value method.
type Message struct {
	// Request is the request being sent. It is never nil.
	Request *Request

	// Response is the response populated by the transport at the end
	// of the pipeline. It is nil until the transport has run, and is
	// nil after an attempt which ended in error.
	Response *Response

	// Classifier decides whether the response is an error. If nil,
	// DefaultClassifier is used.
	Classifier Classifier

	// Start is the time the message was created.
	Start time.Time

	// Attempt is the zero-based number of the current attempt to send
	// the request. It is only ever incremented by a retry policy.
	Attempt int

	// AttemptTimeouts is the count of attempts which timed out.
	AttemptTimeouts int

	// Err is the error returned by the most recent attempt to process
	// the rest of the pipeline, as recorded by a retry policy. It is
	// consulted by retry and timeout policies.
	Err error

	ctx  context.Context
	data context.Context
}

// NewMessage returns a new Message for req. The context controls
// cancellation of the whole call, and must not be nil.
func NewMessage(ctx context.Context, req *Request, classifier Classifier) *Message {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	return &Message{
		Request:    req,
		Classifier: classifier,
		Start:      time.Now(),
		ctx:        ctx,
	}
}

// Context returns the message's context. Every long-running step
// observes it, and once it is done in-flight work stops.
//
// The returned context is always non-nil; it defaults to the
// background context.
func (m *Message) Context() context.Context {
	if m.ctx != nil {
		return m.ctx
	}
	return context.Background()
}

// SetContext replaces the message's context. A policy which narrows
// the context (to add a deadline or a tracing span, for example) must
// derive the new context from the current one, and should restore the
// previous context before returning.
func (m *Message) SetContext(ctx context.Context) {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	m.ctx = ctx
}

// StatusCode returns the status code of the response. If there is no
// response, 0 is returned.
func (m *Message) StatusCode() int {
	if m.Response == nil {
		return 0
	}

	return m.Response.Status
}

// Header returns the response headers. If there is no response, the
// nil header is returned.
//
// Note that a nil return value is always safe for read-only operations,
// since http.Header is a map type.
func (m *Message) Header() http.Header {
	if m.Response == nil {
		var nilHeader http.Header
		return nilHeader
	}

	return m.Response.Header
}

// IsError consults the message's classifier to decide whether the
// response is an error. It must only be called once the response is
// populated.
func (m *Message) IsError() bool {
	c := m.Classifier
	if c == nil {
		c = DefaultClassifier
	}
	return c.IsError(m)
}

// Duration returns the time elapsed since the message was created.
func (m *Message) Duration() time.Duration {
	return time.Since(m.Start)
}

// Timeout indicates whether Err currently contains a non-nil value
// which indicates a timeout.
func (m *Message) Timeout() bool {
	return transient.Categorize(m.Err) == transient.Timeout
}

// SetValue allows policies to store arbitrary data in the message.
//
// The key must follow the same rules as the key parameter in
// context.WithValue, namely it:
//
// • it may not be nil;
//
// • it must be comparable;
//
// • it should not be of type string or any other built-in type to avoid
// collisions between different policies putting data into the same
// message.
func (m *Message) SetValue(key, value interface{}) {
	ctx := m.data
	if ctx == nil {
		ctx = context.Background()
	}

	m.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this message for key,
// or nil if there is no value associated with key.
func (m *Message) Value(key interface{}) interface{} {
	ctx := m.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
