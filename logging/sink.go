// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"net/http"
	"sync/atomic"
	"time"
)

// A Record is one diagnostic event.
type Record struct {
	// Event is the kind of event.
	Event Event
	// ClientRequestID is the correlation id of the call.
	ClientRequestID string
	// Method and URL identify the request. They are set on every
	// record except content blocks.
	Method string
	URL    string
	// Status is the response status code, or zero for request events
	// and content blocks.
	Status int
	// Header is the request header for RequestStarted, and the
	// response header for ErrorResponse and Response, copied when the
	// event is emitted.
	Header http.Header
	// Content is the raw content, for content events.
	Content []byte
	// IsText reports whether Content was classified as text, in which
	// case Text holds the decoded content.
	IsText bool
	Text   string
	// Block is the block number of a content block event.
	Block int
	// Elapsed is the time taken by the rest of the pipeline. It is set
	// on Response and ResponseDelay.
	Elapsed time.Duration
}

// A Sink receives diagnostic records.
//
// Implementations must be safe for concurrent use. Emit must not
// retain the record's Content after returning.
type Sink interface {
	// Enabled reports whether the sink wants any records at all.
	Enabled() bool
	// ContentEnabled reports whether the sink wants content records
	// for calls whose response is, or is not, an error.
	ContentEnabled(isError bool) bool
	// Emit reports one record.
	Emit(r *Record)
}

var disabled atomic.Bool

// Enable turns diagnostics on or off for the whole process. The sinks
// in this package report themselves disabled while diagnostics are
// off. Diagnostics are on by default.
func Enable(on bool) {
	disabled.Store(!on)
}

// Enabled reports whether diagnostics are on for the process.
func Enabled() bool {
	return !disabled.Load()
}

// NopSink is a Sink which is never enabled.
type NopSink struct{}

// Enabled returns false.
func (NopSink) Enabled() bool { return false }

// ContentEnabled returns false.
func (NopSink) ContentEnabled(bool) bool { return false }

// Emit does nothing.
func (NopSink) Emit(*Record) {}
