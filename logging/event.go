// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logging

// An Event identifies the kind of a diagnostic Record.
type Event int

const (
	// RequestStarted identifies the event that occurs before the
	// request is passed to the rest of the pipeline.
	//
	// The record carries the method, URL and request headers.
	RequestStarted Event = iota
	// RequestContent identifies the event that carries the request
	// content. It occurs after RequestStarted, only if the request has
	// content and the sink enables content logging.
	RequestContent
	// ErrorResponse identifies the event that occurs after the rest of
	// the pipeline has returned a response which the message
	// classifier considers an error.
	ErrorResponse
	// ErrorResponseContent identifies the event that carries the whole
	// content of a seekable error response.
	ErrorResponseContent
	// ResponseContent identifies the event that carries the whole
	// content of a seekable response. For an error response, it occurs
	// after ErrorResponseContent with the same content.
	ResponseContent
	// Response identifies the event that occurs once the response has
	// been fully reported, regardless of its status.
	//
	// Response never occurs if the rest of the pipeline failed, or if
	// the call was cancelled while the response content was being
	// read for logging.
	Response
	// ResponseDelay identifies the event that occurs after Response if
	// the rest of the pipeline took longer than DelayWarningThreshold.
	ResponseDelay
	// ResponseContentBlock identifies the event that carries one chunk
	// of a non-seekable response, as it is read by the caller.
	//
	// Blocks of a response are numbered consecutively from zero.
	ResponseContentBlock
	// ErrorResponseContentBlock identifies the event that duplicates
	// each ResponseContentBlock of an error response.
	ErrorResponseContentBlock
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"RequestStarted",
	"RequestContent",
	"ErrorResponse",
	"ErrorResponseContent",
	"ResponseContent",
	"Response",
	"ResponseDelay",
	"ResponseContentBlock",
	"ErrorResponseContentBlock",
}

// Events returns a slice containing all events which can be reported
// for a call, in the order in which they would occur.
func Events() []Event {
	return []Event{
		RequestStarted,
		RequestContent,
		ErrorResponse,
		ErrorResponseContent,
		ResponseContent,
		Response,
		ResponseDelay,
		ResponseContentBlock,
		ErrorResponseContentBlock,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}

func (evt Event) isContent() bool {
	switch evt {
	case RequestContent, ErrorResponseContent, ResponseContent, ResponseContentBlock, ErrorResponseContentBlock:
		return true
	default:
		return false
	}
}
