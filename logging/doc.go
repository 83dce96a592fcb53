// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package logging provides a pipeline policy which reports diagnostic
events about each call to a Sink.

The policy reports the start of the request and, if content logging is
enabled, the request content. After the rest of the pipeline returns,
it reports the response, the response content, and a ResponseDelay
warning if the call took longer than DelayWarningThreshold. Content
read eagerly from a seekable response is reported before the Response
event, so that a call cancelled while its content is being read never
reports a Response.

Response content is reported without consuming the stream. A seekable
stream is read once in full, reported as one event, and rewound. A
non-seekable stream is wrapped in a decorator which reports every
non-empty chunk read by the caller as a numbered content block.

When the sink is not enabled, the policy does no work at all and simply
delegates to the rest of the pipeline. Failures inside the sink, such
as panics, never affect the outcome of the call; they are reported on
a separate fallback logger (see WithFallbackLogger).

Three sinks are provided: NopSink, which discards everything;
HandlerGroup, which dispatches events to per-event handler chains; and
ZerologSink, which writes structured log entries with
github.com/rs/zerolog. Every sink also honours the process-wide switch
controlled by Enable.
*/
package logging
