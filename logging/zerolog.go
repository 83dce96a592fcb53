// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"net/http"
	"sort"

	"github.com/rs/zerolog"
)

const redacted = "REDACTED"

var sensitiveHeaders = map[string]bool{
	"Authorization":       true,
	"Proxy-Authorization": true,
	"Cookie":              true,
	"Set-Cookie":          true,
}

// A ZerologSink writes records as structured zerolog entries.
//
// Request, response and delay records are written at info level, or
// warn level for error responses and delays. Content records are
// written at debug level, so content logging is only enabled when the
// logger admits debug entries.
//
// The values of credential-bearing headers, such as Authorization and
// Cookie, are never written.
type ZerologSink struct {
	// Logger receives the entries.
	Logger zerolog.Logger
	// LogContent enables content records for successful calls.
	LogContent bool
	// LogErrorContent enables content records for calls whose
	// response is an error.
	LogErrorContent bool
}

// NewZerologSink returns a sink writing to l, with content logging
// enabled for error responses only.
func NewZerologSink(l zerolog.Logger) *ZerologSink {
	return &ZerologSink{
		Logger:          l,
		LogErrorContent: true,
	}
}

// Enabled reports whether diagnostics are on and the logger is not
// disabled.
func (s *ZerologSink) Enabled() bool {
	return Enabled() && admits(s.Logger, zerolog.InfoLevel)
}

// ContentEnabled reports whether content records are wanted for the
// outcome and the logger admits debug entries.
func (s *ZerologSink) ContentEnabled(isError bool) bool {
	if !Enabled() || !admits(s.Logger, zerolog.DebugLevel) {
		return false
	}
	if isError {
		return s.LogErrorContent
	}
	return s.LogContent
}

// Emit writes r as one log entry.
func (s *ZerologSink) Emit(r *Record) {
	var e *zerolog.Event
	switch {
	case r.Event.isContent():
		e = s.Logger.Debug()
	case r.Event == ErrorResponse || r.Event == ResponseDelay:
		e = s.Logger.Warn()
	default:
		e = s.Logger.Info()
	}
	if e == nil {
		return
	}

	e = e.Str("event", r.Event.Name()).Str("client_request_id", r.ClientRequestID)
	if r.Method != "" {
		e = e.Str("method", r.Method)
	}
	if r.URL != "" {
		e = e.Str("url", r.URL)
	}
	if r.Status != 0 {
		e = e.Int("status", r.Status)
	}
	if r.Header != nil {
		e = e.Dict("headers", headerDict(r.Header))
	}
	switch r.Event {
	case ResponseContentBlock, ErrorResponseContentBlock:
		e = e.Int("block", r.Block)
	case Response, ResponseDelay:
		e = e.Dur("elapsed", r.Elapsed)
	}
	if r.Event.isContent() {
		if r.IsText {
			e = e.Str("content", r.Text)
		} else {
			e = e.Hex("content", r.Content)
		}
	}
	e.Msg(r.Event.Name())
}

func admits(l zerolog.Logger, level zerolog.Level) bool {
	return l.GetLevel() <= level && zerolog.GlobalLevel() <= level
}

func headerDict(h http.Header) *zerolog.Event {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	d := zerolog.Dict()
	for _, name := range names {
		if sensitiveHeaders[http.CanonicalHeaderKey(name)] {
			d = d.Str(name, redacted)
		} else {
			d = d.Strs(name, h[name])
		}
	}
	return d
}
