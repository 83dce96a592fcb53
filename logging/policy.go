// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gogama/httpipe"
	"github.com/gogama/httpipe/async"
	"github.com/gogama/httpipe/request"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
)

// DelayWarningThreshold is the elapsed time above which a call is
// reported with a ResponseDelay record.
const DelayWarningThreshold = 3 * time.Second

// An Option configures a Policy.
type Option func(p *Policy)

// WithClock sets the clock used to time calls. The default is the
// system clock.
func WithClock(c clock.Clock) Option {
	return func(p *Policy) {
		p.clock = c
	}
}

// WithFallbackLogger sets the logger on which failures of the
// diagnostics themselves are reported. The default discards them.
func WithFallbackLogger(l zerolog.Logger) Option {
	return func(p *Policy) {
		p.fallback = l
	}
}

// A Policy reports diagnostic records for each call to a Sink. A
// Policy is safe for concurrent use by multiple goroutines.
type Policy struct {
	sink     Sink
	clock    clock.Clock
	fallback zerolog.Logger
}

// NewPolicy returns a logging policy which reports to sink. A nil sink
// is treated as NopSink.
func NewPolicy(sink Sink, opts ...Option) *Policy {
	if sink == nil {
		sink = NopSink{}
	}
	p := &Policy{
		sink:     sink,
		clock:    clock.New(),
		fallback: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process reports the call, using blocking reads for any content
// logging.
func (p *Policy) Process(m *request.Message, next httpipe.Next) error {
	if !p.enabled() {
		return next.Process(m)
	}

	if err := p.logRequest(m, false); err != nil {
		return err
	}
	start := p.clock.Now()
	if err := next.Process(m); err != nil {
		return err
	}
	return p.logResponse(m, p.clock.Since(start), false)
}

// ProcessAsync reports the call, using cancellable reads for any
// content logging.
func (p *Policy) ProcessAsync(m *request.Message, next httpipe.Next) <-chan error {
	if !p.enabled() {
		return next.ProcessAsync(m)
	}

	return async.Go(func() error {
		if err := p.logRequest(m, true); err != nil {
			return err
		}
		start := p.clock.Now()
		if err := async.Await(m.Context(), next.ProcessAsync(m)); err != nil {
			return err
		}
		return p.logResponse(m, p.clock.Since(start), true)
	})
}

func (p *Policy) logRequest(m *request.Message, suspend bool) error {
	req := m.Request
	p.emit(&Record{
		Event:           RequestStarted,
		ClientRequestID: req.ClientRequestID(),
		Method:          req.Method,
		URL:             req.URL.String(),
		Header:          req.Header.Clone(),
	})

	if req.Content == nil || !p.contentEnabled(false) {
		return nil
	}
	var buf bytes.Buffer
	var err error
	if suspend {
		_, err = req.Content.WriteToContext(m.Context(), &buf)
	} else {
		_, err = req.Content.WriteTo(&buf)
	}
	if async.IsCanceled(err) {
		return err
	} else if err != nil {
		p.fallback.Warn().
			Err(err).
			Str("client_request_id", req.ClientRequestID()).
			Msg("httpipe/logging: failed to read request content")
		return nil
	}
	enc, _ := TextEncoding(req.Header.Get("Content-Type"))
	p.emit(p.contentRecord(RequestContent, m, buf.Bytes(), enc))
	return nil
}

func (p *Policy) logResponse(m *request.Message, elapsed time.Duration, suspend bool) error {
	resp := m.Response
	if resp == nil {
		return nil
	}

	isError := m.IsError()
	enc, _ := TextEncoding(resp.Header.Get("Content-Type"))
	contentEnabled := resp.Content != nil && p.contentEnabled(isError)
	wrap := contentEnabled && !resp.Content.CanSeek()
	eager := contentEnabled && !wrap
	if wrap {
		resp.Content = newLoggingStream(p, resp.Content, resp.ClientRequestID(), isError, enc)
	}

	if isError {
		p.emit(p.responseRecord(ErrorResponse, m, elapsed))
	}

	if eager {
		b, err := readAndRewind(m.Context(), resp.Content, suspend)
		if async.IsCanceled(err) {
			return err
		} else if err != nil {
			p.fallback.Warn().
				Err(err).
				Str("client_request_id", resp.ClientRequestID()).
				Msg("httpipe/logging: failed to read response content")
		} else {
			if isError {
				p.emit(p.contentRecord(ErrorResponseContent, m, b, enc))
			}
			p.emit(p.contentRecord(ResponseContent, m, b, enc))
		}
	}

	p.emit(p.responseRecord(Response, m, elapsed))

	if elapsed > DelayWarningThreshold {
		p.emit(p.responseRecord(ResponseDelay, m, elapsed))
	}

	return nil
}

// readAndRewind reads the rest of a seekable stream and seeks back to
// where reading started. The context is checked before each read in
// both modes, so cancellation is observed identically.
func readAndRewind(ctx context.Context, s request.Stream, suspend bool) ([]byte, error) {
	pos, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	chunk := make([]byte, 32*1024)
	for {
		var n int
		if suspend {
			n, err = s.ReadContext(ctx, chunk)
		} else if err = async.Check(ctx); err == nil {
			n, err = s.Read(chunk)
		}
		buf.Write(chunk[:n])
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
	}
	if _, err = s.Seek(pos, io.SeekStart); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Policy) responseRecord(evt Event, m *request.Message, elapsed time.Duration) *Record {
	r := &Record{
		Event:           evt,
		ClientRequestID: m.Response.ClientRequestID(),
		Method:          m.Request.Method,
		URL:             m.Request.URL.String(),
		Status:          m.Response.Status,
	}
	if evt == ResponseDelay || evt == Response {
		r.Elapsed = elapsed
	}
	if evt != ResponseDelay {
		r.Header = m.Response.Header.Clone()
	}
	return r
}

func (p *Policy) contentRecord(evt Event, m *request.Message, b []byte, enc encoding.Encoding) *Record {
	text, isText := decode(enc, b)
	r := &Record{
		Event:           evt,
		ClientRequestID: m.Request.ClientRequestID(),
		Method:          m.Request.Method,
		URL:             m.Request.URL.String(),
		Content:         b,
		IsText:          isText,
		Text:            text,
	}
	if m.Response != nil && evt != RequestContent {
		r.Status = m.Response.Status
	}
	return r
}

// emit sends r to the sink. A panicking sink is reported on the
// fallback logger and otherwise ignored.
func (p *Policy) emit(r *Record) {
	defer func() {
		if x := recover(); x != nil {
			p.fallback.Error().
				Str("event", r.Event.Name()).
				Str("client_request_id", r.ClientRequestID).
				Interface("panic", x).
				Msg("httpipe/logging: diagnostics sink panicked")
		}
	}()
	p.sink.Emit(r)
}

func (p *Policy) enabled() (on bool) {
	defer func() {
		if x := recover(); x != nil {
			p.fallback.Error().Interface("panic", x).Msg("httpipe/logging: diagnostics sink panicked")
			on = false
		}
	}()
	return p.sink.Enabled()
}

func (p *Policy) contentEnabled(isError bool) (on bool) {
	defer func() {
		if x := recover(); x != nil {
			p.fallback.Error().Interface("panic", x).Msg("httpipe/logging: diagnostics sink panicked")
			on = false
		}
	}()
	return p.sink.ContentEnabled(isError)
}
