// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/gogama/httpipe/async"
)

// ErrNotSeekable is returned by Seek on a stream which cannot be
// repositioned.
var ErrNotSeekable = errors.New("httpipe/request: stream is not seekable")

// ErrClosed is returned by reads on a stream which has been closed.
var ErrClosed = errors.New("httpipe/request: read on closed stream")

// A Stream is the content of a response.
//
// Read is the blocking read. ReadContext is the suspension-capable
// read: it yields while the underlying read is in flight and returns
// a *async.CanceledError promptly if ctx is done first. Both have the
// same chunk-boundary behavior.
//
// CanSeek reports whether the stream may be repositioned and re-read.
// A stream which cannot seek may be consumed only once, so code other
// than the final consumer must never read from it directly.
type Stream interface {
	io.ReadSeekCloser
	ReadContext(ctx context.Context, p []byte) (int, error)
	CanSeek() bool
}

// NewStream returns a non-seekable Stream over rc, typically a network
// response body.
//
// If a ReadContext call is cancelled while the underlying read is in
// flight, rc is closed to abort the read and every later read fails.
func NewStream(rc io.ReadCloser) Stream {
	return &bodyStream{rc: rc}
}

type bodyStream struct {
	rc   io.ReadCloser
	err  error
	once sync.Once
	cerr error
}

func (s *bodyStream) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.rc.Read(p)
}

func (s *bodyStream) ReadContext(ctx context.Context, p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if err := async.Check(ctx); err != nil {
		return 0, err
	}
	ch := async.Call(func() (int, error) {
		return s.rc.Read(p)
	})
	select {
	case r := <-ch:
		return r.Value, r.Err
	case <-ctx.Done():
		// Closing the body aborts the read. It must have returned
		// before p is handed back to the caller.
		s.err = &async.CanceledError{Err: ctx.Err()}
		_ = s.Close()
		<-ch
		return 0, s.err
	}
}

func (s *bodyStream) Seek(int64, int) (int64, error) {
	return 0, ErrNotSeekable
}

func (s *bodyStream) CanSeek() bool {
	return false
}

func (s *bodyStream) Close() error {
	s.once.Do(func() {
		s.cerr = s.rc.Close()
		if s.err == nil {
			s.err = ErrClosed
		}
	})
	return s.cerr
}

// NewBufferedStream returns a seekable Stream over b.
func NewBufferedStream(b []byte) Stream {
	return &bufferedStream{Reader: bytes.NewReader(b)}
}

type bufferedStream struct {
	*bytes.Reader
	closed bool
}

func (s *bufferedStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	return s.Reader.Read(p)
}

func (s *bufferedStream) ReadContext(ctx context.Context, p []byte) (int, error) {
	if err := async.Check(ctx); err != nil {
		return 0, err
	}
	return s.Read(p)
}

func (s *bufferedStream) CanSeek() bool {
	return true
}

func (s *bufferedStream) Close() error {
	s.closed = true
	return nil
}

// OnClose returns a Stream which behaves exactly like s, except that
// fn is called once, after s is closed for the first time.
func OnClose(s Stream, fn func()) Stream {
	return &onCloseStream{Stream: s, fn: fn}
}

type onCloseStream struct {
	Stream
	fn   func()
	once sync.Once
	err  error
}

func (s *onCloseStream) Close() error {
	s.once.Do(func() {
		s.err = s.Stream.Close()
		s.fn()
	})
	return s.err
}
