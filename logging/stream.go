// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"context"
	"sync"

	"github.com/gogama/httpipe/request"
	"golang.org/x/text/encoding"
)

// loggingStream reports every non-empty chunk read from a response
// stream as a numbered content block. Reads from a stream are never
// concurrent, so the block counter needs no synchronization.
type loggingStream struct {
	s       request.Stream
	p       *Policy
	id      string
	isError bool
	enc     encoding.Encoding
	block   int
	once    sync.Once
	err     error
}

func newLoggingStream(p *Policy, s request.Stream, id string, isError bool, enc encoding.Encoding) *loggingStream {
	return &loggingStream{
		s:       s,
		p:       p,
		id:      id,
		isError: isError,
		enc:     enc,
	}
}

func (ls *loggingStream) Read(b []byte) (int, error) {
	n, err := ls.s.Read(b)
	ls.log(b[:n])
	return n, err
}

func (ls *loggingStream) ReadContext(ctx context.Context, b []byte) (int, error) {
	n, err := ls.s.ReadContext(ctx, b)
	ls.log(b[:n])
	return n, err
}

func (ls *loggingStream) Seek(offset int64, whence int) (int64, error) {
	return ls.s.Seek(offset, whence)
}

func (ls *loggingStream) CanSeek() bool {
	return ls.s.CanSeek()
}

func (ls *loggingStream) Close() error {
	ls.once.Do(func() {
		ls.err = ls.s.Close()
	})
	return ls.err
}

func (ls *loggingStream) log(b []byte) {
	if len(b) == 0 {
		return
	}
	chunk := append([]byte(nil), b...)
	text, isText := decode(ls.enc, chunk)
	ls.p.emit(&Record{
		Event:           ResponseContentBlock,
		ClientRequestID: ls.id,
		Content:         chunk,
		IsText:          isText,
		Text:            text,
		Block:           ls.block,
	})
	if ls.isError {
		ls.p.emit(&Record{
			Event:           ErrorResponseContentBlock,
			ClientRequestID: ls.id,
			Content:         chunk,
			IsText:          isText,
			Text:            text,
			Block:           ls.block,
		})
	}
	ls.block++
}
