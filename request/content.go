// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"errors"
	"io"

	"github.com/gogama/httpipe/async"
)

const badBodyTypeMsg = "httpipe/request: invalid type (for body use nil, " +
	"string, []byte, io.Reader, io.ReadSeeker or io.ReadCloser)"

// chunkSize is the size of the chunks in which content is copied
// into a sink. The context is checked before every chunk.
const chunkSize = 32 * 1024

// Content produces a request body by writing it into a sink.
//
// Content is replayable: every call to WriteTo or WriteToContext writes
// the entire body from the beginning. This lets a signing policy hash
// the body, a logging policy copy it, and the transport send it,
// without any of them disturbing the others.
//
// A Content belongs to one in-flight call and is not safe for
// concurrent use.
type Content interface {
	// WriteTo writes the whole body into w, blocking until it is
	// done. It returns the number of bytes written.
	WriteTo(w io.Writer) (int64, error)

	// WriteToContext writes the whole body into w, checking ctx
	// between chunks. If ctx is done, it stops early and returns a
	// *async.CanceledError.
	WriteToContext(ctx context.Context, w io.Writer) (int64, error)

	// Len returns the length of the body and true if it is known in
	// advance, or 0 and false otherwise.
	Len() (int64, bool)
}

// Bytes returns a Content which writes b. The slice is not copied and
// must not be modified while the content is in use.
func Bytes(b []byte) Content {
	return bytesContent(b)
}

// String returns a Content which writes s.
func String(s string) Content {
	return bytesContent(s)
}

type bytesContent []byte

func (c bytesContent) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c)
	return int64(n), err
}

func (c bytesContent) WriteToContext(ctx context.Context, w io.Writer) (int64, error) {
	var written int64
	for len(c) > 0 {
		if err := async.Check(ctx); err != nil {
			return written, err
		}
		chunk := c
		if len(chunk) > chunkSize {
			chunk = chunk[:chunkSize]
		}
		n, err := w.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, err
		}
		c = c[n:]
	}
	return written, nil
}

func (c bytesContent) Len() (int64, bool) {
	return int64(len(c)), true
}

// Reader returns a Content which streams from r without buffering it.
//
// The current offset of r, at the moment Reader is called, is taken to
// be the start of the body. Each write seeks back to that offset, so
// the body can be written repeatedly.
func Reader(r io.ReadSeeker) (Content, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err = r.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}
	return &readerContent{r: r, start: start, length: end - start}, nil
}

type readerContent struct {
	r      io.ReadSeeker
	start  int64
	length int64
}

func (c *readerContent) WriteTo(w io.Writer) (int64, error) {
	if _, err := c.r.Seek(c.start, io.SeekStart); err != nil {
		return 0, err
	}
	return io.Copy(w, io.LimitReader(c.r, c.length))
}

func (c *readerContent) WriteToContext(ctx context.Context, w io.Writer) (int64, error) {
	if _, err := c.r.Seek(c.start, io.SeekStart); err != nil {
		return 0, err
	}
	return copyContext(ctx, w, io.LimitReader(c.r, c.length))
}

func (c *readerContent) Len() (int64, bool) {
	return c.length, true
}

// NewContent converts a generic body parameter into a Content.
//
// The body parameter may be nil, or it may be a string, []byte,
// io.ReadSeeker, io.Reader, or io.ReadCloser. The conversion logic is:
//
// • If body is nil, a nil Content and no error is returned.
//
// • If body is a string or []byte, a Content over it is returned.
//
// • If body is an io.ReadSeeker, it is streamed as by Reader.
//
// • If body is any other io.Reader, it is read to the end and buffered,
// because a one-shot reader cannot be replayed. If it is also an
// io.Closer, it is closed after buffering.
//
// • If body is any other type, a nil Content and an error is returned.
func NewContent(body interface{}) (Content, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case Content:
		return x, nil
	case string:
		return String(x), nil
	case []byte:
		return Bytes(x), nil
	case io.ReadSeeker:
		return Reader(x)
	case io.ReadCloser:
		b, err := io.ReadAll(x)
		if err != nil {
			return nil, err
		}
		if err = x.Close(); err != nil {
			return nil, err
		}
		return Bytes(b), nil
	case io.Reader:
		return NewContent(io.NopCloser(x))
	default:
		return nil, errors.New(badBodyTypeMsg)
	}
}

func copyContext(ctx context.Context, w io.Writer, r io.Reader) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		if err := async.Check(ctx); err != nil {
			return written, err
		}
		n, err := r.Read(buf)
		if n > 0 {
			m, werr := w.Write(buf[:n])
			written += int64(m)
			if werr != nil {
				return written, werr
			}
			if m < n {
				return written, io.ErrShortWrite
			}
		}
		if err == io.EOF {
			return written, nil
		} else if err != nil {
			return written, err
		}
	}
}
