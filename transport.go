// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpipe

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gogama/httpipe/async"
	"github.com/gogama/httpipe/request"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package.
	Do(r *http.Request) (*http.Response, error)
}

// IdleCloser is the interface that wraps the basic CloseIdleConnections
// method.
type IdleCloser interface {
	CloseIdleConnections()
}

// A Transport is the terminal policy of a pipeline. It sends the
// message's request using an HTTPDoer and populates the message's
// response. It never calls the rest of the pipeline.
//
// The request content is streamed to the HTTPDoer as it is produced,
// without being buffered. The response content is exposed as a
// non-seekable request.Stream over the network body, unless Buffered
// is set, in which case the body is read in full and exposed as a
// seekable stream.
//
// Connection failures are returned as *url.Error. If the message
// context is done, the outcome is a *async.CanceledError instead.
//
// The zero value uses http.DefaultClient. Transport is safe for
// concurrent use by multiple goroutines.
type Transport struct {
	// HTTPDoer sends the requests. If nil, http.DefaultClient is used.
	HTTPDoer HTTPDoer

	// Buffered causes the response body to be read in full before the
	// transport returns.
	Buffered bool
}

// NewTransport returns a Transport which sends requests with d.
func NewTransport(d HTTPDoer) *Transport {
	return &Transport{HTTPDoer: d}
}

// Process sends the request, blocking until the response headers (and
// the body, if buffered) have been received.
func (t *Transport) Process(m *request.Message, _ Next) error {
	return t.send(m)
}

// ProcessAsync sends the request on a new goroutine.
func (t *Transport) ProcessAsync(m *request.Message, _ Next) <-chan error {
	return async.Go(func() error {
		return t.send(m)
	})
}

// CloseIdleConnections invokes the same method on the transport's
// underlying HTTPDoer, if it has one.
func (t *Transport) CloseIdleConnections() {
	if ic, ok := t.doer().(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (t *Transport) doer() HTTPDoer {
	if t.HTTPDoer == nil {
		return http.DefaultClient
	}

	return t.HTTPDoer
}

func (t *Transport) send(m *request.Message) error {
	m.Response = nil
	ctx := m.Context()
	if err := async.Check(ctx); err != nil {
		return err
	}
	r := toHTTPRequest(ctx, m.Request)
	resp, err := t.doer().Do(r)
	if err != nil {
		return wrapErr(ctx, m.Request, err)
	}
	var content request.Stream
	if t.Buffered {
		b, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return wrapErr(ctx, m.Request, err)
		}
		content = request.NewBufferedStream(b)
	} else if resp.Body != nil && resp.Body != http.NoBody {
		content = request.NewStream(resp.Body)
	}
	m.Response = request.NewResponse(m.Request, resp.StatusCode, resp.Header, content)
	return nil
}

// toHTTPRequest creates the net/http request corresponding to req.
// The request body is fed from the content producer through a pipe,
// so the content is never held in memory by the transport.
func toHTTPRequest(ctx context.Context, req *request.Request) *http.Request {
	r := &http.Request{
		Method:     req.Method,
		URL:        req.URL,
		Header:     req.Header.Clone(),
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Host:       req.URL.Host,
	}
	if c := req.Content; c != nil {
		n, ok := c.Len()
		if ok && n == 0 {
			r.Body = http.NoBody
		} else {
			r.Body = pipeContent(ctx, c)
			r.GetBody = func() (io.ReadCloser, error) {
				return pipeContent(ctx, c), nil
			}
			if ok {
				r.ContentLength = n
			} else {
				r.ContentLength = -1
			}
		}
	}
	return r.WithContext(ctx)
}

func pipeContent(ctx context.Context, c request.Content) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		_, err := c.WriteToContext(ctx, pw)
		_ = pw.CloseWithError(err)
	}()
	return pr
}

func wrapErr(ctx context.Context, req *request.Request, err error) error {
	if async.IsCanceled(err) {
		return err
	}
	if ctxErr := async.Check(ctx); ctxErr != nil {
		return ctxErr
	}
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(req.Method),
		URL: req.URL.String(),
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
