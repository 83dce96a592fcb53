// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpipe

import (
	"context"
	"net/url"

	"github.com/gogama/httpipe/async"
	"github.com/gogama/httpipe/request"
)

// A Pipeline routes every call through a fixed, ordered chain of
// policies ending in a transport.
//
// The chain is fixed when the pipeline is constructed and is never
// mutated afterward, so a Pipeline is safe for concurrent use by
// multiple goroutines and should be reused rather than created per
// call.
//
// A call can be made in either of two execution models, chosen by the
// caller: Send drives the blocking entry point of every policy, and
// SendAsync drives the suspension-capable one. The two are never mixed
// within one call.
type Pipeline struct {
	policies   []Policy
	classifier request.Classifier
}

// New constructs a pipeline which routes calls through policies, in
// order, and finally through transport, which must produce the
// response.
func New(transport Policy, policies ...Policy) *Pipeline {
	if transport == nil {
		panic("httpipe: nil transport")
	}
	chain := make([]Policy, 0, len(policies)+1)
	for _, p := range policies {
		if p == nil {
			panic("httpipe: nil policy")
		}
		chain = append(chain, p)
	}
	chain = append(chain, transport)
	return &Pipeline{
		policies:   chain,
		classifier: request.DefaultClassifier,
	}
}

// WithClassifier returns a shallow copy of p whose messages use c to
// decide whether a response is an error. The policy chain is shared.
func (p *Pipeline) WithClassifier(c request.Classifier) *Pipeline {
	if c == nil {
		panic("httpipe: nil classifier")
	}
	p2 := new(Pipeline)
	*p2 = *p
	p2.classifier = c
	return p2
}

// Policies returns a copy of the pipeline's policy chain, including
// the transport as the last element.
func (p *Pipeline) Policies() []Policy {
	c := make([]Policy, len(p.policies))
	copy(c, p.policies)
	return c
}

// NewMessage creates the message for one call of req through p.
func (p *Pipeline) NewMessage(ctx context.Context, req *request.Request) *request.Message {
	return request.NewMessage(ctx, req, p.classifier)
}

// Send routes m through the pipeline using the blocking entry points.
// When Send returns without error, m.Response is populated.
func (p *Pipeline) Send(m *request.Message) error {
	return Next{policies: p.policies}.Process(m)
}

// SendAsync routes m through the pipeline using the suspension-capable
// entry points. The outcome is delivered once on the returned channel.
func (p *Pipeline) SendAsync(m *request.Message) <-chan error {
	return Next{policies: p.policies}.ProcessAsync(m)
}

// Do sends req, blocking, and returns the response.
//
// The caller is responsible for closing the response content.
func (p *Pipeline) Do(ctx context.Context, req *request.Request) (*request.Response, error) {
	m := p.NewMessage(ctx, req)
	if err := p.Send(m); err != nil {
		return nil, err
	}
	return m.Response, nil
}

// DoAsync sends req using the suspension-capable entry points. The
// response, or error, is delivered once on the returned channel.
func (p *Pipeline) DoAsync(ctx context.Context, req *request.Request) <-chan async.Result[*request.Response] {
	m := p.NewMessage(ctx, req)
	return async.Call(func() (*request.Response, error) {
		if err := async.Await(m.Context(), p.SendAsync(m)); err != nil {
			return nil, err
		}
		return m.Response, nil
	})
}

// Get issues a GET to the specified URL.
func (p *Pipeline) Get(ctx context.Context, url string) (*request.Response, error) {
	req, err := request.New("GET", url, nil)
	if err != nil {
		return nil, err
	}
	return p.Do(ctx, req)
}

// Head issues a HEAD to the specified URL.
func (p *Pipeline) Head(ctx context.Context, url string) (*request.Response, error) {
	req, err := request.New("HEAD", url, nil)
	if err != nil {
		return nil, err
	}
	return p.Do(ctx, req)
}

// Post issues a POST to the specified URL.
//
// The body parameter may be nil for an empty body, or may be any of the
// types supported by request.NewContent, namely: string; []byte;
// io.Reader; io.ReadSeeker; io.ReadCloser; and request.Content.
func (p *Pipeline) Post(ctx context.Context, url, contentType string, body interface{}) (*request.Response, error) {
	c, err := request.NewContent(body)
	if err != nil {
		return nil, err
	}
	req, err := request.New("POST", url, c)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return p.Do(ctx, req)
}

// PostForm issues a POST to the specified URL, with data's keys and
// values URL-encoded as the request body.
//
// The Content-Type header is set to application/x-www-form-urlencoded.
func (p *Pipeline) PostForm(ctx context.Context, url string, data url.Values) (*request.Response, error) {
	return p.Post(ctx, url, "application/x-www-form-urlencoded", data.Encode())
}
