// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package tracing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gogama/httpipe"
	"github.com/gogama/httpipe/async"
	"github.com/gogama/httpipe/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type mode struct {
	name string
	send func(p *httpipe.Pipeline, m *request.Message) error
}

var modes = []mode{
	{"blocking", func(p *httpipe.Pipeline, m *request.Message) error { return p.Send(m) }},
	{"async", func(p *httpipe.Pipeline, m *request.Message) error { return async.Await(m.Context(), p.SendAsync(m)) }},
}

// terminal responds with a fixed status or error, recording the
// traceparent header and the span context it sees.
type terminal struct {
	status      int
	err         error
	traceparent string
	spanCtx     trace.SpanContext
}

func (t *terminal) Process(m *request.Message, _ httpipe.Next) error {
	t.traceparent = m.Request.Header.Get("Traceparent")
	t.spanCtx = trace.SpanContextFromContext(m.Context())
	if t.err != nil {
		return t.err
	}
	m.Response = request.NewResponse(m.Request, t.status, http.Header{}, nil)
	return nil
}

func (t *terminal) ProcessAsync(m *request.Message, next httpipe.Next) <-chan error {
	return async.Done(t.Process(m, next))
}

func newPolicy(t *testing.T) (*Policy, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewPolicy(WithTracerProvider(tp), WithPropagator(propagation.TraceContext{})), exporter
}

func attrs(s tracetest.SpanStub) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(s.Attributes))
	for _, kv := range s.Attributes {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestPolicy(t *testing.T) {
	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			t.Run("success", func(t *testing.T) {
				p, exporter := newPolicy(t)
				term := &terminal{status: 200}
				req, err := request.New("PUT", "https://example.com/kv/a?label=b", nil)
				require.NoError(t, err)
				parent := context.Background()
				m := request.NewMessage(parent, req, nil)
				require.NoError(t, mode.send(httpipe.New(term, p), m))

				spans := exporter.GetSpans()
				require.Len(t, spans, 1)
				s := spans[0]
				assert.Equal(t, "HTTP PUT", s.Name)
				assert.Equal(t, trace.SpanKindClient, s.SpanKind)
				assert.Equal(t, codes.Unset, s.Status.Code)
				a := attrs(s)
				assert.Equal(t, "PUT", a["http.request.method"].AsString())
				assert.Equal(t, "https://example.com/kv/a?label=b", a["url.full"].AsString())
				assert.Equal(t, "example.com", a["server.address"].AsString())
				assert.Equal(t, req.ClientRequestID(), a["httpipe.client_request_id"].AsString())
				assert.Equal(t, int64(200), a["http.response.status_code"].AsInt64())
				assert.Equal(t, int64(1), a["httpipe.attempts"].AsInt64())

				assert.Equal(t, s.SpanContext.TraceID(), term.spanCtx.TraceID())
				assert.Contains(t, term.traceparent, s.SpanContext.TraceID().String())
				assert.Contains(t, term.traceparent, s.SpanContext.SpanID().String())
				assert.Equal(t, parent, m.Context())
			})
			t.Run("error response", func(t *testing.T) {
				p, exporter := newPolicy(t)
				m := request.NewMessage(context.Background(), mustRequest(t), nil)
				require.NoError(t, mode.send(httpipe.New(&terminal{status: 503}, p), m))
				spans := exporter.GetSpans()
				require.Len(t, spans, 1)
				assert.Equal(t, codes.Error, spans[0].Status.Code)
				assert.Equal(t, "Service Unavailable", spans[0].Status.Description)
			})
			t.Run("failure", func(t *testing.T) {
				p, exporter := newPolicy(t)
				expectedErr := errors.New("connection refused")
				m := request.NewMessage(context.Background(), mustRequest(t), nil)
				err := mode.send(httpipe.New(&terminal{err: expectedErr}, p), m)
				assert.Same(t, expectedErr, err)
				spans := exporter.GetSpans()
				require.Len(t, spans, 1)
				assert.Equal(t, codes.Error, spans[0].Status.Code)
				assert.Equal(t, "connection refused", spans[0].Status.Description)
				require.Len(t, spans[0].Events, 1)
				assert.Equal(t, "exception", spans[0].Events[0].Name)
			})
		})
	}
}

func mustRequest(t *testing.T) *request.Request {
	req, err := request.New("GET", "https://example.com/", nil)
	require.NoError(t, err)
	return req
}
