// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package tracing

import (
	"net/http"

	"github.com/gogama/httpipe"
	"github.com/gogama/httpipe/async"
	"github.com/gogama/httpipe/request"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of the tracer used by Policy.
const TracerName = "github.com/gogama/httpipe/tracing"

// An Option configures a Policy.
type Option func(p *Policy)

// WithTracerProvider sets the provider of the tracer which starts
// spans. The default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Policy) {
		p.provider = tp
	}
}

// WithPropagator sets the propagator which injects the trace context
// into request headers. The default is the global propagator.
func WithPropagator(tmp propagation.TextMapPropagator) Option {
	return func(p *Policy) {
		p.propagator = tmp
	}
}

// A Policy traces each call it processes. A Policy is safe for
// concurrent use by multiple goroutines.
type Policy struct {
	provider   trace.TracerProvider
	propagator propagation.TextMapPropagator
	tracer     trace.Tracer
}

// NewPolicy returns a tracing policy.
func NewPolicy(opts ...Option) *Policy {
	p := &Policy{}
	for _, opt := range opts {
		opt(p)
	}
	if p.provider == nil {
		p.provider = otel.GetTracerProvider()
	}
	if p.propagator == nil {
		p.propagator = otel.GetTextMapPropagator()
	}
	p.tracer = p.provider.Tracer(TracerName)
	return p
}

// Process traces the rest of the pipeline.
func (p *Policy) Process(m *request.Message, next httpipe.Next) error {
	return p.trace(m, func() error {
		return next.Process(m)
	})
}

// ProcessAsync traces the rest of the pipeline, run using its
// asynchronous entry point.
func (p *Policy) ProcessAsync(m *request.Message, next httpipe.Next) <-chan error {
	return async.Go(func() error {
		return p.trace(m, func() error {
			return async.Await(m.Context(), next.ProcessAsync(m))
		})
	})
}

func (p *Policy) trace(m *request.Message, call func() error) error {
	req := m.Request
	parent := m.Context()
	ctx, span := p.tracer.Start(parent, "HTTP "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
			attribute.String("server.address", req.URL.Hostname()),
			attribute.String("httpipe.client_request_id", req.ClientRequestID()),
		))
	defer span.End()

	p.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))
	m.SetContext(ctx)
	err := call()
	m.SetContext(parent)

	span.SetAttributes(attribute.Int("httpipe.attempts", m.Attempt+1))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if m.Response != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", m.StatusCode()))
		if m.IsError() {
			span.SetStatus(codes.Error, http.StatusText(m.StatusCode()))
		}
	}
	return nil
}
