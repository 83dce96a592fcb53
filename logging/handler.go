// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logging

// A HandlerGroup is a Sink made of event handler chains, one per event.
//
// A HandlerGroup is enabled when the process-wide switch is on and at
// least one handler is installed. Content logging is enabled when a
// handler is installed for a content event of the matching kind.
//
// Handlers should be installed before the group is used by a pipeline.
type HandlerGroup struct {
	handlers [][]Handler
}

// PushBack adds an event handler to the back of the event handler chain
// for a specific event type.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("httpipe/logging: nil handler")
	}

	if g.handlers == nil {
		g.handlers = make([][]Handler, numEvents)
	}

	g.handlers[evt] = append(g.handlers[evt], h)
}

// Enabled reports whether any handler is installed.
func (g *HandlerGroup) Enabled() bool {
	if !Enabled() {
		return false
	}
	for _, chain := range g.handlers {
		if len(chain) > 0 {
			return true
		}
	}
	return false
}

// ContentEnabled reports whether a handler is installed for a content
// event which can occur for the given outcome.
func (g *HandlerGroup) ContentEnabled(isError bool) bool {
	if !Enabled() {
		return false
	}
	return g.has(RequestContent) || g.has(ResponseContent) || g.has(ResponseContentBlock) ||
		isError && (g.has(ErrorResponseContent) || g.has(ErrorResponseContentBlock))
}

// Emit runs the handler chain for the record's event.
func (g *HandlerGroup) Emit(r *Record) {
	i := int(r.Event)
	if i < len(g.handlers) {
		run(g.handlers[i], r)
	}
}

func (g *HandlerGroup) has(evt Event) bool {
	i := int(evt)
	return i < len(g.handlers) && len(g.handlers[i]) > 0
}

func run(chain []Handler, r *Record) {
	for _, h := range chain {
		h.Handle(r.Event, r)
	}
}

// A Handler handles the occurrence of a diagnostic event.
type Handler interface {
	Handle(Event, *Record)
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers. If f is a function with appropriate
// signature, then HandlerFunc(f) is a Handler that calls f.
type HandlerFunc func(Event, *Record)

// Handle calls f(evt, r).
func (f HandlerFunc) Handle(evt Event, r *Record) {
	f(evt, r)
}
