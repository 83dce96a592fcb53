// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpipe

import (
	"github.com/gogama/httpipe/async"
	"github.com/gogama/httpipe/request"
)

// Hooks is the logic of a policy which never blocks: it inspects or
// modifies the message before the rest of the pipeline runs, and after
// it has returned, but does no I/O of its own.
//
// Convert Hooks into a Policy with Synchronous.
type Hooks interface {
	// Before is called once per call, before delegating to the rest
	// of the pipeline.
	Before(m *request.Message)
	// After is called once per call, after the rest of the pipeline
	// has returned successfully. It is not called if the rest of the
	// pipeline failed.
	After(m *request.Message)
}

// HookFuncs is an adapter to allow the use of ordinary functions as
// Hooks. Either function may be nil.
type HookFuncs struct {
	BeforeFunc func(m *request.Message)
	AfterFunc  func(m *request.Message)
}

// Before calls h.BeforeFunc(m) if it is not nil.
func (h HookFuncs) Before(m *request.Message) {
	if h.BeforeFunc != nil {
		h.BeforeFunc(m)
	}
}

// After calls h.AfterFunc(m) if it is not nil.
func (h HookFuncs) After(m *request.Message) {
	if h.AfterFunc != nil {
		h.AfterFunc(m)
	}
}

// Synchronous converts h into a Policy. Both entry points of the
// policy bracket one delegation to the rest of the pipeline, using the
// entry point the caller used, with h.Before and h.After.
func Synchronous(h Hooks) Policy {
	if h == nil {
		panic("httpipe: nil hooks")
	}
	return synchronous{h}
}

type synchronous struct {
	hooks Hooks
}

func (s synchronous) Process(m *request.Message, next Next) error {
	s.hooks.Before(m)
	if err := next.Process(m); err != nil {
		return err
	}
	s.hooks.After(m)
	return nil
}

func (s synchronous) ProcessAsync(m *request.Message, next Next) <-chan error {
	return async.Go(func() error {
		s.hooks.Before(m)
		if err := async.Await(m.Context(), next.ProcessAsync(m)); err != nil {
			return err
		}
		s.hooks.After(m)
		return nil
	})
}
