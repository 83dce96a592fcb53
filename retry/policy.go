// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"context"
	"time"

	"github.com/gogama/httpipe"
	"github.com/gogama/httpipe/async"
	"github.com/gogama/httpipe/request"
)

// A Policy is a pipeline policy which sends a message through the rest
// of the pipeline repeatedly until an attempt succeeds or its Decider
// gives up. Between attempts it closes the discarded response, if any,
// and waits for the time given by its Waiter.
//
// Every attempt re-runs all the policies after the retry policy, so
// per-attempt work, such as signing or setting a deadline, is redone.
//
// A Policy is safe for concurrent use by multiple goroutines.
type Policy struct {
	decider Decider
	waiter  Waiter
}

// DefaultPolicy is a general-purpose retry policy suitable for common
// use cases. It is a composition of DefaultDecider for retry decisions
// and DefaultWaiter for wait time calculations.
var DefaultPolicy = NewPolicy(DefaultDecider, DefaultWaiter)

// Never is a policy that never retries.
var Never = NewPolicy(Times(0), DefaultWaiter)

// NewPolicy composes a Decider and a Waiter into a retry Policy.
func NewPolicy(d Decider, w Waiter) *Policy {
	if d == nil {
		panic("httpipe/retry: nil decider")
	}
	if w == nil {
		panic("httpipe/retry: nil waiter")
	}
	return &Policy{decider: d, waiter: w}
}

// Decide consults the policy's Decider.
func (p *Policy) Decide(m *request.Message) bool {
	return p.decider.Decide(m)
}

// Wait consults the policy's Waiter.
func (p *Policy) Wait(m *request.Message) time.Duration {
	return p.waiter.Wait(m)
}

// Process sends the message through the rest of the pipeline, using its
// blocking entry point, until no more retries are wanted.
func (p *Policy) Process(m *request.Message, next httpipe.Next) error {
	return p.run(m, func() error {
		return next.Process(m)
	})
}

// ProcessAsync sends the message through the rest of the pipeline,
// using its asynchronous entry point, until no more retries are wanted.
func (p *Policy) ProcessAsync(m *request.Message, next httpipe.Next) <-chan error {
	return async.Go(func() error {
		return p.run(m, func() error {
			return async.Await(m.Context(), next.ProcessAsync(m))
		})
	})
}

func (p *Policy) run(m *request.Message, attempt func() error) error {
	ctx := m.Context()
	m.Err = nil
	m.AttemptTimeouts = 0
	for m.Attempt = 0; ; m.Attempt++ {
		err := attempt()
		m.Err = err
		if ctx.Err() != nil || !p.decider.Decide(m) {
			return err
		}

		closeResponse(m)
		if err = sleep(ctx, p.waiter.Wait(m)); err != nil {
			return err
		}
	}
}

func closeResponse(m *request.Message) {
	if m.Response != nil {
		_ = m.Response.Close()
		m.Response = nil
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return async.Check(ctx)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return &async.CanceledError{Err: ctx.Err()}
	}
}
