// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpipe

import (
	"errors"

	"github.com/gogama/httpipe/async"
	"github.com/gogama/httpipe/request"
)

// ErrNoTransport is returned when a message runs off the end of a
// pipeline without any policy having produced a response. A
// well-formed pipeline always ends with a transport, so this only
// happens when a Next is misused.
var ErrNoTransport = errors.New("httpipe: end of pipeline reached without a transport")

// A Policy intercepts every call routed through a pipeline.
//
// Each entry point receives the message and the remainder of the
// pipeline after the policy. A policy does its pre-processing,
// delegates to the remainder using the entry point of the same kind,
// exactly once, and does its post-processing on the way back out. A
// policy which does not delegate at all short-circuits the pipeline;
// only the transport at the end of the pipeline, and policies
// explicitly designed to produce responses themselves, may do that.
//
// Process is the blocking entry point. It runs to completion on the
// calling goroutine, and must only ever call next.Process.
//
// ProcessAsync is the suspension-capable entry point. It returns
// immediately with a channel on which the call's outcome is delivered
// once, and must only ever call next.ProcessAsync, awaiting it with
// async.Await on the message context.
//
// Both entry points must have the same observable effect on the
// message. Failures from the rest of the pipeline must be returned
// unchanged, after any cleanup, unless the policy is explicitly a
// recovery policy such as a retry policy.
//
// Implementations of Policy must be safe for concurrent use by
// multiple goroutines, because one pipeline serves many simultaneous
// calls.
type Policy interface {
	Process(m *request.Message, next Next) error
	ProcessAsync(m *request.Message, next Next) <-chan error
}

// Next is the remainder of a pipeline as seen by one policy: the
// immutable policy sequence of the pipeline and the index of the next
// policy to run.
//
// The zero value is an empty remainder.
type Next struct {
	policies []Policy
	i        int
}

// Process runs the next policy's blocking entry point. If the message
// context is already done, the policy is not run and the outcome is a
// *async.CanceledError.
func (n Next) Process(m *request.Message) error {
	if n.i >= len(n.policies) {
		return ErrNoTransport
	}
	if err := async.Check(m.Context()); err != nil {
		return err
	}
	return n.policies[n.i].Process(m, Next{policies: n.policies, i: n.i + 1})
}

// ProcessAsync runs the next policy's suspension-capable entry point,
// checking the message context first as Process does.
func (n Next) ProcessAsync(m *request.Message) <-chan error {
	if n.i >= len(n.policies) {
		return async.Done(ErrNoTransport)
	}
	if err := async.Check(m.Context()); err != nil {
		return async.Done(err)
	}
	return n.policies[n.i].ProcessAsync(m, Next{policies: n.policies, i: n.i + 1})
}

// Len returns the number of policies remaining.
func (n Next) Len() int {
	return len(n.policies) - n.i
}

// Terminate returns a Next over policies, starting with the first. It
// lets a single policy be exercised in isolation, in front of a stub
// which plays the part of the rest of the pipeline.
func Terminate(policies ...Policy) Next {
	p := make([]Policy, len(policies))
	copy(p, policies)
	return Next{policies: p}
}
