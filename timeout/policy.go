// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"context"
	"time"

	"github.com/gogama/httpipe"
	"github.com/gogama/httpipe/async"
	"github.com/gogama/httpipe/request"
	"github.com/gogama/httpipe/transient"
)

// A Policy is a pipeline policy which bounds each attempt to send a
// message with a deadline. Placed after a retry policy, it sets a new
// deadline on every attempt.
//
// The deadline covers the rest of the pipeline and the reading of the
// response content: it is released when the caller closes the response
// content, or as soon as the attempt fails.
//
// When an attempt fails because its deadline expired, the policy
// increments the message's AttemptTimeouts counter.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	httpipe.Policy

	// Timeout returns the timeout to set on the next attempt to send
	// m. A return value of zero or less, or Infinite's value, means
	// no deadline.
	//
	// When Timeout is called, m.Err is the error of the previous
	// attempt, if there was one, and m.AttemptTimeouts is the number of
	// previous attempts which timed out.
	Timeout(m *request.Message) time.Duration
}

// DefaultPolicy is the default timeout policy. It sets a fixed timeout
// of 5 seconds on each attempt.
var DefaultPolicy = Fixed(5 * time.Second)

// Infinite is a built-in timeout policy which never times out.
var Infinite = Fixed(1<<63 - 1)

// Fixed constructs a timeout policy that uses the same value to set
// every attempt timeout. The return value is a timeout policy that
// always returns the value d.
//
// Use Fixed to create the typical timeout behavior supported by most
// retrying HTTP client software.
func Fixed(d time.Duration) Policy {
	return Func(func(*request.Message) time.Duration { return d })
}

// Adaptive constructs a timeout policy that varies the next timeout
// value if the previous attempt timed out.
//
// Use Adaptive if you find the remote service often exhibits one-off slow
// response times that can be cured by quickly timing out and retrying,
// but you also need to protect your application (and the remote service)
// from retry storms and failure if the remote service goes through a
// burst of slowness where most response times during the burst are
// slower than your usual quick timeout.
//
// Parameter usual represents the timeout value the policy will return
// for an initial attempt and for any retry where the immediately
// preceding attempt did not time out.
//
// Parameter after contains timeout values the policy will return if
// the previous attempt timed out. If this was the first timeout of the
// call, after[0] is returned; if the second, after[1], and so on.
// If more attempts have timed out than after has elements, then the
// last element of after is returned.
//
// Consider the following timeout policy:
//
//	p := Adaptive(200*time.Millisecond, time.Second, 10*time.Second)
//
// The policy p will use 200 milliseconds as the usual timeout but if
// the preceding attempt timed out and was the first timeout of the
// call, it will use 1 second; and if the previous attempt timed out
// and was not the first timeout, it will use 10 seconds.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	p := make([]time.Duration, 1, 1+len(after))
	p[0] = usual
	p = append(p, after...)
	return Func(func(m *request.Message) time.Duration {
		if !m.Timeout() {
			return p[0]
		}

		i := m.AttemptTimeouts
		if i > len(p)-1 {
			i = len(p) - 1
		}

		return p[i]
	})
}

// The Func type is an adapter to allow the use of ordinary functions
// as timeout policies. If f is a function with appropriate signature,
// then Func(f) is a Policy which sets timeouts computed by f.
type Func func(m *request.Message) time.Duration

// Timeout calls f(m).
func (f Func) Timeout(m *request.Message) time.Duration {
	return f(m)
}

// Process runs the rest of the pipeline under the attempt deadline.
func (f Func) Process(m *request.Message, next httpipe.Next) error {
	return enforce(f(m), m, func() error {
		return next.Process(m)
	})
}

// ProcessAsync runs the rest of the pipeline under the attempt deadline
// using its asynchronous entry point.
func (f Func) ProcessAsync(m *request.Message, next httpipe.Next) <-chan error {
	return async.Go(func() error {
		return enforce(f(m), m, func() error {
			return async.Await(m.Context(), next.ProcessAsync(m))
		})
	})
}

func enforce(d time.Duration, m *request.Message, attempt func() error) error {
	if d <= 0 || d == 1<<63-1 {
		return attempt()
	}

	parent := m.Context()
	ctx, cancel := context.WithTimeout(parent, d)
	m.SetContext(ctx)
	err := attempt()
	m.SetContext(parent)

	if err != nil {
		cancel()
		if parent.Err() == nil && transient.Categorize(err) == transient.Timeout {
			m.AttemptTimeouts++
		}
		return err
	}

	if m.Response != nil && m.Response.Content != nil {
		m.Response.Content = request.OnClose(m.Response.Content, cancel)
	} else {
		cancel()
	}
	return nil
}
