// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/httpipe/request"
	"github.com/gogama/httpipe/transient"
)

// A Decider decides, after a failed attempt, whether the message
// should be sent again.
//
// When Decide is called, m.Attempt is the zero-based index of the
// attempt which just ended, m.Err is the error the attempt returned (or
// nil), and m.Response is the response it produced (or nil).
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
//
// Use the built-in constructors Times, StatusCode, and Before, and the
// built-in decider TransientErr; or implement your Decider. Use
// DeciderFunc to convert an ordinary function into a Decider, and to
// compose deciders logically using DeciderFunc.And and DeciderFunc.Or.
type Decider interface {
	Decide(m *request.Message) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It implements the Decider interface, and
// also provides the logical composition methods And and Or.
//
// Every DeciderFunc must be safe for concurrent use by multiple
// goroutines.
type DeciderFunc func(m *request.Message) bool

// DefaultTimes is the number of times DefaultPolicy will retry.
const DefaultTimes = 3

// DefaultDecider is a general-purpose retry decider suitable for
// common use cases. It allows up to DefaultTimes retries, and retries
// on a transient error (TransientErr) or when the response status is
// one of 408 (Request Timeout), 429 (Too Many Requests), 500 (Internal
// Server Error), 502 (Bad Gateway), 503 (Service Unavailable) or 504
// (Gateway Timeout).
var DefaultDecider = Times(DefaultTimes).And(StatusCode(408, 429, 500, 502, 503, 504).Or(TransientErr))

// TransientErr is a decider that indicates a retry if the attempt's
// error is transient according to transient.Categorize.
//
// TransientErr only looks at the error, so it always returns false
// if the attempt produced a response.
var TransientErr DeciderFunc = transientErr

// Decide calls f(m).
func (f DeciderFunc) Decide(m *request.Message) bool {
	return f(m)
}

// And composes two retry deciders into a new decider which returns true
// if both sub-deciders return true, and false otherwise.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(m *request.Message) bool {
		return f(m) && g(m)
	}
}

// Or composes two retry deciders into a new decider which returns
// true if either of the two sub-deciders returns true, but false if
// they both return false.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(m *request.Message) bool {
		return f(m) || g(m)
	}
}

// Times constructs a retry decider which allows up to n retries. The
// returned decider returns true while m.Attempt is less than n.
func Times(n int) DeciderFunc {
	return func(m *request.Message) bool {
		return m.Attempt < n
	}
}

// Before constructs a retry decider allowing retries until a certain
// amount of time has elapsed since the message was created.
func Before(d time.Duration) DeciderFunc {
	return func(m *request.Message) bool {
		return m.Duration() < d
	}
}

// StatusCode constructs a retry decider allowing retries when the
// attempt produced a response whose status code is one of ss.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(m *request.Message) bool {
		for _, s := range ss2 {
			if m.StatusCode() == s {
				return true
			}
		}
		return false
	}
}

func transientErr(m *request.Message) bool {
	return transient.Categorize(m.Err) != transient.Not
}
