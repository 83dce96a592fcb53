// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"errors"
	"syscall"
)

// A Category is the transience category of a particular error, as
// reported by function Categorize().
//
// The category Not means the error is not transient from the
// perspective of completing a call through the pipeline, or in other
// words that a retry after encountering this error is very unlikely to
// succeed.
//
// All other categories indicate the error is transient, and that a
// retry has some prospect of success.
type Category int

const (
	// Not indicates any non-transient error, including a call which
	// was deliberately cancelled by its caller.
	Not Category = iota
	// Timeout indicates a client-side timeout. The server may be going
	// through a temporary period of slowness, or the client may succeed
	// on a future attempt waiting longer.
	//
	// Function Categorize() will return Timeout if the error or any of
	// its wrapped causes has a Timeout() function that reports true.
	// This includes an attempt whose deadline expired at a suspension
	// point.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (ECONNREFUSED). The service on the remote host may be starting
	// or restarting.
	ConnRefused
	// ConnReset indicates the remote host reset a previously active
	// TCP connection (ECONNRESET), typically because a load balancer
	// or a service instance went away mid-request.
	ConnReset
	// ConnAborted indicates the connection was aborted locally
	// (ECONNABORTED) or the peer stopped reading (EPIPE).
	ConnAborted
)

var categoryNames = []string{
	"Not",
	"Timeout",
	"ConnRefused",
	"ConnReset",
	"ConnAborted",
}

// String returns the name of the category.
func (c Category) String() string {
	return categoryNames[int(c)]
}

// Categorize returns the transience category of the given error. A
// nil error, a cancellation by the caller, and an error that is not
// transient all produce the return value Not.
//
// In assessing transience, Categorize looks at wrapped cause errors
// contained within err, not just err itself. However, Categorize never
// checks if an error has a Temporary() function that returns true, as
// the semantics of Temporary() aren't entirely clear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	if errors.Is(err, context.Canceled) {
		return Not
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		case syscall.ECONNABORTED, syscall.EPIPE:
			return ConnAborted
		}
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
