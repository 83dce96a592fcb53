// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"context"
	"errors"
)

// A CanceledError is the outcome of an operation that was abandoned
// because its context was done at a suspension point. It is distinct
// from ordinary failures so that callers can tell a cancelled call from
// one that failed.
//
// The wrapped error is the context's error, so errors.Is(err,
// context.Canceled) and errors.Is(err, context.DeadlineExceeded)
// continue to work.
type CanceledError struct {
	Err error
}

func (err *CanceledError) Error() string {
	return "httpipe/async: canceled: " + err.Err.Error()
}

// Unwrap returns the context error which caused the cancellation.
func (err *CanceledError) Unwrap() error {
	return err.Err
}

// Timeout reports whether the cancellation was caused by an expired
// deadline.
func (err *CanceledError) Timeout() bool {
	return errors.Is(err.Err, context.DeadlineExceeded)
}

// IsCanceled reports whether err, or any error it wraps, is a
// *CanceledError.
func IsCanceled(err error) bool {
	var ce *CanceledError
	return errors.As(err, &ce)
}

// Check returns a *CanceledError if ctx is done, and nil otherwise.
func Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &CanceledError{Err: err}
	}
	return nil
}

// A Result is the outcome of a value-returning asynchronous operation.
type Result[T any] struct {
	Value T
	Err   error
}

// Go runs fn on a new goroutine and returns a channel on which fn's
// return value is delivered exactly once. The channel is buffered, so
// the goroutine never leaks waiting for a receiver that went away.
func Go(fn func() error) <-chan error {
	ch := make(chan error, 1)
	go func() {
		ch <- fn()
	}()
	return ch
}

// Call is like Go for operations which produce a value.
func Call[T any](fn func() (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		v, err := fn()
		ch <- Result[T]{Value: v, Err: err}
	}()
	return ch
}

// Done returns a channel which already holds err. Use it to complete
// an asynchronous entry point without starting a goroutine.
func Done(err error) <-chan error {
	ch := make(chan error, 1)
	ch <- err
	return ch
}

// Await waits until ch delivers its outcome. Await never returns
// before the outcome arrives, even if ctx is done, so that the
// operation behind ch cannot outlive its caller or touch shared state
// after Await has returned. Operations are expected to observe ctx
// themselves, so the wait after cancellation is short.
//
// If ctx is done when the outcome arrives, a failed outcome is
// reported as a *CanceledError. An operation which completed
// successfully regardless is reported as such.
func Await(ctx context.Context, ch <-chan error) error {
	err := <-ch
	if err != nil && ctx.Err() != nil {
		return canceled(ctx, err)
	}
	return err
}

// AwaitResult is like Await for value-producing operations.
func AwaitResult[T any](ctx context.Context, ch <-chan Result[T]) (T, error) {
	r := <-ch
	if r.Err != nil && ctx.Err() != nil {
		var zero T
		return zero, canceled(ctx, r.Err)
	}
	return r.Value, r.Err
}

func canceled(ctx context.Context, err error) error {
	if IsCanceled(err) {
		return err
	}
	return &CanceledError{Err: ctx.Err()}
}
