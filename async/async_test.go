// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGo(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, Await(context.Background(), Go(func() error { return nil })))
	})
	t.Run("error", func(t *testing.T) {
		expectedErr := errors.New("foo")
		err := Await(context.Background(), Go(func() error { return expectedErr }))
		assert.Same(t, expectedErr, err)
		assert.False(t, IsCanceled(err))
	})
}

func TestCall(t *testing.T) {
	v, err := AwaitResult(context.Background(), Call(func() (int, error) { return 42, nil }))
	assert.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestDone(t *testing.T) {
	expectedErr := errors.New("bar")
	ch := Done(expectedErr)
	select {
	case err := <-ch:
		assert.Same(t, expectedErr, err)
	default:
		t.Fatal("Done channel must already hold its value")
	}
}

func TestAwait(t *testing.T) {
	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		var finished atomic.Bool
		ch := Go(func() error {
			<-ctx.Done()
			time.Sleep(10 * time.Millisecond)
			finished.Store(true)
			return errors.New("aborted")
		})
		cancel()
		err := Await(ctx, ch)
		require.Error(t, err)
		assert.True(t, finished.Load(), "Await must not return before the operation")
		assert.True(t, IsCanceled(err))
		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, err.(*CanceledError).Timeout())
	})
	t.Run("already canceled outcome", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		inner := &CanceledError{Err: context.DeadlineExceeded}
		ch := Go(func() error {
			<-ctx.Done()
			return inner
		})
		assert.Same(t, inner, Await(ctx, ch))
	})
	t.Run("completed regardless", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		release := make(chan struct{})
		ch := Go(func() error {
			<-release
			return nil
		})
		cancel()
		go func() {
			time.Sleep(5 * time.Millisecond)
			close(release)
		}()
		assert.NoError(t, Await(ctx, ch))
	})
	t.Run("deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
		defer cancel()
		var finished atomic.Bool
		ch := Call(func() (string, error) {
			<-ctx.Done()
			finished.Store(true)
			return "partial", ctx.Err()
		})
		v, err := AwaitResult(ctx, ch)
		require.Error(t, err)
		assert.True(t, finished.Load())
		assert.Equal(t, "", v)
		assert.True(t, IsCanceled(err))
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
		assert.True(t, err.(*CanceledError).Timeout())
	})
	t.Run("value completed regardless", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ch := Call(func() (int, error) {
			<-ctx.Done()
			return 7, nil
		})
		v, err := AwaitResult(ctx, ch)
		assert.NoError(t, err)
		assert.Equal(t, 7, v)
	})
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(context.Background()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Check(ctx)
	assert.True(t, IsCanceled(err))
	assert.EqualError(t, err, "httpipe/async: canceled: context canceled")
	assert.True(t, IsCanceled(fmt.Errorf("wrapped: %w", err)))
}
