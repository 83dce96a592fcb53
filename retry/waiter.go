// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand"
	"sync"
	"time"

	"github.com/gogama/httpipe/request"
)

// A Waiter specifies how long to wait before sending a message again.
// It is only consulted after the Decider has decided to retry, and sees
// the message in the same state as the Decider did.
//
// Implementations of Waiter must be safe for concurrent use by multiple
// goroutines.
//
// This package provides two Waiter constructors, NewFixedWaiter and
// NewExpWaiter, and a ready-made instance suitable for many typical use
// cases, DefaultWaiter.
type Waiter interface {
	Wait(m *request.Message) time.Duration
}

// DefaultWaiter is the default retry wait policy. It uses a jittered
// exponential backoff formula with a base wait of 800 milliseconds and
// a maximum wait of 1 minute.
var DefaultWaiter = NewExpWaiter(800*time.Millisecond, time.Minute, time.Now())

// NewFixedWaiter constructs a Waiter that always returns the given
// duration.
//
// Use NewFixedWaiter to obtain a constant retry backoff.
func NewFixedWaiter(d time.Duration) Waiter {
	return fixedWaiter(d)
}

type fixedWaiter time.Duration

func (w fixedWaiter) Wait(_ *request.Message) time.Duration {
	return time.Duration(w)
}

// NewExpWaiter constructs a Waiter with exponential backoff and
// optional "full jitter": the ceiling for attempt n is base*2^n, capped
// at max, and the wait is a uniformly random duration in [0, ceiling).
//
// Base must be positive and max at least base.
//
// Parameter jitter selects the randomness. Nil disables jitter, so the
// waiter returns the ceiling itself. A time.Time, int or int64 seeds a
// new generator; a rand.Source or *rand.Rand is used as given.
func NewExpWaiter(base, max time.Duration, jitter interface{}) Waiter {
	if base < 1 {
		panic("httpipe/retry: base must be positive")
	}
	if max < base {
		panic("httpipe/retry: max must be at least base")
	}
	return &expWaiter{
		base: base,
		max:  max,
		rand: newRand(jitter),
	}
}

type expWaiter struct {
	base time.Duration
	max  time.Duration

	lock sync.Mutex
	rand *rand.Rand
}

func (w *expWaiter) Wait(m *request.Message) time.Duration {
	c := w.ceil(m.Attempt)
	if w.rand == nil {
		return c
	}
	w.lock.Lock()
	defer w.lock.Unlock()
	return time.Duration(w.rand.Int63n(int64(c)))
}

// ceil returns min(base*2^attempt, max) without overflowing.
func (w *expWaiter) ceil(attempt int) time.Duration {
	if attempt < 0 || attempt >= 63 {
		return w.max
	}
	if w.base > w.max>>uint(attempt) {
		return w.max
	}
	return w.base << uint(attempt)
}

func newRand(jitter interface{}) *rand.Rand {
	switch j := jitter.(type) {
	case nil:
		return nil
	case time.Time:
		return rand.New(rand.NewSource(j.UnixNano()))
	case int:
		return rand.New(rand.NewSource(int64(j)))
	case int64:
		return rand.New(rand.NewSource(j))
	case *rand.Rand:
		if j == nil {
			panic("httpipe/retry: jitter may not be a typed nil")
		}
		return j
	case rand.Source:
		return rand.New(j)
	default:
		panic("httpipe/retry: invalid jitter type")
	}
}
