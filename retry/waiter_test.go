// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/gogama/httpipe/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attempt(n int) *request.Message {
	return &request.Message{Attempt: n}
}

func TestDefaultWaiter(t *testing.T) {
	ceilings := []time.Duration{
		800 * time.Millisecond,
		1600 * time.Millisecond,
		3200 * time.Millisecond,
		6400 * time.Millisecond,
		12800 * time.Millisecond,
		25600 * time.Millisecond,
		51200 * time.Millisecond,
		time.Minute,
		time.Minute,
	}
	for i, ceil := range ceilings {
		wait := DefaultWaiter.Wait(attempt(i))
		assert.GreaterOrEqual(t, wait, time.Duration(0))
		assert.Less(t, wait, ceil)
	}
}

func TestNewFixedWaiter(t *testing.T) {
	w := NewFixedWaiter(42 * time.Millisecond)
	for i := 0; i < 5; i++ {
		assert.Equal(t, 42*time.Millisecond, w.Wait(attempt(i)))
	}
}

func TestNewExpWaiterPanics(t *testing.T) {
	var nilRand *rand.Rand
	testCases := []struct {
		name      string
		base, max time.Duration
		jitter    interface{}
		msg       string
	}{
		{"negative base", -1, time.Hour, nil, "httpipe/retry: base must be positive"},
		{"zero base", 0, time.Hour, nil, "httpipe/retry: base must be positive"},
		{"max below base", 2, 1, nil, "httpipe/retry: max must be at least base"},
		{"float jitter", 1, time.Hour, 1.0, "httpipe/retry: invalid jitter type"},
		{"typed nil jitter", 1, time.Hour, nilRand, "httpipe/retry: jitter may not be a typed nil"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.PanicsWithValue(t, testCase.msg, func() {
				NewExpWaiter(testCase.base, testCase.max, testCase.jitter)
			})
		})
	}
}

func TestExpWaiterCeiling(t *testing.T) {
	var nilSource rand.Source
	for _, jitter := range []interface{}{nil, nilSource} {
		w := NewExpWaiter(time.Millisecond, time.Hour, jitter)
		require.IsType(t, &expWaiter{}, w)
		assert.Nil(t, w.(*expWaiter).rand)
		for i := 0; i < 10; i++ {
			assert.Equal(t, time.Duration(1<<i)*time.Millisecond, w.Wait(attempt(i)))
		}
		for _, n := range []int{22, 25, 62, 63, 1000, math.MaxInt64, -1} {
			assert.Equal(t, time.Hour, w.Wait(attempt(n)), "attempt %d", n)
		}
	}
	w := NewExpWaiter(3, 3, nil)
	assert.Equal(t, time.Duration(3), w.Wait(attempt(0)))
	assert.Equal(t, time.Duration(3), w.Wait(attempt(1)))
}

func TestExpWaiterJitter(t *testing.T) {
	jitters := map[string]interface{}{
		"zero time.Time": time.Time{},
		"time.Now()":     time.Now(),
		"int":            1,
		"int64":          int64(1),
		"rand.Source":    rand.NewSource(0),
		"*rand.Rand":     rand.New(rand.NewSource(0)),
	}
	for name, jitter := range jitters {
		t.Run(name, func(t *testing.T) {
			w := NewExpWaiter(time.Millisecond, time.Hour, jitter)
			var total time.Duration
			for i := 0; i < 100; i++ {
				d := w.Wait(attempt(i))
				assert.GreaterOrEqual(t, d, time.Duration(0))
				assert.Less(t, d, time.Hour)
				total += d
			}
			assert.Greater(t, total, time.Duration(0))
		})
	}
}

func TestExpWaiterConcurrent(t *testing.T) {
	w := NewExpWaiter(time.Millisecond, time.Hour, 0)
	var wg sync.WaitGroup
	for g := 0; g < 100; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 22; i++ {
				d := w.Wait(attempt(i))
				assert.GreaterOrEqual(t, d, time.Duration(0))
				assert.Less(t, d, time.Duration(1<<i)*time.Millisecond)
			}
		}()
	}
	wg.Wait()
}
