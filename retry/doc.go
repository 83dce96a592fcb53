// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides a pipeline policy which retries failed
// attempts, with flexible rules for whether to retry and how long to
// wait before retrying.
//
// A Policy is constructed using NewPolicy by providing a
// decision-maker, Decider, and a wait time calculator, Waiter. Both
// Decider and Waiter have constructors for common use cases, so that a
// useful policy can be quickly assembled:
//
//	decider := retry.Times(3).
//		And(retry.Before(5 * time.Second)).
//		And(retry.StatusCode(500).Or(retry.TransientErr))
//	waiter := retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, time.Now())
//	pipeline := httpipe.New(transport, retry.NewPolicy(decider, waiter), signer)
//
// Policies placed after the retry policy in the pipeline run once per
// attempt. Policies placed before it run once per call.
package retry
