// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package async provides the primitives behind the suspension-capable
// execution model of an httpipe pipeline.
//
// Every policy in a pipeline has two entry points: a blocking one,
// which runs to completion on the calling goroutine, and an
// asynchronous one, which returns immediately with a channel on which
// the single outcome of the call is delivered. Waiting on that channel
// with Await is a suspension point. Operations observe the governing
// context themselves and finish promptly once it is done; Await waits
// for them to finish, then reports the failure as a *CanceledError.
// No operation therefore outlives the caller which awaited it.
//
//	ch := async.Go(func() error {
//		return doSomethingSlow(ctx)
//	})
//	...
//	if err := async.Await(ctx, ch); async.IsCanceled(err) {
//		...
//	}
package async
