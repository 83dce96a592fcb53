// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies errors returned from a pipeline call
// according to whether a retry has a prospect of succeeding.
//
// Retry deciders use Categorize to recognize timeouts and broken
// connections. An explicit cancellation by the caller is never
// transient.
package transient
