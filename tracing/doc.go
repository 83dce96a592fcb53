// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package tracing provides a pipeline policy which wraps each call in
// an OpenTelemetry client span and propagates the trace context to the
// service in the request headers.
//
// Placed before a retry policy, the policy creates one span per call;
// placed after it, one span per attempt.
package tracing
