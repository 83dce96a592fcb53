// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package httpipe provides a composable HTTP client pipeline: an ordered
chain of policies through which every outbound call is routed, ending
in a transport which actually sends the request.

Create a Pipeline from a transport and the policies to run in front of
it. The chain is fixed at construction and the pipeline is safe for
concurrent use:

	p := httpipe.New(
		httpipe.NewTransport(&http.Client{}),
		httpipe.ClientRequestIDPolicy(""),
		retry.DefaultPolicy,
		auth.NewPolicy(credential, secret),
		logging.NewPolicy(logging.NewZerologSink(log.Logger)),
	)
	resp, err := p.Get(ctx, "https://example.com/kv")
	...
	defer resp.Close()

Every Policy has two entry points. Process is blocking. ProcessAsync
is suspension-capable: it returns at once with a channel on which the
single outcome is delivered, and waiting on it honors the message
context. A caller picks one model per call, with Send or SendAsync,
and every policy in the chain is driven through the matching entry
point:

	m := p.NewMessage(ctx, req)
	err := async.Await(ctx, p.SendAsync(m))

A policy sees the message and the remainder of the chain after itself,
as a Next. It does its pre-processing, delegates to the remainder
once, and does its post-processing on the way back out, so effects
nest strictly across the chain in both models.

Policies with no I/O of their own can be written as a pair of Hooks
and converted with Synchronous. The sub-packages provide request
signing (auth), diagnostics (logging), retries (retry), per-attempt
timeouts (timeout), and OpenTelemetry spans (tracing). Package config
assembles a standard pipeline from a configuration file.
*/
package httpipe
