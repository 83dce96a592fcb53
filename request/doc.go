// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the data types which flow through an httpipe
pipeline: Request (an outbound HTTP request), Response (what the
transport produced), and Message (the mutable carrier of one logical
call, from the moment it enters the pipeline until the caller disposes
of the response content).

A Request looks like a stripped-down http.Request. Its body is not a
reader but a Content, a producer which can write the whole body into
any sink, as many times as needed, either blocking or honouring a
context:

	req, err := request.New("PUT", "https://example.com/kv/color",
		request.String(`{"value":"blue"}`))
	...
	req.Header.Set("Content-Type", "application/json")

Every Request carries a correlation id, ClientRequestID, generated when
the request is created. The id is copied to the Response once the
transport populates it, so diagnostic events for the request and the
response can be joined.

A Response's content is a Stream. A Stream is either seekable (it may
be re-read, for example a buffered body) or not (a single pass over a
network body). Policies must not consume a non-seekable stream which
belongs to the caller.

A Message is created per call by the pipeline, and handed to every
policy in the chain. Its Response is nil until the transport populates
it. Its Classifier decides whether a populated response is an error.
*/
package request
