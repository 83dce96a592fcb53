// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package auth provides a pipeline policy which signs each request with an
HMAC-SHA256 shared-key signature.

For every call, the policy streams the request content through SHA-256,
builds the string to sign from the request method, path and query,
the current HTTP date, the host, and the content hash, and signs it
with the shared secret. Three headers are then added to the request:

	Date: <HTTP date>
	x-ms-content-sha256: <base64 content hash>
	Authorization: HMAC-SHA256 Credential=<id>, SignedHeaders=date;host;x-ms-content-sha256, Signature=<base64 signature>

Because the signature is recomputed on every call, the policy may be
placed after a retry policy: each attempt carries a fresh date and
signature.

A policy can be constructed directly from a credential identifier and
secret, or from a connection string of the form

	Endpoint=https://example.azconfig.io;Id=<id>;Secret=<base64 secret>

using ParseConnectionString and NewPolicyFromCredential.
*/
package auth
