// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package config loads pipeline settings from a YAML file and HTTPIPE_*
environment variables, and assembles the standard pipeline from them.

A minimal configuration file:

	connection_string: Endpoint=https://example.azconfig.io;Id=my-id;Secret=c2VjcmV0
	retry:
	  times: 3
	  base_wait: 800ms
	  max_wait: 1m
	timeout:
	  attempt: 5s
	  after: [10s, 30s]
	logging:
	  level: info
	  format: json

Environment variables override the file. Nested keys are joined with
underscores, so HTTPIPE_TIMEOUT_ATTEMPT overrides timeout.attempt.

The pipeline built by Build runs its policies in this order: client
request id, tracing, retry, timeout, signing, logging, then the
transport. Each retry attempt is therefore given its own deadline, and
is signed and logged individually.
*/
package config
