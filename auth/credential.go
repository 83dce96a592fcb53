// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// A Credential is the parsed form of a shared-key connection string.
type Credential struct {
	// Endpoint is the service base URL.
	Endpoint *url.URL
	// ID is the credential identifier sent in the Authorization
	// header.
	ID string
	// Secret is the decoded shared secret.
	Secret []byte
}

// ParseConnectionString parses a connection string of the form
// "Endpoint=<url>;Id=<id>;Secret=<base64>". Segment names are matched
// case-insensitively and segments may appear in any order. Unknown
// segments are an error.
func ParseConnectionString(s string) (*Credential, error) {
	var endpoint, id, secret string
	var seen [3]bool
	for _, segment := range strings.Split(s, ";") {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		name, value, ok := strings.Cut(segment, "=")
		if !ok {
			return nil, fmt.Errorf("httpipe/auth: invalid connection string segment %q", segment)
		}
		name = strings.TrimSpace(name)
		var i int
		switch {
		case strings.EqualFold(name, "Endpoint"):
			i, endpoint = 0, value
		case strings.EqualFold(name, "Id"):
			i, id = 1, value
		case strings.EqualFold(name, "Secret"):
			i, secret = 2, value
		default:
			return nil, fmt.Errorf("httpipe/auth: unknown connection string segment %q", name)
		}
		if seen[i] {
			return nil, fmt.Errorf("httpipe/auth: duplicate connection string segment %q", name)
		}
		seen[i] = true
	}

	if endpoint == "" || id == "" || secret == "" {
		return nil, errors.New("httpipe/auth: connection string requires Endpoint, Id and Secret")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("httpipe/auth: invalid Endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("httpipe/auth: Endpoint %q is not an absolute URL", endpoint)
	}
	b, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("httpipe/auth: invalid Secret: %w", err)
	}

	return &Credential{
		Endpoint: u,
		ID:       id,
		Secret:   b,
	}, nil
}

// NewPolicyFromCredential returns a signing policy for c.
func NewPolicyFromCredential(c *Credential, opts ...Option) *Policy {
	return NewPolicy(c.ID, c.Secret, opts...)
}
