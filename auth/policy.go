// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package auth

import (
	"context"
	"crypto/hmac"
	"encoding/base64"
	"net"
	"net/http"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/gogama/httpipe"
	"github.com/gogama/httpipe/async"
	"github.com/gogama/httpipe/request"
	"github.com/minio/sha256-simd"
)

const (
	// ContentHashHeader is the request header which carries the
	// base64-encoded SHA-256 hash of the request content.
	ContentHashHeader = "x-ms-content-sha256"

	// SignedHeaders lists, in order, the headers covered by the
	// signature.
	SignedHeaders = "date;host;" + ContentHashHeader

	// Scheme is the Authorization header scheme.
	Scheme = "HMAC-SHA256"
)

// An Option configures a Policy.
type Option func(p *Policy)

// WithClock sets the clock used to timestamp signed requests. The
// default is the system clock.
func WithClock(c clock.Clock) Option {
	return func(p *Policy) {
		p.clock = c
	}
}

// A Policy signs each request it processes, then delegates to the rest
// of the pipeline. A Policy is safe for concurrent use by multiple
// goroutines.
type Policy struct {
	credential string
	secret     []byte
	clock      clock.Clock
}

// NewPolicy returns a signing policy for the given credential
// identifier and shared secret.
func NewPolicy(credential string, secret []byte, opts ...Option) *Policy {
	p := &Policy{
		credential: credential,
		secret:     append([]byte(nil), secret...),
		clock:      clock.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process signs the request, reading its content with the blocking
// content producer, and then calls the rest of the pipeline.
func (p *Policy) Process(m *request.Message, next httpipe.Next) error {
	hash, err := ContentHash(m.Request.Content)
	if err != nil {
		return err
	}
	p.sign(m.Request, hash)
	return next.Process(m)
}

// ProcessAsync signs the request, reading its content with the
// cancellable content producer, and then calls the rest of the
// pipeline using its asynchronous entry point.
func (p *Policy) ProcessAsync(m *request.Message, next httpipe.Next) <-chan error {
	return async.Go(func() error {
		ctx := m.Context()
		hash, err := ContentHashContext(ctx, m.Request.Content)
		if err != nil {
			return err
		}
		p.sign(m.Request, hash)
		return async.Await(ctx, next.ProcessAsync(m))
	})
}

func (p *Policy) sign(req *request.Request, contentHash string) {
	date := p.clock.Now().UTC().Format(http.TimeFormat)
	sts := StringToSign(req.Method, req.URL.RequestURI(), date, host(req), contentHash)
	sig := ComputeSignature(p.secret, sts)

	req.Header.Set("Date", date)
	req.Header.Set(ContentHashHeader, contentHash)
	req.Header.Set("Authorization", Scheme+" Credential="+p.credential+", SignedHeaders="+SignedHeaders+", Signature="+sig)
}

func host(req *request.Request) string {
	h := req.URL.Hostname()
	if strings.IndexByte(h, ':') >= 0 && net.ParseIP(h) != nil {
		return "[" + h + "]"
	}
	return h
}

// ContentHash returns the base64-encoded SHA-256 hash of the content
// produced by c. A nil c hashes as empty content.
func ContentHash(c request.Content) (string, error) {
	h := sha256.New()
	if c != nil {
		if _, err := c.WriteTo(h); err != nil {
			return "", err
		}
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// ContentHashContext is like ContentHash but stops producing content,
// returning a *async.CanceledError, if ctx is done.
func ContentHashContext(ctx context.Context, c request.Content) (string, error) {
	h := sha256.New()
	if c != nil {
		if _, err := c.WriteToContext(ctx, h); err != nil {
			return "", err
		}
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// StringToSign assembles the string covered by the signature.
func StringToSign(method, pathAndQuery, date, host, contentHash string) string {
	var b strings.Builder
	b.Grow(len(method) + len(pathAndQuery) + len(date) + len(host) + len(contentHash) + 4)
	b.WriteString(method)
	b.WriteByte('\n')
	b.WriteString(pathAndQuery)
	b.WriteByte('\n')
	b.WriteString(date)
	b.WriteByte(';')
	b.WriteString(host)
	b.WriteByte(';')
	b.WriteString(contentHash)
	return b.String()
}

// ComputeSignature returns the base64-encoded HMAC-SHA256 of
// stringToSign under secret. The string is encoded as ASCII: every
// character outside the ASCII range is replaced by '?' (two for
// characters outside the Basic Multilingual Plane).
func ComputeSignature(secret []byte, stringToSign string) string {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write(toASCII(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func toASCII(s string) []byte {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r < 0x80:
			b = append(b, byte(r))
		case r > 0xffff:
			b = append(b, '?', '?')
		default:
			b = append(b, '?')
		}
	}
	return b
}
