// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogama/httpipe"
	"github.com/gogama/httpipe/auth"
	"github.com/gogama/httpipe/logging"
	"github.com/gogama/httpipe/request"
	"github.com/gogama/httpipe/retry"
	"github.com/gogama/httpipe/timeout"
	"github.com/gogama/httpipe/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPolicies(t *testing.T) {
	t.Run("everything", func(t *testing.T) {
		cfg := &Config{
			ConnectionString: "Endpoint=https://example.azconfig.io;Id=my-id;Secret=c2VjcmV0LWJ5dGVz",
			Tracing:          TracingConfig{Enabled: true},
			Logging:          LoggingConfig{Writer: io.Discard},
		}
		p, err := Build(cfg, nil)
		require.NoError(t, err)
		policies := p.Policies()
		require.Len(t, policies, 7)
		assert.IsType(t, &tracing.Policy{}, policies[1])
		assert.IsType(t, &retry.Policy{}, policies[2])
		assert.IsType(t, timeout.Func(nil), policies[3])
		assert.IsType(t, &auth.Policy{}, policies[4])
		assert.IsType(t, &logging.Policy{}, policies[5])
		require.IsType(t, &httpipe.Transport{}, policies[6])
		assert.Nil(t, policies[6].(*httpipe.Transport).HTTPDoer)
	})
	t.Run("minimal", func(t *testing.T) {
		cfg := &Config{
			Buffered: true,
			Retry:    RetryConfig{Disabled: true},
			Logging:  LoggingConfig{Disabled: true},
		}
		p, err := Build(cfg, http.DefaultClient)
		require.NoError(t, err)
		policies := p.Policies()
		require.Len(t, policies, 3)
		assert.IsType(t, timeout.Func(nil), policies[1])
		require.IsType(t, &httpipe.Transport{}, policies[2])
		assert.True(t, policies[2].(*httpipe.Transport).Buffered)
	})
	t.Run("bad connection string", func(t *testing.T) {
		_, err := Build(&Config{ConnectionString: "Endpoint=https://x;Id=a"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "httpipe/auth: ")
	})
	t.Run("invalid", func(t *testing.T) {
		_, err := Build(&Config{Logging: LoggingConfig{Format: "xml"}}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logging.format")
	})
}

func TestTimeoutPolicy(t *testing.T) {
	m := request.NewMessage(context.Background(), &request.Request{}, nil)
	assert.Equal(t, 2*time.Second, timeoutPolicy(TimeoutConfig{Attempt: 2 * time.Second}).Timeout(m))
	assert.Equal(t, timeout.Infinite.Timeout(m), timeoutPolicy(TimeoutConfig{Attempt: -1}).Timeout(m))
	adaptive := timeoutPolicy(TimeoutConfig{Attempt: time.Second, After: []time.Duration{time.Minute}})
	assert.Equal(t, time.Second, adaptive.Timeout(m))
}

type lockedBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) events(t *testing.T) []string {
	b.lock.Lock()
	defer b.lock.Unlock()
	var events []string
	s := bufio.NewScanner(bytes.NewReader(b.buf.Bytes()))
	for s.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(s.Bytes(), &entry))
		events = append(events, entry["event"].(string))
	}
	return events
}

func TestBuildEndToEnd(t *testing.T) {
	var calls int32
	var lock sync.Mutex
	var seen []http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		lock.Lock()
		seen = append(seen, req.Header.Clone())
		lock.Unlock()
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	}))
	defer server.Close()

	modes := []struct {
		name string
		do   func(p *httpipe.Pipeline, req *request.Request) (*request.Response, error)
	}{
		{"blocking", func(p *httpipe.Pipeline, req *request.Request) (*request.Response, error) {
			return p.Do(context.Background(), req)
		}},
		{"async", func(p *httpipe.Pipeline, req *request.Request) (*request.Response, error) {
			r := <-p.DoAsync(context.Background(), req)
			return r.Value, r.Err
		}},
	}
	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			atomic.StoreInt32(&calls, 0)
			lock.Lock()
			seen = nil
			lock.Unlock()

			var out lockedBuffer
			cfg := &Config{
				ConnectionString: "Endpoint=" + server.URL + ";Id=my-id;Secret=c2VjcmV0LWJ5dGVz",
				Retry:            RetryConfig{BaseWait: time.Millisecond, MaxWait: 2 * time.Millisecond},
				Logging:          LoggingConfig{Writer: &out},
			}
			p, err := Build(cfg, server.Client())
			require.NoError(t, err)

			req, err := request.New("GET", server.URL+"/kv/color", nil)
			require.NoError(t, err)
			resp, err := mode.do(p, req)
			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, 200, resp.Status)
			b, err := io.ReadAll(resp.Content)
			require.NoError(t, err)
			assert.Equal(t, "ok", string(b))
			require.NoError(t, resp.Close())

			assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
			lock.Lock()
			require.Len(t, seen, 2)
			for _, h := range seen {
				assert.Equal(t, req.ClientRequestID(), h.Get("X-Ms-Client-Request-Id"))
				assert.Equal(t, "true", h.Get("X-Ms-Return-Client-Request-Id"))
				assert.True(t, strings.HasPrefix(h.Get("Authorization"), "HMAC-SHA256 Credential=my-id, "))
				assert.Equal(t, "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=", h.Get(auth.ContentHashHeader))
				assert.NotEmpty(t, h.Get("Date"))
			}
			lock.Unlock()

			assert.Equal(t, []string{
				"RequestStarted", "ErrorResponse", "Response",
				"RequestStarted", "Response",
			}, out.events(t))
		})
	}
}
