// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package auth

import (
	"context"
	"testing"

	"github.com/gogama/httpipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConnectionString(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c, err := ParseConnectionString("Endpoint=https://example.azconfig.io;Id=abc-123;Secret=c2VjcmV0LWJ5dGVz")
		require.NoError(t, err)
		assert.Equal(t, "https://example.azconfig.io", c.Endpoint.String())
		assert.Equal(t, "abc-123", c.ID)
		assert.Equal(t, []byte("secret-bytes"), c.Secret)
	})
	t.Run("any order and case", func(t *testing.T) {
		c, err := ParseConnectionString("secret=c2VjcmV0LWJ5dGVz; id=abc ;ENDPOINT=https://h;")
		require.NoError(t, err)
		assert.Equal(t, "h", c.Endpoint.Host)
		assert.Equal(t, "abc ", c.ID)
	})
	t.Run("padded secret", func(t *testing.T) {
		c, err := ParseConnectionString("Endpoint=https://h;Id=i;Secret=YQ==")
		require.NoError(t, err)
		assert.Equal(t, []byte("a"), c.Secret)
	})
	errorCases := []struct {
		name string
		s    string
	}{
		{"empty", ""},
		{"missing secret", "Endpoint=https://h;Id=i"},
		{"missing equals", "Endpoint=https://h;Id;Secret=YQ=="},
		{"unknown segment", "Endpoint=https://h;Id=i;Secret=YQ==;Foo=bar"},
		{"duplicate segment", "Endpoint=https://h;Id=i;Id=j;Secret=YQ=="},
		{"relative endpoint", "Endpoint=/path;Id=i;Secret=YQ=="},
		{"bad url", "Endpoint=http://[::1;Id=i;Secret=YQ=="},
		{"bad secret", "Endpoint=https://h;Id=i;Secret=!!!"},
	}
	for _, errorCase := range errorCases {
		t.Run(errorCase.name, func(t *testing.T) {
			c, err := ParseConnectionString(errorCase.s)
			assert.Error(t, err)
			assert.Nil(t, c)
			assert.Contains(t, err.Error(), "httpipe/auth: ")
		})
	}
}

func TestNewPolicyFromCredential(t *testing.T) {
	c, err := ParseConnectionString("Endpoint=https://host;Id=id;Secret=Uw==")
	require.NoError(t, err)
	require.Equal(t, []byte(testSecret), c.Secret)
	capt := &capture{}
	p := httpipe.New(capt, NewPolicyFromCredential(c, WithClock(newMockClock())))
	m := newMessage(t, context.Background(), "GET", "https://host/path?q=1", nil)
	require.NoError(t, p.Send(m))
	assert.Equal(t,
		"HMAC-SHA256 Credential=id, SignedHeaders=date;host;x-ms-content-sha256, Signature=YhzX9WH6yacPq71emQjnAG5mq+eh5nF7ikH65wD/BtQ=",
		capt.headers[0].Get("Authorization"))
}
