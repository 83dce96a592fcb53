// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"time"

	"github.com/gogama/httpipe"
	"github.com/gogama/httpipe/auth"
	"github.com/gogama/httpipe/logging"
	"github.com/gogama/httpipe/retry"
	"github.com/gogama/httpipe/timeout"
	"github.com/gogama/httpipe/tracing"
)

// Build assembles the standard pipeline described by cfg, sending
// requests with doer. If doer is nil, http.DefaultClient is used.
//
// Defaults are applied to cfg before it is validated.
func Build(cfg *Config, doer httpipe.HTTPDoer) (*httpipe.Pipeline, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	policies := []httpipe.Policy{httpipe.ClientRequestIDPolicy(cfg.ClientRequestIDHeader)}
	if cfg.Tracing.Enabled {
		policies = append(policies, tracing.NewPolicy())
	}
	if !cfg.Retry.Disabled {
		policies = append(policies, retryPolicy(cfg.Retry))
	}
	policies = append(policies, timeoutPolicy(cfg.Timeout))
	if cfg.ConnectionString != "" {
		c, err := auth.ParseConnectionString(cfg.ConnectionString)
		if err != nil {
			return nil, err
		}
		policies = append(policies, auth.NewPolicyFromCredential(c))
	}
	if !cfg.Logging.Disabled {
		policies = append(policies, loggingPolicy(cfg.Logging))
	}

	t := httpipe.NewTransport(doer)
	t.Buffered = cfg.Buffered
	return httpipe.New(t, policies...), nil
}

func retryPolicy(c RetryConfig) *retry.Policy {
	d := retry.Times(c.Times).And(retry.StatusCode(c.StatusCodes...).Or(retry.TransientErr))
	return retry.NewPolicy(d, retry.NewExpWaiter(c.BaseWait, c.MaxWait, time.Now()))
}

func timeoutPolicy(c TimeoutConfig) timeout.Policy {
	switch {
	case c.Attempt < 0:
		return timeout.Infinite
	case len(c.After) > 0:
		return timeout.Adaptive(c.Attempt, c.After...)
	default:
		return timeout.Fixed(c.Attempt)
	}
}

func loggingPolicy(c LoggingConfig) *logging.Policy {
	l := NewLogger(c)
	sink := &logging.ZerologSink{
		Logger:          l,
		LogContent:      c.Content,
		LogErrorContent: c.ErrorContent,
	}
	return logging.NewPolicy(sink, logging.WithFallbackLogger(l))
}
