// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "HTTPIPE"

// keys lists every setting, so that environment variables are bound
// even when the file does not mention them.
var keys = []string{
	"connection_string",
	"client_request_id_header",
	"buffered",
	"retry.disabled",
	"retry.times",
	"retry.base_wait",
	"retry.max_wait",
	"retry.status_codes",
	"timeout.attempt",
	"timeout.after",
	"logging.disabled",
	"logging.level",
	"logging.format",
	"logging.output",
	"logging.content",
	"logging.error_content",
	"tracing.enabled",
}

// Load reads the configuration file at path, if path is not empty,
// overlays HTTPIPE_* environment variables, and returns the result with
// defaults applied and validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("httpipe/config: failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("httpipe/config: failed to read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("httpipe/config: failed to unmarshal: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
