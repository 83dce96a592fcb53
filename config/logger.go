// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewLogger returns the zerolog logger described by c. An unknown level
// falls back to info.
func NewLogger(c LoggingConfig) zerolog.Logger {
	w := c.output()
	if w == nil {
		w = os.Stderr
	}
	if c.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("component", "httpipe").Logger()
}

func (c *LoggingConfig) output() io.Writer {
	if c.Writer != nil {
		return c.Writer
	}
	switch c.Output {
	case "stdout":
		return os.Stdout
	case "stderr", "":
		return os.Stderr
	case "discard":
		return io.Discard
	default:
		return nil
	}
}
