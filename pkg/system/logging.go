// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package system holds process-wide plumbing shared by the commands.
package system

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func loggerConfig(debug bool) zap.Config {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	// Stacktraces on WARN make degraded store rows unreadable.
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339))
	}
	cfg.EncoderConfig.TimeKey = "ts"
	return cfg
}

// NewLogger builds the process logger. Logs go to stderr so command output on
// stdout stays machine readable.
func NewLogger(debug bool) (*zap.Logger, error) {
	return loggerConfig(debug).Build()
}

// DocumentFields returns the log fields identifying one document record.
func DocumentFields(name, owner string) []interface{} {
	fields := []interface{}{"document", name}
	if owner != "" {
		fields = append(fields, "owner", owner)
	}
	return fields
}
