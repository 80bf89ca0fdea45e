// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry // import "github.com/cloudobs/forwarder/service/telemetry"

import (
	"errors"
	"fmt"

	"go.uber.org/zap/zapcore"
)

// LogsConfig defines the configurable settings for the process logger.
type LogsConfig struct {
	// Level is the minimum enabled logging level.
	// (default = "INFO")
	Level zapcore.Level `mapstructure:"level"`

	// Development puts the logger in development mode, which changes the
	// behavior of DPanicLevel and takes stacktraces more liberally.
	// (default = false)
	Development bool `mapstructure:"development"`

	// Encoding sets the logger's encoding.
	// Example values are "json", "console".
	Encoding string `mapstructure:"encoding"`

	// DisableCaller stops annotating logs with the calling function's file
	// name and line number. By default, all logs are annotated.
	// (default = false)
	DisableCaller bool `mapstructure:"disable_caller"`

	// DisableStacktrace completely disables automatic stacktrace capturing. By
	// default, stacktraces are captured for WarnLevel and above logs in
	// development and ErrorLevel and above in production.
	// (default = false)
	DisableStacktrace bool `mapstructure:"disable_stacktrace"`

	// Sampling sets a sampling policy. A nil Sampling disables it.
	Sampling *LogsSamplingConfig `mapstructure:"sampling"`

	// OutputPaths is a list of URLs or file paths to write logging output to.
	// (default = ["stderr"])
	OutputPaths []string `mapstructure:"output_paths"`

	// ErrorOutputPaths is a list of URLs to write internal logger errors to.
	// (default = ["stderr"])
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// LogsSamplingConfig logs the first Initial entries with the same level and
// message every second, then every Thereafter-th.
type LogsSamplingConfig struct {
	Initial    int `mapstructure:"initial"`
	Thereafter int `mapstructure:"thereafter"`
}

// NewDefaultLogsConfig returns the default logging configuration.
func NewDefaultLogsConfig() LogsConfig {
	return LogsConfig{
		Level:            zapcore.InfoLevel,
		Encoding:         "json",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
}

// Validate checks the logging configuration.
func (cfg *LogsConfig) Validate() error {
	switch cfg.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported log encoding %q", cfg.Encoding)
	}
	if cfg.Sampling != nil && (cfg.Sampling.Initial < 0 || cfg.Sampling.Thereafter < 0) {
		return errors.New("log sampling values must not be negative")
	}
	return nil
}
