// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package batchprocessor // import "github.com/cloudobs/forwarder/processor/batchprocessor"

import (
	"errors"

	"go.uber.org/multierr"
)

const (
	defaultMaxReqSizeByte  = 512 * 1024
	defaultMaxEventsPerReq = 256
)

// Config defines configuration for batch thresholds.
type Config struct {
	// MaxReqSizeByte is the encoded size at which a batch is flushed.
	MaxReqSizeByte int `mapstructure:"max_req_size_byte"`

	// MaxEventsPerReq is the maximum number of records in one batch.
	MaxEventsPerReq int `mapstructure:"max_events_per_req"`
}

// NewDefaultConfig returns the default batch thresholds.
func NewDefaultConfig() Config {
	return Config{
		MaxReqSizeByte:  defaultMaxReqSizeByte,
		MaxEventsPerReq: defaultMaxEventsPerReq,
	}
}

// Validate checks if the batch configuration is valid.
func (cfg *Config) Validate() error {
	var errs error
	if cfg.MaxReqSizeByte <= 0 {
		errs = multierr.Append(errs, errors.New("'max_req_size_byte' must be positive"))
	}
	if cfg.MaxEventsPerReq <= 0 {
		errs = multierr.Append(errs, errors.New("'max_events_per_req' must be positive"))
	}
	return errs
}
