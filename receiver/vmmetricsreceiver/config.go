// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package vmmetricsreceiver // import "github.com/cloudobs/forwarder/receiver/vmmetricsreceiver"

import (
	"errors"

	"go.uber.org/multierr"
)

const (
	defaultSchedule        = "0 */5 * * * *"
	defaultRewindMin       = 10
	defaultInterval        = "PT1M"
	defaultMetricBatchSize = 20
)

// Config defines configuration for VM metrics collection.
type Config struct {
	// Location restricts the VMs to one region. Empty lists every region.
	Location string `mapstructure:"location"`

	// Schedule is the six field timer expression of the collection trigger.
	// Its minute field sets the length of the queried timespan.
	Schedule string `mapstructure:"schedule"`

	// RewindMin shifts the timespan back so that the metrics are available.
	RewindMin int `mapstructure:"rewind_min"`

	// Interval is the ISO 8601 metric granularity.
	Interval string `mapstructure:"interval"`

	// MetricBatchSize caps the metric names per metrics query.
	MetricBatchSize int `mapstructure:"metric_batch_size"`
}

// NewDefaultConfig returns the default VM metrics configuration.
func NewDefaultConfig() Config {
	return Config{
		Schedule:        defaultSchedule,
		RewindMin:       defaultRewindMin,
		Interval:        defaultInterval,
		MetricBatchSize: defaultMetricBatchSize,
	}
}

// Validate checks if the receiver configuration is valid.
func (cfg *Config) Validate() error {
	var errs error
	if _, err := scheduleStep(cfg.Schedule); err != nil {
		errs = multierr.Append(errs, err)
	}
	if cfg.RewindMin < 0 {
		errs = multierr.Append(errs, errors.New("'rewind_min' must not be negative"))
	}
	if cfg.Interval == "" {
		errs = multierr.Append(errs, errors.New("'interval' must be set"))
	}
	if cfg.MetricBatchSize <= 0 {
		errs = multierr.Append(errs, errors.New("'metric_batch_size' must be positive"))
	}
	return errs
}
