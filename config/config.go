// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package config defines the forwarder configuration and loads it from
// defaults, an optional YAML file and the environment.
package config // import "github.com/cloudobs/forwarder/config"

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/cloudobs/forwarder/consumer/consumererror"
	"github.com/cloudobs/forwarder/exporter/collectexporter"
	"github.com/cloudobs/forwarder/processor/batchprocessor"
	"github.com/cloudobs/forwarder/receiver/resourcesreceiver"
	"github.com/cloudobs/forwarder/receiver/vmmetricsreceiver"
	"github.com/cloudobs/forwarder/service"
	"github.com/cloudobs/forwarder/service/telemetry"
)

// Config is the complete forwarder configuration.
type Config struct {
	Collector collectexporter.Config   `mapstructure:"collector"`
	Batch     batchprocessor.Config    `mapstructure:"batch"`
	Resources resourcesreceiver.Config `mapstructure:"resources"`
	VMMetrics vmmetricsreceiver.Config `mapstructure:"vm_metrics"`
	Service   service.Config           `mapstructure:"service"`
	Log       telemetry.LogsConfig     `mapstructure:"log"`
}

// NewDefaultConfig returns the configuration used when nothing is set.
func NewDefaultConfig() *Config {
	return &Config{
		Collector: collectexporter.NewDefaultConfig(),
		Batch:     batchprocessor.NewDefaultConfig(),
		VMMetrics: vmmetricsreceiver.NewDefaultConfig(),
		Service:   service.NewDefaultConfig(),
		Log:       telemetry.NewDefaultLogsConfig(),
	}
}

// Validate checks every section. The result is a ConfigurationError.
func (cfg *Config) Validate() error {
	var errs error
	errs = multierr.Append(errs, cfg.Collector.Validate())
	errs = multierr.Append(errs, section("batch", cfg.Batch.Validate()))
	errs = multierr.Append(errs, section("vm_metrics", cfg.VMMetrics.Validate()))
	errs = multierr.Append(errs, section("service", cfg.Service.Validate()))
	errs = multierr.Append(errs, section("log", cfg.Log.Validate()))
	return consumererror.NewConfigurationError(errs)
}

func section(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}
