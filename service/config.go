// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package service // import "github.com/cloudobs/forwarder/service"

import (
	"errors"
	"net"

	"go.uber.org/multierr"
)

// Config defines the custom handler server.
type Config struct {
	// Endpoint is the listen address, e.g. ":8080".
	Endpoint string `mapstructure:"endpoint"`

	// Function names the Functions host posts to.
	EventHubFunction  string `mapstructure:"eventhub_function"`
	ResourcesFunction string `mapstructure:"resources_function"`
	VMMetricsFunction string `mapstructure:"vm_metrics_function"`

	// EventHubBinding is the trigger binding name holding the events.
	EventHubBinding string `mapstructure:"eventhub_binding"`
}

// NewDefaultConfig returns the default server configuration.
func NewDefaultConfig() Config {
	return Config{
		Endpoint:          ":8080",
		EventHubFunction:  "event_hub_telemetry_func",
		ResourcesFunction: "timer_resources_func",
		VMMetricsFunction: "timer_vm_metrics_func",
		EventHubBinding:   "event",
	}
}

// Validate checks the server configuration.
func (cfg *Config) Validate() error {
	var errs error
	if _, _, err := net.SplitHostPort(cfg.Endpoint); err != nil {
		errs = multierr.Append(errs, errors.New("'endpoint' must be host:port"))
	}
	if cfg.EventHubFunction == "" || cfg.ResourcesFunction == "" || cfg.VMMetricsFunction == "" {
		errs = multierr.Append(errs, errors.New("function names must not be empty"))
	}
	return errs
}
