// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package collectexporter // import "github.com/cloudobs/forwarder/exporter/collectexporter"

import (
	"errors"

	"go.uber.org/multierr"

	"github.com/cloudobs/forwarder/config/confighttp"
	"github.com/cloudobs/forwarder/config/configopaque"
	"github.com/cloudobs/forwarder/consumer/consumererror"
)

const defaultIngestPath = "azure"

// Config defines configuration for the collector endpoint client.
type Config struct {
	// ClientConfig.Endpoint, when set, replaces the scheme and host derived
	// from CustomerID and Domain, e.g. "http://localhost:8080".
	confighttp.ClientConfig `mapstructure:",squash"`

	CustomerID string              `mapstructure:"customer_id"`
	Domain     string              `mapstructure:"domain"`
	Token      configopaque.String `mapstructure:"token"`

	// IngestPath is the last path segment of /v1/http/{ingest_path}.
	IngestPath string `mapstructure:"ingest_path"`

	// DebugOutput logs payloads instead of sending them.
	DebugOutput bool `mapstructure:"debug_output"`
}

// NewDefaultConfig returns the default client configuration. Identity and
// token have no defaults.
func NewDefaultConfig() Config {
	return Config{
		ClientConfig: confighttp.NewDefaultClientConfig(),
		IngestPath:   defaultIngestPath,
	}
}

// Validate checks that the client can address and authenticate to the
// collector endpoint. Failures are ConfigurationErrors.
func (cfg *Config) Validate() error {
	var errs error
	if cfg.Endpoint == "" {
		if cfg.CustomerID == "" {
			errs = multierr.Append(errs, errors.New("'customer_id' must be set"))
		}
		if cfg.Domain == "" {
			errs = multierr.Append(errs, errors.New("'domain' must be set"))
		}
	}
	if !cfg.Token.IsSet() {
		errs = multierr.Append(errs, errors.New("'token' must be set"))
	}
	if cfg.IngestPath == "" {
		errs = multierr.Append(errs, errors.New("'ingest_path' must not be empty"))
	}
	errs = multierr.Append(errs, cfg.ClientConfig.Validate())
	return consumererror.NewConfigurationError(errs)
}
