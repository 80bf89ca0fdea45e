// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package confighttp // import "github.com/cloudobs/forwarder/config/confighttp"

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/multierr"

	"github.com/cloudobs/forwarder/component"
	"github.com/cloudobs/forwarder/config/configcompression"
	"github.com/cloudobs/forwarder/config/configopaque"
	"github.com/cloudobs/forwarder/config/configretry"
)

const headerContentEncoding = "Content-Encoding"

// ClientConfig defines settings for creating an HTTP client.
type ClientConfig struct {
	// The target URL to send data to. When empty the exporter derives it.
	Endpoint string `mapstructure:"endpoint"`

	// MaxTimeoutSec bounds a whole request, including transport retries.
	MaxTimeoutSec int `mapstructure:"max_timeout_sec"`

	// Compression applied to request bodies.
	Compression configcompression.Type `mapstructure:"compression"`

	// Additional headers attached to each HTTP request sent by the client.
	// Existing header values are overwritten if collision happens.
	Headers map[string]configopaque.String `mapstructure:"headers"`

	configretry.BackOffConfig `mapstructure:",squash"`
}

// NewDefaultClientConfig returns ClientConfig type object with
// the default values of 'MaxTimeoutSec' and the retry policy.
func NewDefaultClientConfig() ClientConfig {
	return ClientConfig{
		MaxTimeoutSec: 10,
		BackOffConfig: configretry.NewDefaultBackOffConfig(),
	}
}

// Timeout returns the client timeout.
func (hcs *ClientConfig) Timeout() time.Duration {
	return time.Duration(hcs.MaxTimeoutSec) * time.Second
}

// Validate checks the client configuration.
func (hcs *ClientConfig) Validate() error {
	var errs error
	if hcs.Endpoint != "" {
		if _, err := url.ParseRequestURI(hcs.Endpoint); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid 'endpoint': %w", err))
		}
	}
	if hcs.MaxTimeoutSec <= 0 {
		errs = multierr.Append(errs, errors.New("'max_timeout_sec' must be positive"))
	}
	errs = multierr.Append(errs, hcs.Compression.Validate())
	errs = multierr.Append(errs, hcs.BackOffConfig.Validate())
	return errs
}

// ToClient creates an HTTP client. The transport chain is, from the outside
// in: headers, compression, retries, connection pool.
func (hcs *ClientConfig) ToClient(set component.TelemetrySettings) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	clientTransport := http.RoundTripper(transport)

	clientTransport = &retryRoundTripper{
		rt:     clientTransport,
		cfg:    hcs.BackOffConfig,
		logger: set.Logger,
	}

	if hcs.Compression.IsCompressed() {
		compressor, err := newCompressor(hcs.Compression)
		if err != nil {
			return nil, err
		}
		clientTransport = &compressRoundTripper{
			rt:              clientTransport,
			compressionType: hcs.Compression,
			compressor:      compressor,
		}
	}

	if len(hcs.Headers) > 0 {
		clientTransport = &headerRoundTripper{
			transport: clientTransport,
			headers:   hcs.Headers,
		}
	}

	return &http.Client{
		Transport: clientTransport,
		Timeout:   hcs.Timeout(),
	}, nil
}

// Custom RoundTripper that adds headers.
type headerRoundTripper struct {
	transport http.RoundTripper
	headers   map[string]configopaque.String
}

// RoundTrip is a custom RoundTripper that adds headers to the request.
func (interceptor *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// Set Host header if provided
	hostHeader, found := interceptor.headers["Host"]
	if found && hostHeader != "" {
		// `Host` field should be set to override default `Host` header value which is Endpoint
		req.Host = string(hostHeader)
	}
	for k, v := range interceptor.headers {
		req.Header.Set(k, string(v))
	}

	// Send the request to next transport.
	return interceptor.transport.RoundTrip(req)
}
