// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package configretry defines the transport retry policy used when sending
// batches to the collector endpoint.
package configretry // import "github.com/cloudobs/forwarder/config/configretry"

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/multierr"
)

// BackOffConfig defines configuration for retrying a request at the transport
// layer. Connection-level failures are always retryable; HTTP responses are
// retried only when their status code is listed in RetryOnStatus.
type BackOffConfig struct {
	// MaxRetries is the number of retries after the first attempt. Zero disables retries.
	MaxRetries int `mapstructure:"max_retries"`
	// RetryOnStatus lists the response status codes that are retried like a
	// connection failure. Any other status is returned to the caller as is.
	RetryOnStatus []int `mapstructure:"retry_on_status"`
	// InitialInterval the time to wait after the first failure before retrying.
	InitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	// MaxInterval is the upper bound on backoff interval. Once this value is reached the delay between
	// consecutive retries will always be `MaxInterval`.
	MaxInterval time.Duration `mapstructure:"retry_max_interval"`
}

// NewDefaultBackOffConfig returns the default settings for BackOffConfig.
func NewDefaultBackOffConfig() BackOffConfig {
	return BackOffConfig{
		MaxRetries:      5,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// Validate checks the retry configuration is usable.
func (bs *BackOffConfig) Validate() error {
	var errs error
	if bs.MaxRetries < 0 {
		errs = multierr.Append(errs, errors.New("'max_retries' must be non-negative"))
	}
	if bs.InitialInterval < 0 {
		errs = multierr.Append(errs, errors.New("'retry_initial_interval' must be non-negative"))
	}
	if bs.MaxInterval < 0 {
		errs = multierr.Append(errs, errors.New("'retry_max_interval' must be non-negative"))
	}
	if bs.MaxInterval > 0 && bs.InitialInterval > bs.MaxInterval {
		errs = multierr.Append(errs, errors.New("'retry_initial_interval' must not exceed 'retry_max_interval'"))
	}
	for _, code := range bs.RetryOnStatus {
		if code < 100 || code > 599 {
			errs = multierr.Append(errs, fmt.Errorf("'retry_on_status' contains invalid status code %d", code))
		}
	}
	return errs
}

// RetryableStatus reports whether a response with the given status code
// should be retried.
func (bs *BackOffConfig) RetryableStatus(code int) bool {
	return slices.Contains(bs.RetryOnStatus, code)
}

// NewBackOff returns a fresh backoff policy that stops after MaxRetries
// retries or when ctx is done. Overall time is bounded by the caller's
// timeout, so the policy itself has no elapsed time limit.
func (bs *BackOffConfig) NewBackOff(ctx context.Context) backoff.BackOff {
	// Do not use NewExponentialBackOff since it calls Reset and the code here must
	// call Reset after changing the InitialInterval (this saves an unnecessary call to Now).
	expBackoff := &backoff.ExponentialBackOff{
		InitialInterval:     bs.InitialInterval,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         bs.MaxInterval,
		MaxElapsedTime:      0,
		Clock:               backoff.SystemClock,
	}
	expBackoff.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(bs.MaxRetries)), ctx)
}
