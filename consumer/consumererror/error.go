// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package consumererror // import "github.com/cloudobs/forwarder/consumer/consumererror"

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBatch is wrapped by the PreconditionError returned when metadata
	// is requested for a batch without records.
	ErrEmptyBatch = errors.New("batch contains no records")

	// ErrEmptyPayload is wrapped by the PreconditionError returned when an
	// exporter is asked to send an empty request body.
	ErrEmptyPayload = errors.New("request payload is empty")
)

// ConfigurationError reports missing or invalid settings.
type ConfigurationError struct {
	err error
}

// NewConfigurationError wraps err as a ConfigurationError.
func NewConfigurationError(err error) error {
	if err == nil {
		return nil
	}
	return &ConfigurationError{err: err}
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.err.Error()
}

// Unwrap returns the wrapped error for functions Is and As in standard package errors.
func (e *ConfigurationError) Unwrap() error {
	return e.err
}

// IsConfigurationError checks if an error was wrapped with NewConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// PreconditionError reports a violated internal invariant. It always
// indicates a bug in the caller.
type PreconditionError struct {
	err error
}

// NewPrecondition wraps err as a PreconditionError.
func NewPrecondition(err error) error {
	return &PreconditionError{err: err}
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.err.Error()
}

// Unwrap returns the wrapped error for functions Is and As in standard package errors.
func (e *PreconditionError) Unwrap() error {
	return e.err
}

// IsPrecondition checks if an error was wrapped with NewPrecondition.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// SourceError reports data from an observation source that could not be
// decoded or serialized.
type SourceError struct {
	err error
}

// NewSourceError wraps err as a SourceError. Errors that are already
// classified are returned unchanged.
func NewSourceError(err error) error {
	if err == nil || IsSourceError(err) {
		return err
	}
	return &SourceError{err: err}
}

func (e *SourceError) Error() string {
	return "invalid source data: " + e.err.Error()
}

// Unwrap returns the wrapped error for functions Is and As in standard package errors.
func (e *SourceError) Unwrap() error {
	return e.err
}

// IsSourceError checks if an error was wrapped with NewSourceError.
func IsSourceError(err error) bool {
	var se *SourceError
	return errors.As(err, &se)
}

// DeliveryError reports a batch that the collector endpoint did not accept.
// StatusCode is zero when no response was received.
type DeliveryError struct {
	URL        string
	StatusCode int
	Body       string
	err        error
}

// NewDeliveryStatus returns a DeliveryError for an error response.
func NewDeliveryStatus(url string, statusCode int, body string) error {
	return &DeliveryError{URL: url, StatusCode: statusCode, Body: body}
}

// NewDelivery returns a DeliveryError for a request that got no response.
func NewDelivery(url string, err error) error {
	return &DeliveryError{URL: url, err: err}
}

func (e *DeliveryError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("delivery to %s failed: %v", e.URL, e.err)
	}
	return fmt.Sprintf("delivery to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Unwrap returns the wrapped error for functions Is and As in standard package errors.
func (e *DeliveryError) Unwrap() error {
	return e.err
}

// AsDeliveryError returns the DeliveryError in err's chain, if any.
func AsDeliveryError(err error) (*DeliveryError, bool) {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
