// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package consumererror provides wrappers to easily classify errors. This allows
// appropriate action by error handlers without the need to know each individual
// error type/instance.
//
// # Error handling
//
// Errors are classified into four kinds, none of which is recovered inside the
// forwarder. They all propagate to the invocation entry point, which logs them
// and fails the invocation:
//
//   - ConfigurationError: required identity or authentication settings are
//     missing. Reported before any work begins.
//   - PreconditionError: an internal invariant was violated, for example an
//     empty batch reached the metadata builder or the exporter.
//   - SourceError: an observation source produced data that is malformed or
//     cannot be serialized.
//   - DeliveryError: the collector endpoint rejected a batch or could not be
//     reached once the transport retries were exhausted.
package consumererror // import "github.com/cloudobs/forwarder/consumer/consumererror"
