// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package confighttp defines the configuration settings for creating the
// HTTP client used to deliver batches to the collector endpoint.
//
// Retries are a property of the client's transport: a request handed to the
// returned *http.Client is retried transparently according to
// configretry.BackOffConfig, and the client timeout bounds the whole
// exchange including every retry.
package confighttp // import "github.com/cloudobs/forwarder/config/confighttp"
