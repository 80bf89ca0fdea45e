// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package obsreport provides the self metrics recorded while batches are
// delivered. Metric names are part of the operational interface: changing
// them breaks dashboards and alerts.
package obsreport // import "github.com/cloudobs/forwarder/obsreport"
