// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package vmmetricsreceiver // import "github.com/cloudobs/forwarder/receiver/vmmetricsreceiver"

import (
	"context"
	"encoding/json"
)

const provisioningSucceeded = "Succeeded"

// VM is a virtual machine resource.
type VM struct {
	ID                string
	ProvisioningState string
}

// MetricsQuery selects metric values of one resource.
type MetricsQuery struct {
	MetricNames []string
	Aggregation string
	Interval    string
	Timespan    string
}

// MetricsResponse is the answer to one MetricsQuery.
type MetricsResponse struct {
	// Cost is the query cost reported by the provider.
	Cost float64
	// Values holds one serialized metric with its time series per element.
	Values []json.RawMessage
}

// MetricsClient reads VM metrics from the provider. Provider adapters
// implement it.
type MetricsClient interface {
	// ListVMs returns the VMs of every subscription in location, or in all
	// locations when location is empty.
	ListVMs(ctx context.Context, location string) ([]VM, error)
	// ListMetricDefinitions returns the metric names available for resourceID.
	ListMetricDefinitions(ctx context.Context, resourceID string) ([]string, error)
	ListMetrics(ctx context.Context, resourceID string, query MetricsQuery) (MetricsResponse, error)
}
