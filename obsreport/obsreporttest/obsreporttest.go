// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package obsreporttest reads delivery metrics back in tests.
package obsreporttest // import "github.com/cloudobs/forwarder/obsreport/obsreporttest"

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Names are hard coded here in order to avoid inadvertent changes to the
// exported metric names.
const (
	sentBatches   = "forwarder_sent_batches"
	sentRecords   = "forwarder_sent_records"
	sentBytes     = "forwarder_sent_bytes"
	failedBatches = "forwarder_send_failed_batches"
	failedRecords = "forwarder_send_failed_records"
)

// Counter returns the value of a delivery counter for one source, or zero
// when the series does not exist.
func Counter(t *testing.T, reg prometheus.Gatherer, name, source string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "source" && lp.GetValue() == source {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

// CheckSent asserts the successful delivery counters of source.
func CheckSent(t *testing.T, reg prometheus.Gatherer, source string, batches, records int) {
	t.Helper()
	assert.InDelta(t, float64(batches), Counter(t, reg, sentBatches, source), 0, sentBatches)
	assert.InDelta(t, float64(records), Counter(t, reg, sentRecords, source), 0, sentRecords)
	if records > 0 {
		assert.Positive(t, Counter(t, reg, sentBytes, source), sentBytes)
	}
}

// CheckFailed asserts the failed delivery counters of source.
func CheckFailed(t *testing.T, reg prometheus.Gatherer, source string, batches, records int) {
	t.Helper()
	assert.InDelta(t, float64(batches), Counter(t, reg, failedBatches, source), 0, failedBatches)
	assert.InDelta(t, float64(records), Counter(t, reg, failedRecords, source), 0, failedRecords)
}

// SeriesCount returns the number of collected series named metricNames.
func SeriesCount(t *testing.T, reg prometheus.Gatherer, metricNames ...string) int {
	t.Helper()
	n, err := testutil.GatherAndCount(reg, metricNames...)
	require.NoError(t, err)
	return n
}
