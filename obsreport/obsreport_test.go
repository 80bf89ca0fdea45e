// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package obsreport_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudobs/forwarder/obsreport"
	"github.com/cloudobs/forwarder/obsreport/obsreporttest"
)

func TestEndSend(t *testing.T) {
	reg := prometheus.NewRegistry()
	rep, err := obsreport.New(reg)
	require.NoError(t, err)

	rep.EndSend("EventHub", 3, 120, nil)
	rep.EndSend("EventHub", 1, 40, nil)
	rep.EndSend("EventHub", 5, 200, errors.New("boom"))
	rep.EndSend("VmMetrics", 2, 80, nil)

	obsreporttest.CheckSent(t, reg, "EventHub", 2, 4)
	obsreporttest.CheckFailed(t, reg, "EventHub", 1, 5)
	obsreporttest.CheckSent(t, reg, "VmMetrics", 1, 2)
	obsreporttest.CheckFailed(t, reg, "VmMetrics", 0, 0)
	assert.InDelta(t, 160.0, obsreporttest.Counter(t, reg, "forwarder_sent_bytes", "EventHub"), 0)
	assert.Equal(t, 2, obsreporttest.SeriesCount(t, reg, "forwarder_batch_send_size"))
}

func TestNewTwiceSharesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := obsreport.New(reg)
	require.NoError(t, err)
	second, err := obsreport.New(reg)
	require.NoError(t, err)

	first.EndSend("ResourceManagement", 1, 10, nil)
	second.EndSend("ResourceManagement", 1, 10, nil)
	obsreporttest.CheckSent(t, reg, "ResourceManagement", 2, 2)
}

func TestNilRegisterer(t *testing.T) {
	rep, err := obsreport.New(nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() { rep.EndSend("EventHub", 1, 1, nil) })

	var nilRep *obsreport.Report
	assert.NotPanics(t, func() { nilRep.EndSend("EventHub", 1, 1, nil) })
}
