// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package vmmetricsreceiver // import "github.com/cloudobs/forwarder/receiver/vmmetricsreceiver"

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/cloudobs/forwarder/consumer/consumererror"
)

// StaticClient serves a metrics snapshot, for replays and tests. The
// snapshot format is
//
//	{"vms": [{"id": "...", "location": "...", "provisioningState": "...",
//	          "cost": 1, "metrics": [{"name": {"value": "..."}, ...}, ...]}, ...]}
//
// Every ListMetrics call reports the cost of its VM.
type StaticClient struct {
	vms     []staticVM
	byID    map[string]int
	queries int
}

type staticVM struct {
	vm       VM
	location string
	cost     float64
	names    []string
	metrics  map[string]json.RawMessage
}

var _ MetricsClient = (*StaticClient)(nil)

var errUnknownVM = errors.New("unknown VM")

// NewStaticClientFromFile loads a snapshot from path.
func NewStaticClientFromFile(path string) (*StaticClient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics snapshot %q: %w", path, err)
	}
	return NewStaticClient(data)
}

// NewStaticClient parses a snapshot.
func NewStaticClient(data []byte) (*StaticClient, error) {
	if !gjson.ValidBytes(data) {
		return nil, consumererror.NewSourceError(errors.New("metrics snapshot is not a valid JSON"))
	}
	c := &StaticClient{byID: map[string]int{}}
	for i, v := range gjson.GetBytes(data, "vms").Array() {
		id := v.Get("id").String()
		if id == "" {
			return nil, consumererror.NewSourceError(fmt.Errorf("vms[%d] has no id", i))
		}
		svm := staticVM{
			vm:       VM{ID: id, ProvisioningState: v.Get("provisioningState").String()},
			location: v.Get("location").String(),
			cost:     v.Get("cost").Float(),
			metrics:  map[string]json.RawMessage{},
		}
		for _, m := range v.Get("metrics").Array() {
			name := m.Get("name.value").String()
			svm.names = append(svm.names, name)
			svm.metrics[name] = json.RawMessage(m.Raw)
		}
		c.byID[id] = len(c.vms)
		c.vms = append(c.vms, svm)
	}
	return c, nil
}

// ListVMs returns the VMs of the snapshot in location.
func (c *StaticClient) ListVMs(_ context.Context, location string) ([]VM, error) {
	var vms []VM
	for _, v := range c.vms {
		if location != "" && v.location != location {
			continue
		}
		vms = append(vms, v.vm)
	}
	return vms, nil
}

func (c *StaticClient) ListMetricDefinitions(_ context.Context, resourceID string) ([]string, error) {
	v, err := c.lookup(resourceID)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), v.names...), nil
}

func (c *StaticClient) ListMetrics(_ context.Context, resourceID string, query MetricsQuery) (MetricsResponse, error) {
	v, err := c.lookup(resourceID)
	if err != nil {
		return MetricsResponse{}, err
	}
	c.queries++
	resp := MetricsResponse{Cost: v.cost}
	for _, name := range query.MetricNames {
		if m, ok := v.metrics[name]; ok {
			resp.Values = append(resp.Values, m)
		}
	}
	return resp, nil
}

// Queries returns the number of ListMetrics calls served.
func (c *StaticClient) Queries() int {
	return c.queries
}

func (c *StaticClient) lookup(resourceID string) (*staticVM, error) {
	i, ok := c.byID[resourceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownVM, resourceID)
	}
	return &c.vms[i], nil
}
