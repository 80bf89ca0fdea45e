// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package vmmetricsreceiver forwards the metric time series of every
// provisioned virtual machine.
package vmmetricsreceiver // import "github.com/cloudobs/forwarder/receiver/vmmetricsreceiver"

import (
	"context"
	"encoding/json"
	"io"

	"github.com/zoobzio/clockz"
	"go.uber.org/zap"

	"github.com/cloudobs/forwarder/processor/batchprocessor"
	"github.com/cloudobs/forwarder/receiver/receiverhelper"
)

const aggregationAverage = "average"

// Receiver collects VM metrics and delivers them in batches.
type Receiver struct {
	cfg    Config
	set    receiverhelper.Settings
	client MetricsClient
	sender receiverhelper.Sender
}

// NewReceiver returns a Receiver reading from client.
func NewReceiver(cfg Config, set receiverhelper.Settings, client MetricsClient, sender receiverhelper.Sender) *Receiver {
	if set.Logger == nil {
		set.Logger = zap.NewNop()
	}
	if set.Clock == nil {
		set.Clock = clockz.RealClock
	}
	return &Receiver{cfg: cfg, set: set, client: client, sender: sender}
}

// Collect runs one collection over all VMs.
func (r *Receiver) Collect(ctx context.Context) error {
	timespan, err := Timespan(r.set.Clock.Now(), r.cfg.Schedule, r.cfg.RewindMin)
	if err != nil {
		return err
	}

	sc := batchprocessor.NewVMMetricsContext(r.set.Clock)
	src := &metricsSource{
		cfg:      r.cfg,
		client:   r.client,
		logger:   r.set.Logger,
		sc:       sc,
		timespan: timespan,
	}
	h := receiverhelper.NewHandler(r.set, r.sender)
	if err = h.Run(ctx, src, sc); err != nil {
		return err
	}
	r.set.Logger.Info("VM metrics processed",
		zap.String("timespan", timespan),
		zap.Int("vms", src.vmsDone),
		zap.Int("records", h.Records()),
		zap.Int("batches", h.Batches()))
	return nil
}

// metricsSource walks VM -> metric name chunk -> metric values, keeping the
// summary context in step with the records it yields.
type metricsSource struct {
	cfg      Config
	client   MetricsClient
	logger   *zap.Logger
	sc       *batchprocessor.VMMetricsContext
	timespan string

	vms    []VM
	listed bool

	resourceID string
	chunks     [][]string
	pending    []json.RawMessage
	vmsDone    int
}

func (s *metricsSource) Next(ctx context.Context) (any, error) {
	if !s.listed {
		if err := s.listVMs(ctx); err != nil {
			return nil, err
		}
	}

	for {
		if len(s.pending) > 0 {
			rec := s.pending[0]
			s.pending = s.pending[1:]
			s.sc.AddRecord()
			return rec, nil
		}
		if len(s.chunks) > 0 {
			if err := s.queryChunk(ctx); err != nil {
				return nil, err
			}
			continue
		}
		if s.resourceID != "" {
			s.sc.EndResource()
			s.vmsDone++
			s.logger.Info("Metrics processed for VM", zap.String("resource_id", s.resourceID))
			s.resourceID = ""
		}
		if len(s.vms) == 0 {
			return nil, io.EOF
		}
		if err := s.beginVM(ctx); err != nil {
			return nil, err
		}
	}
}

func (s *metricsSource) listVMs(ctx context.Context) error {
	vms, err := s.client.ListVMs(ctx, s.cfg.Location)
	if err != nil {
		return err
	}
	for _, vm := range vms {
		if vm.ProvisioningState == provisioningSucceeded {
			s.vms = append(s.vms, vm)
		}
	}
	s.listed = true
	return nil
}

func (s *metricsSource) beginVM(ctx context.Context) error {
	vm := s.vms[0]
	s.vms = s.vms[1:]

	s.logger.Info("Listing metrics for VM", zap.String("resource_id", vm.ID))
	names, err := s.client.ListMetricDefinitions(ctx, vm.ID)
	if err != nil {
		return err
	}
	s.resourceID = vm.ID
	s.chunks = chunk(names, s.cfg.MetricBatchSize)
	s.sc.BeginResource(vm.ID, s.timespan, s.cfg.Interval, len(names))
	return nil
}

func (s *metricsSource) queryChunk(ctx context.Context) error {
	names := s.chunks[0]
	s.chunks = s.chunks[1:]
	resp, err := s.client.ListMetrics(ctx, s.resourceID, MetricsQuery{
		MetricNames: names,
		Aggregation: aggregationAverage,
		Interval:    s.cfg.Interval,
		Timespan:    s.timespan,
	})
	if err != nil {
		return err
	}
	s.sc.AddCost(resp.Cost)
	s.pending = resp.Values
	return nil
}

func chunk(names []string, size int) [][]string {
	if size <= 0 {
		size = defaultMetricBatchSize
	}
	out := make([][]string, 0, (len(names)+size-1)/size)
	for start := 0; start < len(names); start += size {
		end := min(start+size, len(names))
		out = append(out, names[start:end])
	}
	return out
}
