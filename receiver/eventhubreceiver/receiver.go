// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventhubreceiver forwards the events of an event hub triggered
// invocation.
package eventhubreceiver // import "github.com/cloudobs/forwarder/receiver/eventhubreceiver"

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/cloudobs/forwarder/consumer/consumererror"
	"github.com/cloudobs/forwarder/processor/batchprocessor"
	"github.com/cloudobs/forwarder/receiver/receiverhelper"
)

var errMissingMetadata = errors.New("event metadata is missing from function invocation")

// Receiver turns event hub invocations into delivered batches.
type Receiver struct {
	set    receiverhelper.Settings
	sender receiverhelper.Sender
}

// NewReceiver returns a Receiver delivering through sender.
func NewReceiver(set receiverhelper.Settings, sender receiverhelper.Sender) *Receiver {
	if set.Logger == nil {
		set.Logger = zap.NewNop()
	}
	return &Receiver{set: set, sender: sender}
}

// Process delivers every record of inv. An invocation without events is
// skipped.
func (r *Receiver) Process(ctx context.Context, inv Invocation) error {
	if len(inv.Events) == 0 {
		r.set.Logger.Error("0 event to process, skip")
		return nil
	}
	if !inv.HasMetadata {
		return consumererror.NewSourceError(errMissingMetadata)
	}

	sc := batchprocessor.EventHubContext{
		PartitionContext:      inv.PartitionContext,
		SystemPropertiesArray: inv.SystemPropertiesArray,
	}
	h := receiverhelper.NewHandler(r.set, r.sender)
	if err := h.Run(ctx, &eventSource{events: inv.Events}, sc); err != nil {
		return err
	}
	r.set.Logger.Info("Events processed",
		zap.Int("events", len(inv.Events)),
		zap.Int("records", h.Records()),
		zap.Int("batches", h.Batches()))
	return nil
}

// eventSource unmarshals events lazily so that an invalid event only stops
// the run once the batches before it went out.
type eventSource struct {
	events  []json.RawMessage
	pending []json.RawMessage
}

func (s *eventSource) Next(context.Context) (any, error) {
	for len(s.pending) == 0 {
		if len(s.events) == 0 {
			return nil, io.EOF
		}
		records, err := UnmarshalEvent(s.events[0])
		if err != nil {
			return nil, err
		}
		s.events = s.events[1:]
		s.pending = records
	}
	rec := s.pending[0]
	s.pending = s.pending[1:]
	return rec, nil
}
