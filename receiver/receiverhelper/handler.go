// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package receiverhelper // import "github.com/cloudobs/forwarder/receiver/receiverhelper"

import (
	"context"
	"errors"
	"io"

	"github.com/zoobzio/clockz"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/cloudobs/forwarder/component"
	"github.com/cloudobs/forwarder/consumer/consumererror"
	"github.com/cloudobs/forwarder/exporter/collectexporter"
	"github.com/cloudobs/forwarder/obsreport"
	"github.com/cloudobs/forwarder/processor/batchprocessor"
)

var errHandlerReused = errors.New("handler has already run")

// State is the lifecycle stage of a Handler.
type State int32

const (
	StateIdle State = iota
	StateAccumulating
	StateFlushing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAccumulating:
		return "Accumulating"
	case StateFlushing:
		return "Flushing"
	case StateDone:
		return "Done"
	}
	return "Unknown"
}

// Sender delivers one finished request body.
type Sender interface {
	Send(ctx context.Context, kind batchprocessor.SourceKind, body []byte) (collectexporter.Result, error)
}

// Settings configures a Handler.
type Settings struct {
	component.TelemetrySettings

	Batch batchprocessor.Config

	// Clock stamps the batch metadata. Nil means wall time.
	Clock clockz.Clock

	// Report receives delivery outcomes. Nil disables self metrics.
	Report *obsreport.Report
}

// Handler runs one source to completion. A Handler is single use.
type Handler struct {
	logger *zap.Logger
	cfg    batchprocessor.Config
	clock  clockz.Clock
	report *obsreport.Report
	sender Sender

	state   atomic.Int32
	batches atomic.Int64
	records atomic.Int64
}

// NewHandler returns an idle Handler delivering through sender.
func NewHandler(set Settings, sender Sender) *Handler {
	logger := set.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		logger: logger,
		cfg:    set.Batch,
		clock:  set.Clock,
		report: set.Report,
		sender: sender,
	}
}

// State returns the current lifecycle stage.
func (h *Handler) State() State {
	return State(h.state.Load())
}

// Batches returns the number of batches delivered so far.
func (h *Handler) Batches() int { return int(h.batches.Load()) }

// Records returns the number of records delivered so far.
func (h *Handler) Records() int { return int(h.records.Load()) }

// Run pulls src until io.EOF and delivers every record in batches tagged with
// sc. The first error stops the run; batches already delivered stay delivered.
func (h *Handler) Run(ctx context.Context, src Source, sc batchprocessor.SourceContext) error {
	if !h.state.CompareAndSwap(int32(StateIdle), int32(StateAccumulating)) {
		return consumererror.NewPrecondition(errHandlerReused)
	}
	defer h.state.Store(int32(StateDone))

	acc := batchprocessor.NewAccumulator(h.cfg, h.clock)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		full, err := acc.Append(record)
		if err != nil {
			return err
		}
		if full {
			if err = h.flush(ctx, acc, sc); err != nil {
				return err
			}
		}
	}

	if acc.Count() > 0 {
		if err := h.flush(ctx, acc, sc); err != nil {
			return err
		}
	}
	h.logger.Debug("Source drained",
		zap.String("source", sc.Kind().String()),
		zap.Int("batches", h.Batches()),
		zap.Int("records", h.Records()))
	return nil
}

func (h *Handler) flush(ctx context.Context, acc *batchprocessor.Accumulator, sc batchprocessor.SourceContext) error {
	h.state.Store(int32(StateFlushing))

	meta, err := batchprocessor.BuildMetadata(acc, sc)
	if err != nil {
		return err
	}
	body, err := acc.Payload(meta)
	if err != nil {
		return err
	}

	kind := sc.Kind()
	_, err = h.sender.Send(ctx, kind, body)
	h.report.EndSend(kind.String(), acc.Count(), len(body), err)
	if err != nil {
		h.logger.Error("Failed to deliver batch",
			zap.String("source", kind.String()),
			zap.Int("records", acc.Count()),
			zap.Error(err))
		return err
	}

	h.logger.Debug("Batch delivered",
		zap.String("source", kind.String()),
		zap.Int("records", acc.Count()),
		zap.Int("bytes", len(body)))
	h.batches.Inc()
	h.records.Add(int64(acc.Count()))

	sc.Reset()
	acc.Reset()
	h.state.Store(int32(StateAccumulating))
	return nil
}
