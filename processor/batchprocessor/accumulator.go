// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package batchprocessor // import "github.com/cloudobs/forwarder/processor/batchprocessor"

import (
	"bytes"
	"encoding/json"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/zoobzio/clockz"

	"github.com/cloudobs/forwarder/consumer/consumererror"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Accumulator buffers encoded records for a single batch. It is not safe for
// concurrent use; every handler run owns its own Accumulator.
type Accumulator struct {
	cfg   Config
	clock clockz.Clock

	buf      bytes.Buffer
	count    int
	initTime time.Time
}

// NewAccumulator returns an empty Accumulator. A nil clock means wall time.
func NewAccumulator(cfg Config, clock clockz.Clock) *Accumulator {
	if clock == nil {
		clock = clockz.RealClock
	}
	acc := &Accumulator{cfg: cfg, clock: clock}
	acc.Reset()
	return acc
}

// Append encodes record and adds it to the batch. It reports whether the
// batch reached one of its thresholds. A record that cannot be encoded is
// rejected with a SourceError and the batch is left unchanged.
func (a *Accumulator) Append(record any) (bool, error) {
	encoded, err := encodeRecord(record)
	if err != nil {
		return false, consumererror.NewSourceError(err)
	}

	if a.count == 0 {
		a.buf.WriteByte('[')
	} else {
		a.buf.WriteByte(',')
	}
	a.buf.Write(encoded)
	a.count++
	return a.ShouldFlush(), nil
}

// ShouldFlush reports whether the batch reached its record or byte limit.
func (a *Accumulator) ShouldFlush() bool {
	if a.count == 0 {
		return false
	}
	return a.count >= a.cfg.MaxEventsPerReq || a.buf.Len() >= a.cfg.MaxReqSizeByte
}

// Reset drops the buffered records and starts a new batch window.
func (a *Accumulator) Reset() {
	a.buf.Reset()
	a.count = 0
	a.initTime = a.clock.Now().UTC()
}

// Count returns the number of buffered records.
func (a *Accumulator) Count() int { return a.count }

// Size returns the encoded size of the open array, "[" and separators included.
func (a *Accumulator) Size() int { return a.buf.Len() }

// InitTime returns when the current batch window started.
func (a *Accumulator) InitTime() time.Time { return a.initTime }

// Payload closes the array with meta as its last element. The accumulator
// itself is not modified.
func (a *Accumulator) Payload(meta Metadata) ([]byte, error) {
	if a.count == 0 {
		return nil, consumererror.NewPrecondition(consumererror.ErrEmptyBatch)
	}
	encodedMeta, err := jsonAPI.Marshal(meta)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, a.buf.Len()+len(encodedMeta)+2)
	out = append(out, a.buf.Bytes()...)
	out = append(out, ',')
	out = append(out, encodedMeta...)
	out = append(out, ']')
	return out, nil
}

func encodeRecord(record any) ([]byte, error) {
	switch r := record.(type) {
	case json.RawMessage:
		return compactJSON(r)
	case jsoniter.RawMessage:
		return compactJSON(r)
	}
	return jsonAPI.Marshal(record)
}

func compactJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
