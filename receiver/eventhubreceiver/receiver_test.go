// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package eventhubreceiver

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cloudobs/forwarder/component"
	"github.com/cloudobs/forwarder/consumer/consumererror"
	"github.com/cloudobs/forwarder/exporter/collectexporter"
	"github.com/cloudobs/forwarder/processor/batchprocessor"
	"github.com/cloudobs/forwarder/receiver/receiverhelper"
)

type captureSender struct {
	mu     sync.Mutex
	bodies [][]byte
}

func (s *captureSender) Send(_ context.Context, kind batchprocessor.SourceKind, body []byte) (collectexporter.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies = append(s.bodies, body)
	return collectexporter.Result{StatusCode: 200}, nil
}

func newTestReceiver(logger *zap.Logger, maxEvents int, sender receiverhelper.Sender) *Receiver {
	return NewReceiver(receiverhelper.Settings{
		TelemetrySettings: component.TelemetrySettings{Logger: logger},
		Batch:             batchprocessor.Config{MaxReqSizeByte: 1 << 20, MaxEventsPerReq: maxEvents},
		Clock:             clockz.NewFakeClock(),
	}, sender)
}

func TestProcess(t *testing.T) {
	sender := &captureSender{}
	r := newTestReceiver(zap.NewNop(), 2, sender)

	inv := Invocation{
		Events: []json.RawMessage{
			json.RawMessage(`{"records":[{"n":1},{"n":2},{"n":3}]}`),
			json.RawMessage(`{"n":4}`),
		},
		PartitionContext:      json.RawMessage(`{"PartitionId":"0"}`),
		SystemPropertiesArray: []json.RawMessage{json.RawMessage(`{}`), json.RawMessage(`{}`)},
		HasMetadata:           true,
	}
	require.NoError(t, r.Process(context.Background(), inv))
	require.Len(t, sender.bodies, 2)

	for _, body := range sender.bodies {
		var arr []map[string]any
		require.NoError(t, json.Unmarshal(body, &arr))
		meta := arr[len(arr)-1]
		assert.Equal(t, "EventHub", meta["AzureSource"])
		assert.EqualValues(t, 2, meta["ObserveNumEvents"])
		assert.Equal(t, map[string]any{"PartitionId": "0"}, meta["AzureEventHubPartitionContext"])
		assert.EqualValues(t, 2, meta["ObserveNumObservations"])
	}
}

func TestProcessEmpty(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	sender := &captureSender{}
	r := newTestReceiver(zap.New(core), 10, sender)

	require.NoError(t, r.Process(context.Background(), Invocation{HasMetadata: true}))
	assert.Empty(t, sender.bodies)
	assert.Equal(t, 1, logs.FilterMessage("0 event to process, skip").Len())
}

func TestProcessMissingMetadata(t *testing.T) {
	sender := &captureSender{}
	r := newTestReceiver(zap.NewNop(), 10, sender)

	err := r.Process(context.Background(), Invocation{Events: []json.RawMessage{json.RawMessage(`{}`)}})
	require.Error(t, err)
	assert.True(t, consumererror.IsSourceError(err))
	assert.Empty(t, sender.bodies)
}

func TestProcessInvalidEventAfterFlush(t *testing.T) {
	sender := &captureSender{}
	r := newTestReceiver(zap.NewNop(), 1, sender)

	inv := Invocation{
		Events:      []json.RawMessage{json.RawMessage(`{"ok":1}`), json.RawMessage(`not json`)},
		HasMetadata: true,
	}
	err := r.Process(context.Background(), inv)
	require.Error(t, err)
	assert.True(t, consumererror.IsSourceError(err))
	assert.Len(t, sender.bodies, 1)
}
