// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package batchprocessor

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"

	"github.com/cloudobs/forwarder/consumer/consumererror"
)

func TestDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, 524288, cfg.MaxReqSizeByte)
	assert.Equal(t, 256, cfg.MaxEventsPerReq)
	require.NoError(t, cfg.Validate())

	cfg = Config{}
	err := cfg.Validate()
	assert.ErrorContains(t, err, "max_req_size_byte")
	assert.ErrorContains(t, err, "max_events_per_req")
}

func TestAppendEncodesCompactArray(t *testing.T) {
	acc := NewAccumulator(NewDefaultConfig(), clockz.NewFakeClock())

	full, err := acc.Append(map[string]any{"a": 1})
	require.NoError(t, err)
	assert.False(t, full)
	full, err = acc.Append(json.RawMessage(`{ "b" : [1, 2] }`))
	require.NoError(t, err)
	assert.False(t, full)

	assert.Equal(t, 2, acc.Count())
	assert.Equal(t, len(`[{"a":1},{"b":[1,2]}`), acc.Size())
}

func TestAppendRejectsInvalidRecord(t *testing.T) {
	acc := NewAccumulator(NewDefaultConfig(), clockz.NewFakeClock())
	_, err := acc.Append(map[string]any{"ok": true})
	require.NoError(t, err)
	sizeBefore := acc.Size()

	_, err = acc.Append(json.RawMessage(`{"broken":`))
	require.Error(t, err)
	assert.True(t, consumererror.IsSourceError(err))

	_, err = acc.Append(make(chan int))
	require.Error(t, err)
	assert.True(t, consumererror.IsSourceError(err))

	assert.Equal(t, 1, acc.Count())
	assert.Equal(t, sizeBefore, acc.Size())
}

func TestFlushOnRecordLimit(t *testing.T) {
	acc := NewAccumulator(Config{MaxReqSizeByte: 1 << 20, MaxEventsPerReq: 3}, clockz.NewFakeClock())

	var batches []int
	for i := 0; i < 7; i++ {
		full, err := acc.Append(i)
		require.NoError(t, err)
		assert.LessOrEqual(t, acc.Count(), 3)
		if full {
			batches = append(batches, acc.Count())
			acc.Reset()
		}
	}
	if acc.Count() > 0 {
		batches = append(batches, acc.Count())
	}
	assert.Equal(t, []int{3, 3, 1}, batches)
}

func TestFlushOnByteLimit(t *testing.T) {
	acc := NewAccumulator(Config{MaxReqSizeByte: 10, MaxEventsPerReq: 100}, clockz.NewFakeClock())

	full, err := acc.Append("abc") // [ "abc" -> 6 bytes
	require.NoError(t, err)
	assert.False(t, full)
	assert.Equal(t, 6, acc.Size())

	full, err = acc.Append("d") // ,"d" -> 10 bytes
	require.NoError(t, err)
	assert.True(t, full)
	assert.Equal(t, 10, acc.Size())
}

func TestOversizedRecordIsOneBatch(t *testing.T) {
	acc := NewAccumulator(Config{MaxReqSizeByte: 16, MaxEventsPerReq: 100}, clockz.NewFakeClock())

	full, err := acc.Append(strings.Repeat("x", 64))
	require.NoError(t, err)
	assert.True(t, full)
	assert.Equal(t, 1, acc.Count())
	assert.Greater(t, acc.Size(), 16)
}

func TestResetIsIdempotent(t *testing.T) {
	clock := clockz.NewFakeClock()
	acc := NewAccumulator(NewDefaultConfig(), clock)
	_, err := acc.Append("x")
	require.NoError(t, err)

	clock.Advance(time.Second)
	acc.Reset()
	first := acc.InitTime()
	acc.Reset()

	assert.Equal(t, 0, acc.Count())
	assert.Equal(t, 0, acc.Size())
	assert.False(t, acc.ShouldFlush())
	assert.Equal(t, first, acc.InitTime())
	assert.Equal(t, clock.Now().UTC(), acc.InitTime())
}

func TestPayloadEmpty(t *testing.T) {
	acc := NewAccumulator(NewDefaultConfig(), clockz.NewFakeClock())
	_, err := acc.Payload(Metadata{})
	require.Error(t, err)
	assert.True(t, consumererror.IsPrecondition(err))
}

func TestPayloadRoundTrip(t *testing.T) {
	clock := clockz.NewFakeClock()
	acc := NewAccumulator(Config{MaxReqSizeByte: 1 << 20, MaxEventsPerReq: 4}, clock)

	var sent [][]json.RawMessage
	flush := func() {
		meta, err := BuildMetadata(acc, ResourcesContext{})
		require.NoError(t, err)
		body, err := acc.Payload(meta)
		require.NoError(t, err)

		var arr []json.RawMessage
		require.NoError(t, json.Unmarshal(body, &arr))
		require.Len(t, arr, acc.Count()+1)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(arr[len(arr)-1], &decoded))
		assert.EqualValues(t, acc.Count(), decoded["ObserveNumObservations"])
		assert.EqualValues(t, acc.Size(), decoded["ObserveTotalSizeBytes"])
		assert.Equal(t, "ResourceManagement", decoded["AzureSource"])

		sent = append(sent, arr[:len(arr)-1])
		acc.Reset()
	}

	var want []string
	for i := 0; i < 10; i++ {
		rec := fmt.Sprintf(`{"seq":%d}`, i)
		want = append(want, rec)
		full, err := acc.Append(json.RawMessage(rec))
		require.NoError(t, err)
		if full {
			flush()
		}
	}
	flush()

	var got []string
	for _, batch := range sent {
		assert.LessOrEqual(t, len(batch), 4)
		for _, rec := range batch {
			got = append(got, string(rec))
		}
	}
	assert.Equal(t, want, got)
	assert.Len(t, sent, 3)
}
