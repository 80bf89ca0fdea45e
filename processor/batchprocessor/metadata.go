// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package batchprocessor // import "github.com/cloudobs/forwarder/processor/batchprocessor"

import (
	"time"

	"github.com/cloudobs/forwarder/consumer/consumererror"
)

// SourceKind names the origin of a batch. It is sent as the "source" query
// parameter and as the AzureSource metadata field.
type SourceKind string

const (
	SourceKindEventHub  SourceKind = "EventHub"
	SourceKindResources SourceKind = "ResourceManagement"
	SourceKindVMMetrics SourceKind = "VmMetrics"
)

// String returns the wire name.
func (k SourceKind) String() string { return string(k) }

// TimeFormat is the layout of every metadata timestamp.
const TimeFormat = time.RFC3339Nano

// Metadata is the trailing element of a request body.
type Metadata struct {
	NumObservations int
	TotalSizeBytes  int
	InitTimeUTC     time.Time
	SubmitTimeUTC   time.Time
	SourceKind      SourceKind

	// Summary holds source specific fields, flattened into the object.
	Summary map[string]any
}

// MarshalJSON flattens the summary next to the common fields. Keys are
// emitted in sorted order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(m.Summary)+5)
	for k, v := range m.Summary {
		obj[k] = v
	}
	obj["ObserveNumObservations"] = m.NumObservations
	obj["ObserveTotalSizeBytes"] = m.TotalSizeBytes
	obj["ObserveInitTimeUtc"] = m.InitTimeUTC.UTC().Format(TimeFormat)
	obj["ObserveSubmitTimeUtc"] = m.SubmitTimeUTC.UTC().Format(TimeFormat)
	obj["AzureSource"] = m.SourceKind
	return jsonAPI.Marshal(obj)
}

// BuildMetadata summarizes the records buffered in acc. The submit time is
// read from the accumulator clock.
func BuildMetadata(acc *Accumulator, sc SourceContext) (Metadata, error) {
	if acc.Count() == 0 || acc.Size() == 0 {
		return Metadata{}, consumererror.NewPrecondition(consumererror.ErrEmptyBatch)
	}
	submit := acc.clock.Now().UTC()
	if submit.Before(acc.InitTime()) {
		submit = acc.InitTime()
	}
	return Metadata{
		NumObservations: acc.Count(),
		TotalSizeBytes:  acc.Size(),
		InitTimeUTC:     acc.InitTime(),
		SubmitTimeUTC:   submit,
		SourceKind:      sc.Kind(),
		Summary:         sc.Summary(),
	}, nil
}
