// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package obsreport // import "github.com/cloudobs/forwarder/obsreport"

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "forwarder"

	// SourceKey labels every metric with the source kind of the batch.
	SourceKey = "source"

	// SentBatchesKey tracks batches accepted by the collector endpoint.
	SentBatchesKey = "sent_batches"
	// SentRecordsKey tracks records in accepted batches.
	SentRecordsKey = "sent_records"
	// SentBytesKey tracks request body bytes of accepted batches.
	SentBytesKey = "sent_bytes"
	// FailedToSendBatchesKey tracks batches that failed delivery.
	FailedToSendBatchesKey = "send_failed_batches"
	// FailedToSendRecordsKey tracks records in failed batches.
	FailedToSendRecordsKey = "send_failed_records"
	// BatchSizeKey is the histogram of records per batch.
	BatchSizeKey = "batch_send_size"
)

// Report records delivery outcomes. The zero value and a Report created with
// a nil registerer are valid and record nothing.
type Report struct {
	sentBatches   *prometheus.CounterVec
	sentRecords   *prometheus.CounterVec
	sentBytes     *prometheus.CounterVec
	failedBatches *prometheus.CounterVec
	failedRecords *prometheus.CounterVec
	batchSize     *prometheus.HistogramVec
}

// New registers the delivery metrics with reg. Registering twice against
// the same registry reuses the existing collectors.
func New(reg prometheus.Registerer) (*Report, error) {
	if reg == nil {
		return &Report{}, nil
	}
	r := &Report{
		sentBatches: newCounter(SentBatchesKey,
			"Number of batches successfully sent to destination."),
		sentRecords: newCounter(SentRecordsKey,
			"Number of records successfully sent to destination."),
		sentBytes: newCounter(SentBytesKey,
			"Number of request body bytes successfully sent to destination."),
		failedBatches: newCounter(FailedToSendBatchesKey,
			"Number of batches in failed attempts to send to destination."),
		failedRecords: newCounter(FailedToSendRecordsKey,
			"Number of records in failed attempts to send to destination."),
		batchSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      BatchSizeKey,
			Help:      "Number of records in each batch that was sent.",
			Buckets:   []float64{1, 10, 25, 50, 100, 150, 200, 256, 512, 1024},
		}, []string{SourceKey}),
	}

	var err error
	r.sentBatches, err = register(reg, r.sentBatches)
	if err != nil {
		return nil, err
	}
	if r.sentRecords, err = register(reg, r.sentRecords); err != nil {
		return nil, err
	}
	if r.sentBytes, err = register(reg, r.sentBytes); err != nil {
		return nil, err
	}
	if r.failedBatches, err = register(reg, r.failedBatches); err != nil {
		return nil, err
	}
	if r.failedRecords, err = register(reg, r.failedRecords); err != nil {
		return nil, err
	}
	if r.batchSize, err = register(reg, r.batchSize); err != nil {
		return nil, err
	}
	return r, nil
}

// EndSend records the outcome of one batch delivery.
func (r *Report) EndSend(source string, numRecords, numBytes int, err error) {
	if r == nil || r.sentBatches == nil {
		return
	}
	if err != nil {
		r.failedBatches.WithLabelValues(source).Inc()
		r.failedRecords.WithLabelValues(source).Add(float64(numRecords))
		return
	}
	r.sentBatches.WithLabelValues(source).Inc()
	r.sentRecords.WithLabelValues(source).Add(float64(numRecords))
	r.sentBytes.WithLabelValues(source).Add(float64(numBytes))
	r.batchSize.WithLabelValues(source).Observe(float64(numRecords))
}

func newCounter(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, []string{SourceKey})
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
