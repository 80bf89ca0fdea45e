// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package receiverhelper // import "github.com/cloudobs/forwarder/receiver/receiverhelper"

import (
	"context"
	"io"
)

// Source yields records one at a time. Next returns io.EOF once the source
// is exhausted; any other error aborts the run.
type Source interface {
	Next(ctx context.Context) (any, error)
}

// SourceFunc is an adapter to allow the use of ordinary functions as a Source.
type SourceFunc func(ctx context.Context) (any, error)

// Next calls f(ctx).
func (f SourceFunc) Next(ctx context.Context) (any, error) {
	return f(ctx)
}

// SliceSource yields the records of a slice in order.
type SliceSource struct {
	records []any
	pos     int
}

// NewSliceSource returns a Source over records.
func NewSliceSource(records ...any) *SliceSource {
	return &SliceSource{records: records}
}

func (s *SliceSource) Next(context.Context) (any, error) {
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.records[s.pos] = nil
	s.pos++
	return rec, nil
}

// Len returns the number of records not yet consumed.
func (s *SliceSource) Len() int {
	return len(s.records) - s.pos
}
