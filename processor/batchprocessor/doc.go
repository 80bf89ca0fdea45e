// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package batchprocessor accumulates records into size-capped JSON array
// requests and builds the delivery metadata that closes each request.
//
// A request body has the shape
//
//	[record_1,record_2,...,record_n,metadata]
//
// where every record is compact JSON and the metadata object summarizes the
// batch. A batch is flushed once it holds MaxEventsPerReq records or once
// its encoded size reaches MaxReqSizeByte. The byte limit is evaluated after
// each append, so a batch may exceed it by at most one record.
package batchprocessor // import "github.com/cloudobs/forwarder/processor/batchprocessor"
