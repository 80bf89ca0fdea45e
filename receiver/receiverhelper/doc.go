// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package receiverhelper drives one pass over a record source: records are
// pulled in order, appended to a batch, and each batch is delivered as soon
// as it reaches a threshold. The trailing partial batch is delivered when the
// source is exhausted.
package receiverhelper // import "github.com/cloudobs/forwarder/receiver/receiverhelper"
