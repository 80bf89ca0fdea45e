// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package resourcesreceiver // import "github.com/cloudobs/forwarder/receiver/resourcesreceiver"

// Config defines configuration for the resource inventory walk.
type Config struct {
	// Location keeps only resources in this region. Resources without a
	// location are always kept. Empty disables the filter.
	Location string `mapstructure:"location"`
}
