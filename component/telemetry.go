// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package component // import "github.com/cloudobs/forwarder/component"

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// TelemetrySettings provides components with APIs to report telemetry.
type TelemetrySettings struct {
	// Logger that the component can use to log messages.
	Logger *zap.Logger

	// Registerer is where the component registers its own metrics.
	// A nil Registerer disables self metrics.
	Registerer prometheus.Registerer
}

// BuildInfo is the information that is logged at the application start and
// passed into each component.
type BuildInfo struct {
	// Command is the executable file name, e.g. "forwarder".
	Command string
	// Description is the full name of the forwarder.
	Description string
	// Version string.
	Version string
}

// NewDefaultBuildInfo returns a default BuildInfo.
func NewDefaultBuildInfo() BuildInfo {
	return BuildInfo{
		Command:     "forwarder",
		Description: "Cloud telemetry forwarder",
		Version:     "latest",
	}
}
