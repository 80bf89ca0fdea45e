// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package componenttest // import "github.com/cloudobs/forwarder/component/componenttest"

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cloudobs/forwarder/component"
)

// NewNopTelemetrySettings returns a new nop telemetry settings for Create* functions.
func NewNopTelemetrySettings() component.TelemetrySettings {
	return component.TelemetrySettings{
		Logger: zap.NewNop(),
	}
}

// NewTelemetrySettings returns telemetry settings backed by a fresh registry
// so tests can read the recorded metrics back.
func NewTelemetrySettings(logger *zap.Logger) (component.TelemetrySettings, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return component.TelemetrySettings{
		Logger:     logger,
		Registerer: reg,
	}, reg
}
