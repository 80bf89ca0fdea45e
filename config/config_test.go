// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/cloudobs/forwarder/config/configcompression"
	"github.com/cloudobs/forwarder/config/configopaque"
	"github.com/cloudobs/forwarder/consumer/consumererror"
)

func envMap(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(LoadOptions{LookupEnv: envMap(nil)})
	require.NoError(t, err)
	assert.Equal(t, NewDefaultConfig(), cfg)

	assert.Equal(t, 524288, cfg.Batch.MaxReqSizeByte)
	assert.Equal(t, 256, cfg.Batch.MaxEventsPerReq)
	assert.Equal(t, 5, cfg.Collector.MaxRetries)
	assert.Equal(t, 10, cfg.Collector.MaxTimeoutSec)
	assert.Equal(t, "azure", cfg.Collector.IngestPath)
	assert.False(t, cfg.Collector.DebugOutput)

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, consumererror.IsConfigurationError(err))
	assert.ErrorContains(t, err, "'customer_id' must be set")
}

func TestLoadEnv(t *testing.T) {
	cfg, err := Load(LoadOptions{LookupEnv: envMap(map[string]string{
		"OBSERVE_CUSTOMER":                  "123456789012",
		"OBSERVE_DOMAIN":                    "observeinc.com",
		"OBSERVE_DATASTREAM_TOKEN":          "datastream",
		"OBSERVE_TOKEN":                     "token",
		"OBSERVE_CLIENT_MAX_RETRIES":        "7",
		"OBSERVE_CLIENT_RETRY_ON_STATUS":    "500,502",
		"OBSERVE_CLIENT_MAX_TIMEOUT_SEC":    "30",
		"OBSERVE_CLIENT_MAX_REQ_SIZE_BYTE":  "1024",
		"OBSERVE_CLIENT_MAX_EVENTS_PER_REQ": "10",
		"DEBUG_OUTPUT":                      "true",
		"AZURE_CLIENT_LOCATION":             "eastus",
		"timer_vm_metrics_func_schedule":    "0 */15 * * * *",
		"OBSERVE_VM_METRICS_REWIND_MIN":     "5",
		"FUNCTIONS_CUSTOMHANDLER_PORT":      "7071",
		"LOG_LEVEL":                         "warn",
	})})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "123456789012", cfg.Collector.CustomerID)
	assert.Equal(t, "observeinc.com", cfg.Collector.Domain)
	assert.Equal(t, configopaque.String("token"), cfg.Collector.Token)
	assert.Equal(t, 7, cfg.Collector.MaxRetries)
	assert.Equal(t, []int{500, 502}, cfg.Collector.RetryOnStatus)
	assert.Equal(t, 30, cfg.Collector.MaxTimeoutSec)
	assert.True(t, cfg.Collector.DebugOutput)
	assert.Equal(t, 1024, cfg.Batch.MaxReqSizeByte)
	assert.Equal(t, 10, cfg.Batch.MaxEventsPerReq)
	assert.Equal(t, "eastus", cfg.Resources.Location)
	assert.Equal(t, "eastus", cfg.VMMetrics.Location)
	assert.Equal(t, "0 */15 * * * *", cfg.VMMetrics.Schedule)
	assert.Equal(t, 5, cfg.VMMetrics.RewindMin)
	assert.Equal(t, ":7071", cfg.Service.Endpoint)
	assert.Equal(t, zapcore.WarnLevel, cfg.Log.Level)
}

func TestLoadDatastreamTokenFallback(t *testing.T) {
	cfg, err := Load(LoadOptions{LookupEnv: envMap(map[string]string{
		"OBSERVE_DATASTREAM_TOKEN": "datastream",
	})})
	require.NoError(t, err)
	assert.Equal(t, configopaque.String("datastream"), cfg.Collector.Token)
}

func TestLoadFileThenEnv(t *testing.T) {
	cfg, err := Load(LoadOptions{
		ConfigFile: filepath.Join("testdata", "config.yaml"),
		LookupEnv: envMap(map[string]string{
			"OBSERVE_TOKEN": "env-token",
		}),
	})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, configopaque.String("env-token"), cfg.Collector.Token)
	assert.Equal(t, 3, cfg.Collector.MaxRetries)
	assert.Equal(t, []int{429, 503}, cfg.Collector.RetryOnStatus)
	assert.Equal(t, 250*time.Millisecond, cfg.Collector.InitialInterval)
	assert.Equal(t, 5*time.Second, cfg.Collector.MaxInterval)
	assert.Equal(t, 20, cfg.Collector.MaxTimeoutSec)
	assert.Equal(t, configcompression.TypeGzip, cfg.Collector.Compression)
	assert.Equal(t, configopaque.String("azure"), cfg.Collector.Headers["X-Forwarder"])
	assert.Equal(t, "azure", cfg.Collector.IngestPath)
	assert.Equal(t, 1048576, cfg.Batch.MaxReqSizeByte)
	assert.Equal(t, 500, cfg.Batch.MaxEventsPerReq)
	assert.Equal(t, "westus2", cfg.Resources.Location)
	assert.Equal(t, 15, cfg.VMMetrics.RewindMin)
	assert.Equal(t, 20, cfg.VMMetrics.MetricBatchSize)
	assert.Equal(t, "PT1M", cfg.VMMetrics.Interval)
	assert.Equal(t, ":9090", cfg.Service.Endpoint)
	assert.Equal(t, "event_hub_telemetry_func", cfg.Service.EventHubFunction)
	assert.Equal(t, zapcore.DebugLevel, cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Encoding)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(LoadOptions{ConfigFile: filepath.Join("testdata", "missing.yaml"), LookupEnv: envMap(nil)})
	require.Error(t, err)
	assert.True(t, consumererror.IsConfigurationError(err))

	_, err = Load(LoadOptions{ConfigFile: filepath.Join("testdata", "invalid.yaml"), LookupEnv: envMap(nil)})
	require.Error(t, err)
	assert.True(t, consumererror.IsConfigurationError(err))

	_, err = Load(LoadOptions{LookupEnv: envMap(map[string]string{"OBSERVE_CLIENT_MAX_RETRIES": "many"})})
	require.Error(t, err)
}

func TestValidateSections(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Collector.CustomerID = "1"
	cfg.Collector.Domain = "d"
	cfg.Collector.Token = "t"
	require.NoError(t, cfg.Validate())

	cfg.Batch.MaxEventsPerReq = 0
	cfg.Service.Endpoint = "nope"
	err := cfg.Validate()
	assert.True(t, consumererror.IsConfigurationError(err))
	assert.ErrorContains(t, err, "batch: 'max_events_per_req' must be positive")
	assert.ErrorContains(t, err, "service: 'endpoint' must be host:port")
}
