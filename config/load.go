// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package config // import "github.com/cloudobs/forwarder/config"

import (
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/cloudobs/forwarder/consumer/consumererror"
)

// envBinding maps an environment variable to a configuration key.
type envBinding struct {
	env       string
	key       string
	transform func(string) string
}

// envBindings lists the environment variables read by Load. When several
// variables bind the same key the later one wins.
var envBindings = []envBinding{
	{env: "OBSERVE_CUSTOMER", key: "collector.customer_id"},
	{env: "OBSERVE_DOMAIN", key: "collector.domain"},
	{env: "OBSERVE_DATASTREAM_TOKEN", key: "collector.token"},
	{env: "OBSERVE_TOKEN", key: "collector.token"},
	{env: "OBSERVE_COLLECTOR_ENDPOINT", key: "collector.endpoint"},
	{env: "OBSERVE_INGEST_PATH", key: "collector.ingest_path"},
	{env: "OBSERVE_CLIENT_MAX_RETRIES", key: "collector.max_retries"},
	{env: "OBSERVE_CLIENT_RETRY_ON_STATUS", key: "collector.retry_on_status"},
	{env: "OBSERVE_CLIENT_MAX_TIMEOUT_SEC", key: "collector.max_timeout_sec"},
	{env: "OBSERVE_CLIENT_COMPRESSION", key: "collector.compression"},
	{env: "DEBUG_OUTPUT", key: "collector.debug_output"},
	{env: "OBSERVE_CLIENT_MAX_REQ_SIZE_BYTE", key: "batch.max_req_size_byte"},
	{env: "OBSERVE_CLIENT_MAX_EVENTS_PER_REQ", key: "batch.max_events_per_req"},
	{env: "AZURE_CLIENT_LOCATION", key: "resources.location"},
	{env: "AZURE_CLIENT_LOCATION", key: "vm_metrics.location"},
	{env: "timer_vm_metrics_func_schedule", key: "vm_metrics.schedule"},
	{env: "OBSERVE_VM_METRICS_REWIND_MIN", key: "vm_metrics.rewind_min"},
	{env: "FUNCTIONS_CUSTOMHANDLER_PORT", key: "service.endpoint", transform: func(port string) string { return ":" + port }},
	{env: "LOG_LEVEL", key: "log.level"},
}

// LoadOptions controls the sources read by Load.
type LoadOptions struct {
	// ConfigFile is an optional YAML file.
	ConfigFile string

	// LookupEnv reads the environment. Nil means os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// Load builds the configuration from defaults, then the YAML file, then the
// environment. The returned configuration is not validated.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if opts.ConfigFile != "" {
		if err := k.Load(file.Provider(opts.ConfigFile), yaml.Parser()); err != nil {
			return nil, consumererror.NewConfigurationError(fmt.Errorf("failed to load %q: %w", opts.ConfigFile, err))
		}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := map[string]any{}
	for _, b := range envBindings {
		val, ok := lookup(b.env)
		if !ok || val == "" {
			continue
		}
		if b.transform != nil {
			val = b.transform(val)
		}
		env[b.key] = val
	}
	if err := k.Load(confmap.Provider(env, "."), nil); err != nil {
		return nil, consumererror.NewConfigurationError(err)
	}

	cfg := NewDefaultConfig()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "mapstructure",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, consumererror.NewConfigurationError(fmt.Errorf("failed to decode configuration: %w", err))
	}
	return cfg, nil
}
