// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package internal // import "github.com/cloudobs/forwarder/cmd/forwarder/internal"

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cloudobs/forwarder/component"
	"github.com/cloudobs/forwarder/config"
	"github.com/cloudobs/forwarder/exporter/collectexporter"
	"github.com/cloudobs/forwarder/obsreport"
	"github.com/cloudobs/forwarder/receiver/receiverhelper"
	"github.com/cloudobs/forwarder/service/telemetry"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configFile  string
	envFile     string
	debugOutput bool
}

// Command is the main entrypoint for this application.
func Command() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		SilenceUsage:  true, // Don't print usage on Run error.
		SilenceErrors: true, // Don't print errors; main does it.
		Use:           "forwarder",
		Long: fmt.Sprintf("Cloud telemetry forwarder (%s)", version) + `

forwarder batches event hub events, resource inventories and VM metrics
into bounded JSON arrays and delivers them to the collection endpoint.
Configuration comes from the "--config" file and the environment.
`,
		Args: cobra.NoArgs,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "YAML configuration file")
	pf.StringVar(&flags.envFile, "env-file", "", "dotenv file read before the process environment")
	pf.BoolVar(&flags.debugOutput, "debug-output", false, "log payloads instead of sending them")

	cmd.AddCommand(serveCommand(flags))
	cmd.AddCommand(sendCommand(flags))
	cmd.AddCommand(versionCommand())
	return cmd
}

// pipeline holds what every subcommand builds from the configuration.
type pipeline struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	exporter *collectexporter.Exporter
	settings receiverhelper.Settings
}

func newPipeline(flags *rootFlags) (*pipeline, error) {
	lookup, err := envLookup(flags.envFile)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(config.LoadOptions{ConfigFile: flags.configFile, LookupEnv: lookup})
	if err != nil {
		return nil, err
	}
	if flags.debugOutput {
		cfg.Collector.DebugOutput = true
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := telemetry.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	set := component.TelemetrySettings{Logger: logger, Registerer: registry}
	report, err := obsreport.New(registry)
	if err != nil {
		return nil, err
	}
	exp, err := collectexporter.New(&cfg.Collector, set)
	if err != nil {
		return nil, err
	}

	logger.Info("Cloud telemetry forwarder", zap.String("version", version))
	if flags.configFile != "" {
		logger.Info("Using config file", zap.String("path", flags.configFile))
	}
	return &pipeline{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		exporter: exp,
		settings: receiverhelper.Settings{
			TelemetrySettings: set,
			Batch:             cfg.Batch,
			Report:            report,
		},
	}, nil
}

func (p *pipeline) close() {
	p.exporter.Shutdown()
	_ = p.logger.Sync()
}

// envLookup reads the process environment first and the dotenv file second.
func envLookup(envFile string) (func(string) (string, bool), error) {
	if envFile == "" {
		return os.LookupEnv, nil
	}
	vars, err := godotenv.Read(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %q: %w", envFile, err)
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}, nil
}
