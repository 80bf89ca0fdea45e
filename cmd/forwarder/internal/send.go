// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package internal // import "github.com/cloudobs/forwarder/cmd/forwarder/internal"

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudobs/forwarder/receiver/eventhubreceiver"
	"github.com/cloudobs/forwarder/receiver/resourcesreceiver"
	"github.com/cloudobs/forwarder/receiver/vmmetricsreceiver"
)

func sendCommand(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Run one invocation from local input",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(sendEventHubCommand(root))
	cmd.AddCommand(sendResourcesCommand(root))
	cmd.AddCommand(sendVMMetricsCommand(root))
	return cmd
}

func sendEventHubCommand(root *rootFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "eventhub",
		Short: "Forward the events of a saved event hub invocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read invocation %q: %w", file, err)
			}
			p, err := newPipeline(root)
			if err != nil {
				return err
			}
			defer p.close()

			inv, err := eventhubreceiver.ParseInvocation(body, p.cfg.Service.EventHubBinding)
			if err != nil {
				return err
			}
			return eventhubreceiver.NewReceiver(p.settings, p.exporter).Process(cmd.Context(), inv)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "invocation request body")
	mustMarkRequired(cmd, "file")
	return cmd
}

func sendResourcesCommand(root *rootFlags) *cobra.Command {
	var inventory string
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "Forward an inventory snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lister, err := resourcesreceiver.NewStaticListerFromFile(inventory)
			if err != nil {
				return err
			}
			p, err := newPipeline(root)
			if err != nil {
				return err
			}
			defer p.close()
			return resourcesreceiver.NewReceiver(p.cfg.Resources, p.settings, lister, p.exporter).Collect(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&inventory, "inventory", "", "inventory snapshot")
	mustMarkRequired(cmd, "inventory")
	return cmd
}

func sendVMMetricsCommand(root *rootFlags) *cobra.Command {
	var snapshot string
	cmd := &cobra.Command{
		Use:   "vm-metrics",
		Short: "Forward a metrics snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := vmmetricsreceiver.NewStaticClientFromFile(snapshot)
			if err != nil {
				return err
			}
			p, err := newPipeline(root)
			if err != nil {
				return err
			}
			defer p.close()
			return vmmetricsreceiver.NewReceiver(p.cfg.VMMetrics, p.settings, client, p.exporter).Collect(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "metrics snapshot")
	mustMarkRequired(cmd, "snapshot")
	return cmd
}

func mustMarkRequired(cmd *cobra.Command, name string) {
	if err := cmd.MarkFlagRequired(name); err != nil {
		panic(err) // Only fails if the flag is not defined, which is a programmer error.
	}
}
