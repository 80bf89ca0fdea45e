// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package internal // import "github.com/cloudobs/forwarder/cmd/forwarder/internal"

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cloudobs/forwarder/receiver/eventhubreceiver"
	"github.com/cloudobs/forwarder/receiver/resourcesreceiver"
	"github.com/cloudobs/forwarder/receiver/vmmetricsreceiver"
	"github.com/cloudobs/forwarder/service"
)

const shutdownTimeout = 30 * time.Second

type serveFlags struct {
	inventory       string
	metricsSnapshot string
}

func serveCommand(root *rootFlags) *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Functions custom handler",
		Long: `Serves the Functions custom handler protocol until interrupted.

The event hub function is always routed. The timer functions are routed when
an inventory or a metrics snapshot is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, root, flags)
		},
	}
	cmd.Flags().StringVar(&flags.inventory, "inventory", "", "inventory snapshot served to the resources function")
	cmd.Flags().StringVar(&flags.metricsSnapshot, "vm-metrics-snapshot", "", "metrics snapshot served to the VM metrics function")
	return cmd
}

func serve(ctx context.Context, root *rootFlags, flags *serveFlags) error {
	p, err := newPipeline(root)
	if err != nil {
		return err
	}
	defer p.close()

	set := service.Settings{
		TelemetrySettings: p.settings.TelemetrySettings,
		BuildInfo:         buildInfo(),
		Gatherer:          p.registry,
		EventHub:          eventhubreceiver.NewReceiver(p.settings, p.exporter),
	}
	if flags.inventory != "" {
		lister, lerr := resourcesreceiver.NewStaticListerFromFile(flags.inventory)
		if lerr != nil {
			return lerr
		}
		set.Resources = resourcesreceiver.NewReceiver(p.cfg.Resources, p.settings, lister, p.exporter)
	}
	if flags.metricsSnapshot != "" {
		client, cerr := vmmetricsreceiver.NewStaticClientFromFile(flags.metricsSnapshot)
		if cerr != nil {
			return cerr
		}
		set.VMMetrics = vmmetricsreceiver.NewReceiver(p.cfg.VMMetrics, p.settings, client, p.exporter)
	}

	srv, err := service.New(p.cfg.Service, set)
	if err != nil {
		return err
	}
	if err = srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	p.logger.Info("Shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	total, failed := srv.Invocations()
	p.logger.Info("Shutdown complete", zap.Int64("invocations", total), zap.Int64("failed", failed))
	return err
}
