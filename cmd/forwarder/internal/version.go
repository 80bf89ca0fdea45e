// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package internal // import "github.com/cloudobs/forwarder/cmd/forwarder/internal"

import (
	"github.com/spf13/cobra"

	"github.com/cloudobs/forwarder/component"
)

var version = component.NewDefaultBuildInfo().Version

func buildInfo() component.BuildInfo {
	info := component.NewDefaultBuildInfo()
	info.Version = version
	return info
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Version of forwarder",
		Long:  "Prints the version of the forwarder binary",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s version %s\n", cmd.Parent().Name(), version)
		},
	}
}
