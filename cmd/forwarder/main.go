// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Program forwarder batches cloud telemetry and delivers it to the
// collection endpoint.
package main

import (
	"fmt"
	"os"

	"github.com/cloudobs/forwarder/cmd/forwarder/internal"
)

func main() {
	cmd := internal.Command()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
