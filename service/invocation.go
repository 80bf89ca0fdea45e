// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package service // import "github.com/cloudobs/forwarder/service"

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

const headerInvocationID = "X-Azure-Functions-InvocationId"

// invocationResponse is the body a custom handler returns to the host.
type invocationResponse struct {
	Outputs     map[string]any `json:"Outputs"`
	Logs        []string       `json:"Logs"`
	ReturnValue any            `json:"ReturnValue"`
}

func writeInvocationResponse(w http.ResponseWriter, status int, logs ...string) {
	if logs == nil {
		logs = []string{}
	}
	body, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(invocationResponse{
		Outputs: map[string]any{},
		Logs:    logs,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
