// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package internal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/cloudobs/forwarder/consumer/consumererror"
)

type collectServer struct {
	*httptest.Server
	mu      sync.Mutex
	sources []string
	bodies  [][]byte
}

func newCollectServer(t *testing.T) *collectServer {
	cs := &collectServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		cs.mu.Lock()
		cs.sources = append(cs.sources, r.URL.Query().Get("source"))
		cs.bodies = append(cs.bodies, body)
		cs.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func writeEnvFile(t *testing.T, endpoint string) string {
	path := filepath.Join(t.TempDir(), ".env")
	content := fmt.Sprintf("OBSERVE_COLLECTOR_ENDPOINT=%s\nOBSERVE_TOKEN=secret\nLOG_LEVEL=error\nFUNCTIONS_CUSTOMHANDLER_PORT=0\n", endpoint)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(ctx context.Context, args ...string) (string, error) {
	cmd := Command()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestCommand(t *testing.T) {
	cmd := Command()
	assert.Equal(t, "forwarder", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
	for _, name := range []string{"config", "env-file", "debug-output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "send", "version"}, names)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(context.Background(), "version")
	require.NoError(t, err)
	assert.Equal(t, "forwarder version "+version+"\n", out)
}

func TestSendResources(t *testing.T) {
	srv := newCollectServer(t)
	_, err := execute(context.Background(),
		"send", "resources",
		"--env-file", writeEnvFile(t, srv.URL),
		"--inventory", filepath.Join("..", "..", "..", "receiver", "resourcesreceiver", "testdata", "inventory.json"))
	require.NoError(t, err)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	require.NotEmpty(t, srv.bodies)
	assert.Equal(t, "ResourceManagement", srv.sources[0])
	arr := gjson.ParseBytes(srv.bodies[0]).Array()
	require.NotEmpty(t, arr)
	assert.Equal(t, "ResourceManagement", arr[len(arr)-1].Get("AzureSource").String())
}

func TestSendVMMetrics(t *testing.T) {
	srv := newCollectServer(t)
	_, err := execute(context.Background(),
		"send", "vm-metrics",
		"--env-file", writeEnvFile(t, srv.URL),
		"--snapshot", filepath.Join("..", "..", "..", "receiver", "vmmetricsreceiver", "testdata", "metrics.json"))
	require.NoError(t, err)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	require.Len(t, srv.bodies, 1)
	assert.Equal(t, "VmMetrics", srv.sources[0])
	// Two succeeded VMs, three plus one metrics, plus the metadata entry.
	assert.Len(t, gjson.ParseBytes(srv.bodies[0]).Array(), 5)
}

func TestSendEventHub(t *testing.T) {
	srv := newCollectServer(t)
	inv := filepath.Join(t.TempDir(), "invocation.json")
	require.NoError(t, os.WriteFile(inv, []byte(`{
		"Data": {"event": [{"records":[{"a":1},{"a":2}]}, {"b":3}]},
		"Metadata": {"PartitionContext": {"PartitionId":"0"}, "SystemPropertiesArray": [{}, {}]}
	}`), 0o600))

	_, err := execute(context.Background(), "send", "eventhub", "--env-file", writeEnvFile(t, srv.URL), "--file", inv)
	require.NoError(t, err)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	require.Len(t, srv.bodies, 1)
	assert.Equal(t, "EventHub", srv.sources[0])
	arr := gjson.ParseBytes(srv.bodies[0]).Array()
	require.Len(t, arr, 4)
	assert.EqualValues(t, 3, arr[3].Get("ObserveNumObservations").Int())
	assert.EqualValues(t, 2, arr[3].Get("ObserveNumEvents").Int())
}

func TestSendDebugOutput(t *testing.T) {
	srv := newCollectServer(t)
	inv := filepath.Join(t.TempDir(), "invocation.json")
	require.NoError(t, os.WriteFile(inv, []byte(`{"Data":{"event":[{"a":1}]},"Metadata":{"PartitionContext":{}}}`), 0o600))

	_, err := execute(context.Background(), "send", "eventhub", "--debug-output", "--env-file", writeEnvFile(t, srv.URL), "--file", inv)
	require.NoError(t, err)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Empty(t, srv.bodies)
}

func TestSendInvalidConfiguration(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("OBSERVE_COLLECTOR_ENDPOINT=http://localhost:1\n"), 0o600))

	_, err := execute(context.Background(),
		"send", "resources",
		"--env-file", envFile,
		"--inventory", filepath.Join("..", "..", "..", "receiver", "resourcesreceiver", "testdata", "inventory.json"))
	require.Error(t, err)
	assert.True(t, consumererror.IsConfigurationError(err))
	assert.Equal(t, 1, strings.Count(err.Error(), "invalid configuration"))
}

func TestSendMissingInput(t *testing.T) {
	_, err := execute(context.Background(), "send", "eventhub")
	require.ErrorContains(t, err, `required flag(s) "file" not set`)

	_, err = execute(context.Background(), "send", "resources", "--inventory", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = execute(context.Background(), "--env-file", filepath.Join(t.TempDir(), "missing.env"), "send", "eventhub", "--file", "x")
	require.Error(t, err)
}

func TestServeStopsOnCancel(t *testing.T) {
	srv := newCollectServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := execute(ctx, "serve",
		"--env-file", writeEnvFile(t, srv.URL),
		"--inventory", filepath.Join("..", "..", "..", "receiver", "resourcesreceiver", "testdata", "inventory.json"))
	require.NoError(t, err)
}
