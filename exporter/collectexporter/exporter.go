// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package collectexporter delivers finished batches to the HTTP collector
// endpoint.
package collectexporter // import "github.com/cloudobs/forwarder/exporter/collectexporter"

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/cloudobs/forwarder/component"
	"github.com/cloudobs/forwarder/consumer/consumererror"
	"github.com/cloudobs/forwarder/processor/batchprocessor"
)

const maxErrorBodyBytes = 4 << 10

// Result describes one delivered batch. In debug mode StatusCode is zero
// and Payload holds the body that would have been sent.
type Result struct {
	URL        string
	Payload    []byte
	StatusCode int
}

// Exporter posts request bodies to the collector endpoint. It is safe for
// concurrent use and is meant to be created once per process.
type Exporter struct {
	cfg     *Config
	logger  *zap.Logger
	client  *http.Client
	baseURL string
}

// New validates cfg and builds the HTTP client.
func New(cfg *Config, set component.TelemetrySettings) (*Exporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if set.Logger == nil {
		set.Logger = zap.NewNop()
	}
	client, err := cfg.ToClient(set)
	if err != nil {
		return nil, consumererror.NewConfigurationError(err)
	}

	base := strings.TrimSuffix(cfg.Endpoint, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.collect.%s", cfg.CustomerID, cfg.Domain)
	}

	exp := &Exporter{
		cfg:     cfg,
		logger:  set.Logger,
		client:  client,
		baseURL: base + "/v1/http/" + strings.Trim(cfg.IngestPath, "/"),
	}
	exp.logger.Info("Collector client initialized",
		zap.String("customer_id", cfg.CustomerID),
		zap.String("domain", cfg.Domain),
		zap.String("token", cfg.Token.Hint()),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Int("max_timeout_sec", cfg.MaxTimeoutSec),
		zap.Bool("debug_output", cfg.DebugOutput))
	return exp, nil
}

// URL returns the request URL for batches of the given kind.
func (e *Exporter) URL(kind batchprocessor.SourceKind) string {
	return e.baseURL + "?" + url.Values{"source": []string{kind.String()}}.Encode()
}

// Send posts body as one request. Transport retries happen inside the HTTP
// client; an error returned here is final for this batch.
func (e *Exporter) Send(ctx context.Context, kind batchprocessor.SourceKind, body []byte) (Result, error) {
	if len(body) == 0 {
		return Result{}, consumererror.NewPrecondition(consumererror.ErrEmptyPayload)
	}
	reqURL := e.URL(kind)

	if e.cfg.DebugOutput {
		e.logger.Info("Debug output, request not sent",
			zap.String("url", reqURL),
			zap.ByteString("payload", body))
		return Result{URL: reqURL, Payload: body}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, consumererror.NewDelivery(reqURL, err)
	}
	req.Header.Set("Authorization", e.cfg.Token.BearerHeader())
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return Result{URL: reqURL}, consumererror.NewDelivery(reqURL, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{URL: reqURL, StatusCode: resp.StatusCode},
			consumererror.NewDeliveryStatus(reqURL, resp.StatusCode, string(respBody))
	}

	e.logger.Debug("Observations sent",
		zap.String("source", kind.String()),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("response", respBody))
	return Result{URL: reqURL, StatusCode: resp.StatusCode}, nil
}

// Shutdown releases idle connections.
func (e *Exporter) Shutdown() {
	e.client.CloseIdleConnections()
}
