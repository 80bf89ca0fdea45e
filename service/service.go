// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package service serves the Functions custom handler protocol: the host
// posts each trigger firing to /{function} and the matching receiver runs
// the invocation to completion before the response is written.
package service // import "github.com/cloudobs/forwarder/service"

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/cloudobs/forwarder/component"
	"github.com/cloudobs/forwarder/receiver/eventhubreceiver"
)

const maxInvocationBytes = 64 << 20

var errInvocationTooLarge = errors.New("invocation body too large")

// EventProcessor handles event hub invocations.
type EventProcessor interface {
	Process(ctx context.Context, inv eventhubreceiver.Invocation) error
}

// Collector handles timer invocations.
type Collector interface {
	Collect(ctx context.Context) error
}

// Settings holds the collaborators of a Service. Nil receivers leave their
// function unrouted.
type Settings struct {
	component.TelemetrySettings
	BuildInfo component.BuildInfo

	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	EventHub  EventProcessor
	Resources Collector
	VMMetrics Collector
}

// Service is the custom handler HTTP server.
type Service struct {
	cfg    Config
	set    Settings
	logger *zap.Logger
	router *mux.Router

	maxBodyBytes int64

	server     *http.Server
	listener   net.Listener
	goroutines sync.WaitGroup

	invocations atomic.Int64
	failures    atomic.Int64
}

// New returns a Service routing invocations to the receivers in set.
func New(cfg Config, set Settings) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if set.Logger == nil {
		set.Logger = zap.NewNop()
	}
	s := &Service{cfg: cfg, set: set, logger: set.Logger, maxBodyBytes: maxInvocationBytes}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if set.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(set.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	if set.EventHub != nil {
		r.HandleFunc("/"+cfg.EventHubFunction, s.handleEventHub).Methods(http.MethodPost)
	}
	if set.Resources != nil {
		r.HandleFunc("/"+cfg.ResourcesFunction, s.collectHandler(cfg.ResourcesFunction, set.Resources)).Methods(http.MethodPost)
	}
	if set.VMMetrics != nil {
		r.HandleFunc("/"+cfg.VMMetricsFunction, s.collectHandler(cfg.VMMetricsFunction, set.VMMetrics)).Methods(http.MethodPost)
	}
	s.router = r
	return s, nil
}

// Handler returns the HTTP handler of the service.
func (s *Service) Handler() http.Handler {
	return s.router
}

// Start binds the listener and serves in the background.
func (s *Service) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to bind to address %q: %w", s.cfg.Endpoint, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting custom handler server",
		zap.String("address", ln.Addr().String()),
		zap.String("version", s.set.BuildInfo.Version))

	s.goroutines.Add(1)
	go func() {
		defer s.goroutines.Done()
		if serveErr := s.server.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("Custom handler server failed", zap.Error(serveErr))
		}
	}()
	return nil
}

// Addr returns the bound address once started.
func (s *Service) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting requests and waits for running invocations.
func (s *Service) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	s.goroutines.Wait()
	return err
}

// Invocations returns the number of invocations handled and failed.
func (s *Service) Invocations() (total, failed int64) {
	return s.invocations.Load(), s.failures.Load()
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

func (s *Service) handleEventHub(w http.ResponseWriter, r *http.Request) {
	id, logger := s.startInvocation(r, s.cfg.EventHubFunction)

	body, err := s.readBody(r)
	if err == nil {
		var inv eventhubreceiver.Invocation
		inv, err = eventhubreceiver.ParseInvocation(body, s.cfg.EventHubBinding)
		if err == nil {
			err = s.set.EventHub.Process(r.Context(), inv)
		}
	}
	s.endInvocation(w, logger, id, err)
}

func (s *Service) collectHandler(function string, c Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, logger := s.startInvocation(r, function)
		_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, s.maxBodyBytes))
		s.endInvocation(w, logger, id, c.Collect(r.Context()))
	}
}

// readBody reads the whole request body, failing when it exceeds the limit.
func (s *Service) readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > s.maxBodyBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", errInvocationTooLarge, s.maxBodyBytes)
	}
	return body, nil
}

func (s *Service) startInvocation(r *http.Request, function string) (string, *zap.Logger) {
	s.invocations.Inc()
	id := r.Header.Get(headerInvocationID)
	if id == "" {
		id = uuid.NewString()
	}
	return id, s.logger.With(zap.String("invocation_id", id), zap.String("function", function))
}

func (s *Service) endInvocation(w http.ResponseWriter, logger *zap.Logger, id string, err error) {
	if err != nil {
		s.failures.Inc()
		logger.Error("Invocation failed", zap.Error(err))
		writeInvocationResponse(w, http.StatusInternalServerError, fmt.Sprintf("invocation %s failed: %v", id, err))
		return
	}
	logger.Info("Invocation succeeded")
	writeInvocationResponse(w, http.StatusOK, fmt.Sprintf("invocation %s succeeded", id))
}
