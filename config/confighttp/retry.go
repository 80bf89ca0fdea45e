// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package confighttp // import "github.com/cloudobs/forwarder/config/confighttp"

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/cloudobs/forwarder/config/configretry"
)

var errBodyNotReplayable = errors.New("request body cannot be replayed for retry")

// retryRoundTripper re-sends a request after connection failures and after
// responses whose status is configured as retryable. Once the budget is
// spent the last response or error is returned unchanged.
type retryRoundTripper struct {
	rt     http.RoundTripper
	cfg    configretry.BackOffConfig
	logger *zap.Logger
}

func (r *retryRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	policy := r.cfg.NewBackOff(ctx)
	attempt := 1
	for {
		resp, err := r.rt.RoundTrip(req)
		if err == nil && !r.cfg.RetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		delay := policy.NextBackOff()
		if delay == backoff.Stop {
			return resp, err
		}

		next, rewindErr := rewindRequest(req)
		if rewindErr != nil {
			return resp, err
		}

		fields := []zap.Field{zap.Int("attempt", attempt), zap.Duration("delay", delay)}
		if err != nil {
			fields = append(fields, zap.Error(err))
		} else {
			fields = append(fields, zap.Int("status", resp.StatusCode))
			drainAndClose(resp.Body)
		}
		if r.logger != nil {
			r.logger.Debug("Retrying request", fields...)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		req = next
		attempt++
	}
}

// rewindRequest returns a copy of req with a fresh body.
func rewindRequest(req *http.Request) (*http.Request, error) {
	next := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return next, nil
	}
	if req.GetBody == nil {
		return nil, errBodyNotReplayable
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	next.Body = body
	return next, nil
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
