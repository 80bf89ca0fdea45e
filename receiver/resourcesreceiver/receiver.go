// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package resourcesreceiver forwards the resource inventory of every
// subscription visible to the tenant.
package resourcesreceiver // import "github.com/cloudobs/forwarder/receiver/resourcesreceiver"

import (
	"context"
	"encoding/json"
	"io"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/cloudobs/forwarder/processor/batchprocessor"
	"github.com/cloudobs/forwarder/receiver/receiverhelper"
)

// Receiver walks the inventory and delivers it in batches.
type Receiver struct {
	cfg    Config
	set    receiverhelper.Settings
	lister Lister
	sender receiverhelper.Sender
}

// NewReceiver returns a Receiver reading from lister.
func NewReceiver(cfg Config, set receiverhelper.Settings, lister Lister, sender receiverhelper.Sender) *Receiver {
	if set.Logger == nil {
		set.Logger = zap.NewNop()
	}
	return &Receiver{cfg: cfg, set: set, lister: lister, sender: sender}
}

// Collect runs one inventory walk. Each subscription contributes its
// resources followed by the subscription itself.
func (r *Receiver) Collect(ctx context.Context) error {
	src := &inventorySource{
		location: r.cfg.Location,
		lister:   r.lister,
		logger:   r.set.Logger,
	}
	h := receiverhelper.NewHandler(r.set, r.sender)
	if err := h.Run(ctx, src, batchprocessor.ResourcesContext{}); err != nil {
		return err
	}
	r.set.Logger.Info("Resources processed",
		zap.Int("subscriptions", src.subscriptionsDone),
		zap.Int("records", h.Records()),
		zap.Int("skipped", src.skipped),
		zap.Int("batches", h.Batches()))
	return nil
}

type inventorySource struct {
	location string
	lister   Lister
	logger   *zap.Logger

	subs    []Subscription
	listed  bool
	pending []json.RawMessage
	current *Subscription

	subscriptionsDone int
	skipped           int
}

func (s *inventorySource) Next(ctx context.Context) (any, error) {
	if !s.listed {
		subs, err := s.lister.ListSubscriptions(ctx)
		if err != nil {
			return nil, err
		}
		s.subs = subs
		s.listed = true
	}

	for {
		for len(s.pending) > 0 {
			rec := s.pending[0]
			s.pending = s.pending[1:]
			if s.keep(rec) {
				return rec, nil
			}
			s.skipped++
		}
		if s.current != nil {
			s.logger.Info("Resources processed for subscription",
				zap.String("subscription", s.current.DisplayName),
				zap.String("subscription_id", s.current.ID))
			s.current = nil
			s.subscriptionsDone++
		}
		if len(s.subs) == 0 {
			return nil, io.EOF
		}

		sub := s.subs[0]
		s.subs = s.subs[1:]
		s.logger.Info("Processing resources for subscription",
			zap.String("subscription", sub.DisplayName),
			zap.String("subscription_id", sub.ID))
		resources, err := s.lister.ListResources(ctx, sub)
		if err != nil {
			return nil, err
		}
		s.pending = make([]json.RawMessage, 0, len(resources)+1)
		s.pending = append(s.pending, resources...)
		if len(sub.Raw) > 0 {
			s.pending = append(s.pending, sub.Raw)
		}
		s.current = &sub
	}
}

// keep drops records located outside the configured location.
func (s *inventorySource) keep(rec json.RawMessage) bool {
	if s.location == "" {
		return true
	}
	loc := gjson.GetBytes(rec, "location")
	return !loc.Exists() || loc.String() == s.location
}
