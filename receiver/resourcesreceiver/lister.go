// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package resourcesreceiver // import "github.com/cloudobs/forwarder/receiver/resourcesreceiver"

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/cloudobs/forwarder/consumer/consumererror"
)

// Subscription is one billing scope of the tenant.
type Subscription struct {
	ID          string
	DisplayName string

	// Raw is the serialized subscription, forwarded as a record.
	Raw json.RawMessage
}

// Lister enumerates the tenant inventory. Provider adapters implement it.
type Lister interface {
	ListSubscriptions(ctx context.Context) ([]Subscription, error)
	// ListResources returns the serialized resources of one subscription.
	ListResources(ctx context.Context, sub Subscription) ([]json.RawMessage, error)
}

// StaticLister serves an inventory snapshot, for replays and tests. The
// snapshot format is
//
//	{"subscriptions": [{"subscription": {...}, "resources": [{...}, ...]}, ...]}
type StaticLister struct {
	subs      []Subscription
	resources map[string][]json.RawMessage
}

var _ Lister = (*StaticLister)(nil)

// NewStaticListerFromFile loads a snapshot from path.
func NewStaticListerFromFile(path string) (*StaticLister, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory %q: %w", path, err)
	}
	return NewStaticLister(data)
}

// NewStaticLister parses a snapshot.
func NewStaticLister(data []byte) (*StaticLister, error) {
	if !gjson.ValidBytes(data) {
		return nil, consumererror.NewSourceError(fmt.Errorf("inventory is not a valid JSON"))
	}
	l := &StaticLister{resources: map[string][]json.RawMessage{}}
	for i, entry := range gjson.GetBytes(data, "subscriptions").Array() {
		sub := entry.Get("subscription")
		if !sub.IsObject() {
			return nil, consumererror.NewSourceError(fmt.Errorf("inventory entry %d has no subscription object", i))
		}
		s := Subscription{
			ID:          sub.Get("subscriptionId").String(),
			DisplayName: sub.Get("displayName").String(),
			Raw:         json.RawMessage(sub.Raw),
		}
		l.subs = append(l.subs, s)
		for _, res := range entry.Get("resources").Array() {
			l.resources[s.ID] = append(l.resources[s.ID], json.RawMessage(res.Raw))
		}
	}
	return l, nil
}

func (l *StaticLister) ListSubscriptions(context.Context) ([]Subscription, error) {
	return l.subs, nil
}

func (l *StaticLister) ListResources(_ context.Context, sub Subscription) ([]json.RawMessage, error) {
	return l.resources[sub.ID], nil
}
