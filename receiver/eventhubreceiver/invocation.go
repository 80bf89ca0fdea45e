// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package eventhubreceiver // import "github.com/cloudobs/forwarder/receiver/eventhubreceiver"

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/cloudobs/forwarder/consumer/consumererror"
)

// Invocation is one event hub trigger firing with cardinality "many".
type Invocation struct {
	// Events are the raw event bodies in partition order.
	Events []json.RawMessage

	// PartitionContext and SystemPropertiesArray come from the trigger
	// metadata shared by every event of the invocation.
	PartitionContext      json.RawMessage
	SystemPropertiesArray []json.RawMessage

	// HasMetadata is false when the host sent no trigger metadata.
	HasMetadata bool
}

// ParseInvocation decodes the body the Functions host posts to a custom
// handler:
//
//	{"Data": {"<binding>": [event, ...]}, "Metadata": {"PartitionContext": {...}, "SystemPropertiesArray": [...]}}
//
// When binding is not present in Data and Data holds exactly one binding,
// that binding is used.
func ParseInvocation(body []byte, binding string) (Invocation, error) {
	if !gjson.ValidBytes(body) {
		return Invocation{}, consumererror.NewSourceError(errors.New("invocation request is not a valid JSON"))
	}
	root := gjson.ParseBytes(body)

	var events gjson.Result
	if data := root.Get("Data"); data.IsObject() {
		bindings := data.Map()
		if v, ok := bindings[binding]; ok {
			events = v
		} else if len(bindings) == 1 {
			for _, v := range bindings {
				events = v
			}
		}
	}
	if !events.Exists() {
		return Invocation{}, consumererror.NewSourceError(fmt.Errorf("invocation has no %q binding data", binding))
	}

	inv := Invocation{}
	if events.Type == gjson.String && gjson.Valid(events.Str) {
		events = gjson.Parse(events.Str)
	}
	if events.IsArray() {
		for _, e := range events.Array() {
			inv.Events = append(inv.Events, eventBody(e))
		}
	} else {
		inv.Events = append(inv.Events, eventBody(events))
	}

	meta := root.Get("Metadata")
	if meta.IsObject() && len(meta.Map()) > 0 {
		inv.HasMetadata = true
		if pc := meta.Get("PartitionContext"); pc.Exists() {
			inv.PartitionContext = json.RawMessage(pc.Raw)
		}
		if props := meta.Get("SystemPropertiesArray"); props.IsArray() {
			inv.SystemPropertiesArray = []json.RawMessage{}
			for _, p := range props.Array() {
				inv.SystemPropertiesArray = append(inv.SystemPropertiesArray, json.RawMessage(p.Raw))
			}
		}
	}
	return inv, nil
}

// eventBody keeps string events as their text so UnmarshalEvent can decide
// whether the text is JSON.
func eventBody(e gjson.Result) json.RawMessage {
	if e.Type == gjson.String {
		return json.RawMessage(e.Str)
	}
	return json.RawMessage(e.Raw)
}
