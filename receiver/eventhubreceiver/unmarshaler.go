// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package eventhubreceiver // import "github.com/cloudobs/forwarder/receiver/eventhubreceiver"

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"

	"github.com/cloudobs/forwarder/consumer/consumererror"
)

var errInvalidEventJSON = errors.New("event data is not a valid JSON")

// UnmarshalEvent splits one event body into records. A body holding an
// object with a "records" array yields one record per element; any other
// JSON value is a single record. A body that is a JSON string is decoded
// first when the string itself holds JSON.
func UnmarshalEvent(body []byte) ([]json.RawMessage, error) {
	if !gjson.ValidBytes(body) {
		return nil, consumererror.NewSourceError(errInvalidEventJSON)
	}
	parsed := gjson.ParseBytes(body)
	if parsed.Type == gjson.String && gjson.Valid(parsed.Str) {
		inner := gjson.Parse(parsed.Str)
		if inner.IsObject() || inner.IsArray() {
			parsed = inner
		}
	}

	if parsed.IsObject() {
		if records := parsed.Get("records"); records.IsArray() {
			elems := records.Array()
			out := make([]json.RawMessage, 0, len(elems))
			for _, r := range elems {
				out = append(out, json.RawMessage(r.Raw))
			}
			return out, nil
		}
	}
	return []json.RawMessage{json.RawMessage(parsed.Raw)}, nil
}
