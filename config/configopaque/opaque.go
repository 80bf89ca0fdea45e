// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package configopaque holds secrets read from configuration, such as the
// collector token, so that they never reach logs or dumps in clear text.
package configopaque // import "github.com/cloudobs/forwarder/config/configopaque"

import (
	"encoding"
	"fmt"
	"strconv"
	"strings"
)

// String is a secret. It prints, logs and marshals as [REDACTED]; convert it
// to a plain string to read the value.
type String string

const (
	masked   = "[REDACTED]"
	hintSize = 4
)

var (
	_ encoding.TextMarshaler = String("")
	_ fmt.Stringer           = String("")
	_ fmt.GoStringer         = String("")
)

func (s String) MarshalText() ([]byte, error) {
	return []byte(masked), nil
}

// String is used for the %s, %v and %q verbs.
func (s String) String() string {
	return masked
}

// GoString is used for the %#v verb.
func (s String) GoString() string {
	return strconv.Quote(masked)
}

// IsSet reports whether the secret is non-empty.
func (s String) IsSet() bool {
	return s != ""
}

// Hint returns the last characters of the secret behind a mask, enough to
// tell two tokens apart in logs. Short secrets are fully masked.
func (s String) Hint() string {
	if len(s) <= 2*hintSize {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", hintSize) + string(s[len(s)-hintSize:])
}

// BearerHeader returns the Authorization header value for s.
func (s String) BearerHeader() string {
	return "Bearer " + string(s)
}
