// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package configcompression defines the request body compression types
// understood by the collector endpoint.
package configcompression // import "github.com/cloudobs/forwarder/config/configcompression"

import "fmt"

// Type represents a compression method.
type Type string

const (
	TypeGzip   Type = "gzip"
	TypeZstd   Type = "zstd"
	TypeSnappy Type = "snappy"
	typeNone   Type = "none"
	typeEmpty  Type = ""
)

// IsCompressed returns false if Type is nil, none, or empty.
// Otherwise, returns true.
func (ct *Type) IsCompressed() bool {
	return ct != nil && *ct != typeEmpty && *ct != typeNone
}

// UnmarshalText accepts one of the supported compression names.
func (ct *Type) UnmarshalText(in []byte) error {
	typ := Type(in)
	if err := typ.Validate(); err != nil {
		return err
	}
	*ct = typ
	return nil
}

// Validate checks the compression name is supported.
func (ct Type) Validate() error {
	switch ct {
	case TypeGzip,
		TypeZstd,
		TypeSnappy,
		typeNone,
		typeEmpty:
		return nil
	}
	return fmt.Errorf("unsupported compression type %q", string(ct))
}
