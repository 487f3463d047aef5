// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds cartvault's single CBOR configuration.
//
// JSON is the format for everything a user may open in an editor: the
// CART and METADATA artifacts and the data.json side-store. CBOR is
// used where bytes are never hand-edited, currently the value column
// of the SQLite side-store. Encoding uses Core Deterministic Encoding
// (RFC 8949 §4.2), so an attribute map always encodes to the same
// bytes regardless of Go map iteration order; the SQLite backend
// relies on this to skip no-op upserts.
//
//	data, err := codec.Marshal(attributes)
//	err = codec.Unmarshal(data, &attributes)
package codec
