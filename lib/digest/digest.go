// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest computes the 128-bit content fingerprints that key the
// metadata side-store.
//
// Two algorithms are supported. BLAKE3 truncated to 128 bits is the
// default. MD5 exists only to read side-stores written by earlier
// releases of the backup tool, whose data.json files are keyed by MD5
// hex digests. Digests are rendered as 32 lower-case hex characters in
// both cases, so a side-store cannot tell them apart; pick one per
// storage root and keep it.
package digest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Size is the digest length in bytes.
const Size = 16

// Algorithm selects the hash function used for content digests.
type Algorithm string

const (
	// BLAKE3 is the first 16 bytes of the BLAKE3 extendable output.
	// BLAKE3 output is prefix-consistent, so this equals a BLAKE3 hash
	// requested at 128-bit length.
	BLAKE3 Algorithm = "blake3"

	// MD5 matches side-stores created by the legacy tool.
	MD5 Algorithm = "md5"
)

// Default is the algorithm used when configuration does not name one.
const Default = BLAKE3

// Parse converts a configuration value to an Algorithm. The empty
// string selects Default.
func Parse(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case "":
		return Default, nil
	case BLAKE3, MD5:
		return Algorithm(name), nil
	default:
		return "", fmt.Errorf("unknown digest algorithm %q (want %q or %q)", name, BLAKE3, MD5)
	}
}

// Digest is a 128-bit content fingerprint.
type Digest [Size]byte

// String returns the lower-case hex encoding used as side-store key.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Sum computes the digest of data.
func (algorithm Algorithm) Sum(data []byte) Digest {
	var result Digest
	switch algorithm {
	case BLAKE3, "":
		full := blake3.Sum256(data)
		copy(result[:], full[:Size])
	case MD5:
		result = md5.Sum(data)
	default:
		panic(fmt.Sprintf("digest: unknown algorithm %q", string(algorithm)))
	}
	return result
}

// Hex is shorthand for algorithm.Sum(data).String().
func (algorithm Algorithm) Hex(data []byte) string {
	return algorithm.Sum(data).String()
}

// ParseHex parses a 32-character hex string back into a Digest.
func ParseHex(hexString string) (Digest, error) {
	var result Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return result, fmt.Errorf("parsing content digest: %w", err)
	}
	if len(decoded) != Size {
		return result, fmt.Errorf("content digest is %d bytes, want %d", len(decoded), Size)
	}
	copy(result[:], decoded)
	return result, nil
}
