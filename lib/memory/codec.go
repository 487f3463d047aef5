// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"
)

// Encode converts content from its transport form to the bytes stored
// on disk:
//
//   - KindCart, KindMetadata: a JSON document, stored indented with two
//     spaces and a trailing newline. Comments and trailing commas are
//     accepted and stripped.
//   - KindImage: standard base64 text, stored as the decoded bytes.
//   - everything else: stored verbatim.
func Encode(kind Kind, content []byte) ([]byte, error) {
	switch kind {
	case KindCart, KindMetadata:
		document, err := normalizeJSON(content)
		if err != nil {
			return nil, err
		}
		var indented bytes.Buffer
		if err := json.Indent(&indented, document, "", "  "); err != nil {
			return nil, fmt.Errorf("indenting JSON document: %w", err)
		}
		indented.WriteByte('\n')
		return indented.Bytes(), nil
	case KindImage:
		decoded, err := base64.StdEncoding.DecodeString(string(content))
		if err != nil {
			return nil, fmt.Errorf("decoding base64 image: %w", err)
		}
		return decoded, nil
	case KindGame, KindSave, KindDeviceImage:
		return content, nil
	default:
		panic(fmt.Sprintf("memory: no codec for %s", kind))
	}
}

// Decode converts stored bytes back to the transport form: compact
// JSON for KindCart and KindMetadata, standard base64 for KindImage,
// verbatim for everything else. Stored JSON may have been edited by
// hand, so comments and trailing commas are tolerated.
func Decode(kind Kind, stored []byte) ([]byte, error) {
	switch kind {
	case KindCart, KindMetadata:
		return compactJSON(stored)
	case KindImage:
		return []byte(base64.StdEncoding.EncodeToString(stored)), nil
	case KindGame, KindSave, KindDeviceImage:
		return stored, nil
	default:
		panic(fmt.Sprintf("memory: no codec for %s", kind))
	}
}

// Canonical returns the transport form Decode(kind, Encode(kind,
// content)) would produce, without the round trip. Content digests are
// computed over this form so that a digest taken at save time matches
// the one taken when the artifact is read back.
func Canonical(kind Kind, content []byte) ([]byte, error) {
	switch kind {
	case KindCart, KindMetadata:
		return compactJSON(content)
	case KindImage:
		decoded, err := base64.StdEncoding.DecodeString(string(content))
		if err != nil {
			return nil, fmt.Errorf("decoding base64 image: %w", err)
		}
		return []byte(base64.StdEncoding.EncodeToString(decoded)), nil
	case KindGame, KindSave, KindDeviceImage:
		return content, nil
	default:
		panic(fmt.Sprintf("memory: no codec for %s", kind))
	}
}

// normalizeJSON strips comments and trailing commas and checks that
// what remains is a single valid JSON document.
func normalizeJSON(content []byte) ([]byte, error) {
	document := jsonc.ToJSON(content)
	if !json.Valid(document) {
		return nil, fmt.Errorf("content is not a valid JSON document")
	}
	return document, nil
}

func compactJSON(content []byte) ([]byte, error) {
	document, err := normalizeJSON(content)
	if err != nil {
		return nil, err
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, document); err != nil {
		return nil, fmt.Errorf("compacting JSON document: %w", err)
	}
	return compact.Bytes(), nil
}
