// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cart

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the persisted part of an Identity: the fields a user can
// override by hand. It is the content of the CART artifact.
type Snapshot struct {
	IDOverride         *string  `json:"id_override"`
	ImageRatioOverride *float64 `json:"image_ratio_override"`
}

// Snapshot returns the overridable fields of the identity.
func (identity Identity) Snapshot() Snapshot {
	return Snapshot{
		IDOverride:         identity.IDOverride,
		ImageRatioOverride: identity.ImageRatioOverride,
	}
}

// MarshalSnapshot encodes the identity's snapshot as compact JSON, the
// content form the storage engine expects for the CART kind.
func (identity Identity) MarshalSnapshot() ([]byte, error) {
	data, err := json.Marshal(identity.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("encoding cart snapshot for %s: %w", identity.ID(), err)
	}
	return data, nil
}

// ApplySnapshot loads a previously stored snapshot into the identity.
// Only the overridable fields change; header fields always come from
// the cartridge. Unknown JSON fields are ignored.
func (identity *Identity) ApplySnapshot(data []byte) error {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("decoding cart snapshot: %w", err)
	}
	identity.IDOverride = snapshot.IDOverride
	identity.ImageRatioOverride = snapshot.ImageRatioOverride
	return nil
}
