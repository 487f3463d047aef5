// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"fmt"
	"strconv"
)

// Kind is the category of a stored artifact. The set is closed; every
// per-kind decision in this package is an exhaustive switch.
type Kind int

const (
	// KindCart is the serialized identity snapshot (user overrides).
	KindCart Kind = iota + 1

	// KindGame is the ROM dump.
	KindGame

	// KindSave is a save-RAM snapshot, the only historized kind.
	KindSave

	// KindMetadata is the descriptive record fetched for a game.
	KindMetadata

	// KindImage is box-art, transported as base64 text.
	KindImage

	// KindDeviceImage is a device-specific image keyed by a
	// caller-supplied checksum rather than by cartridge id.
	KindDeviceImage
)

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindCart, KindGame, KindSave, KindMetadata, KindImage, KindDeviceImage}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= KindCart && k <= KindDeviceImage
}

func (k Kind) String() string {
	switch k {
	case KindCart:
		return "CART"
	case KindGame:
		return "GAME"
	case KindSave:
		return "SAVE"
	case KindMetadata:
		return "METADATA"
	case KindImage:
		return "IMAGE"
	case KindDeviceImage:
		return "DEVICE_IMAGE"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseKind converts the upper-case name of a kind back to a Kind.
func ParseKind(name string) (Kind, error) {
	for _, kind := range Kinds() {
		if kind.String() == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown artifact kind %q", name)
}

// subdirectory is the directory directly under the root that holds
// every artifact of the kind. Saves share the game tree.
func (k Kind) subdirectory() string {
	switch k {
	case KindCart:
		return "cart"
	case KindGame, KindSave:
		return "game"
	case KindMetadata:
		return "metadata"
	case KindImage:
		return "image"
	case KindDeviceImage:
		return "device_image"
	default:
		panic(fmt.Sprintf("memory: no subdirectory for %s", k))
	}
}
