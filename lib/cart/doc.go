// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cart describes a physical handheld cartridge as seen by the
// storage engine: its header fields, the handheld variant it targets,
// and the deterministic names derived from them.
//
// The canonical identifier returned by [Identity.ID] is the only thing
// the storage engine uses to tell cartridges apart. Two identities with
// the same ID address the same files, so callers must keep IDs unique
// per physical cartridge (an [Identity.IDOverride] exists precisely to
// separate carts whose headers collide).
//
// Filenames are pure functions of the identity:
//
//	CartFilename()              "{title}_{code}@{checksum}.json"
//	GameFilename()              "{id}.gb" | "{id}.gbc" | "{id}.gba"
//	SaveFilename()              "{id}.sav"
//	MetadataFilename()          "{id}.json"
//	ImageFilename()             "{id}.png"
//	DeviceImageFilename(crc)    "{crc}.bin"
//
// The CART artifact stores a [Snapshot]: the subset of identity fields
// a user may override by hand (ID and image ratio). Everything else is
// re-read from the cartridge header on every insertion.
package cart
