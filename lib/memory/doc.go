// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory is the local storage engine for cartridge artifacts.
//
// Every artifact a backup session produces (the cartridge snapshot, the
// ROM dump, save-RAM snapshots, descriptive metadata, box-art and
// device-specific images) lives in a plain directory tree under one
// storage root:
//
//	<root>/<kind-subdir>/<support-subdir>/<filename>[.<n>]
//	<root>/data.json
//
// Names are pure functions of the cartridge identity ([cart.Identity])
// and the artifact [Kind], so the same cartridge always resolves to the
// same files. See [Resolver].
//
// Saves are never overwritten. Before a new save is written, the
// current file is renamed to the lowest unused positive suffix (.1, .2,
// ...), so a higher suffix is always a more recent snapshot and the
// unsuffixed file is always the newest. If the new write fails the
// historized file is renamed back, leaving the tree exactly as it was.
// All kinds are written through a temporary file in the target
// directory followed by a rename, so readers never see partial content.
//
// Writing content that is byte-identical (after encoding) to the
// current file is a no-op: nothing is renamed, written, or recorded.
//
// Free-form attributes passed to Save are recorded in a side-store
// (package sidestore) keyed by a 128-bit digest of the content in its
// transport form. Reads compute the same digest from what is on disk
// and attach whatever attributes were recorded.
//
// Writes to one cartridge are serialized inside the process by a
// per-identity mutex. There is no locking across processes sharing a
// root, and no atomicity across artifact kinds.
package memory
