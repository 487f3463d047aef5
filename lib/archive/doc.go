// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive backs up and restores a whole storage root as a
// single stream: a tar of every regular file (paths relative to the
// root, modification times preserved), compressed with zstd or lz4,
// optionally encrypted to an age X25519 recipient.
//
// Layering, outermost first: age (when a recipient is set), then the
// compressor, then tar. Extract peels the same layers in reverse and
// refuses entries whose names would land outside the target root.
//
// Archives are taken from a quiescent root. A save running during
// Create may or may not be captured; the atomic rename in the storage
// engine guarantees only that a captured file is complete.
package archive
