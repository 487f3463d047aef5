// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sidestore is the metadata side-store: a table mapping content
// digests to small free-form attribute sets such as
// {"tag": "CARTRIDGE"} or {"crc": "1A2B3C4D"}.
//
// The storage engine depends only on the [Store] interface. Two
// backends exist:
//
//   - [FileStore] keeps the whole table in <root>/data.json as a flat
//     JSON object (digest → attributes). This is the on-disk format of
//     existing installations. Every Put loads the file, replaces one
//     entry and writes the file back atomically. Concurrent writers in
//     different processes are last-writer-wins.
//
//   - [SQLiteStore] keeps the table in <root>/data.db, one row per
//     digest, with values encoded by lib/codec. Each Put is its own
//     immediate transaction.
//
// Entries are never removed. Metadata for artifacts that have been
// deleted or rotated out stays behind; it is harmless because lookups
// are always by the digest of content that exists.
//
// [Migrate] copies a table from one backend into another, which is how
// a data.json installation moves to SQLite.
package sidestore
