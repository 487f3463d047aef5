// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds archive key material outside the Go heap.
//
// A [Buffer] is an anonymous mmap region locked into RAM (mlock) and
// excluded from core dumps (MADV_DONTDUMP). Close zeroes, unlocks and
// unmaps it. [ReadKeyFile] loads the secret key of an age identity file
// into a Buffer so that decrypting an archive never leaves the key in
// garbage-collected memory longer than the API boundary requires.
package secret
