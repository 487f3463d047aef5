// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the cartvault binary.
//
// [GitCommit], [GitDirty], [BuildTime] and [Version] are injected at
// build time via -ldflags -X. When they are not (go install, go run,
// test binaries), the commit and dirty flag fall back to the VCS
// stamps the Go toolchain embeds in the binary.
package version
