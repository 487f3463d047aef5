// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for cartvault.
//
// Configuration is loaded from a single file specified by either the
// CARTVAULT_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic file search. Commands that
// run without either use [Default].
//
// The file may contain environment-specific sections (development,
// production) that override base values when [Config].Environment
// matches. Production defaults to the SQLite side-store.
//
// ${HOME} and ${VAR:-default} patterns are expanded in memory.root
// after loading. No other environment variables override
// config values.
//
// Key exports:
//
//   - [Config] -- master struct with Memory, Archive and Log sections
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
package config
