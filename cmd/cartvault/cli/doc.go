// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind the cartvault
// binary: a tree of [Command] values with pflag flag sets, structured
// help, "did you mean" suggestions for mistyped commands and flags,
// terminal-aware logging ([NewCommandLogger]) and table output
// ([Table]).
package cli
