// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"

	"github.com/cartvault/cartvault/cmd/cartvault/cli"
	"github.com/cartvault/cartvault/lib/memory"
)

// ExitCode maps a command error to the process exit code. Rejected
// input (usage errors and storage validation errors) exits with
// [cli.ExitUsage]; everything else exits with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var usage *cli.UsageError
	if errors.As(err, &usage) {
		return cli.ExitUsage
	}
	var validation *memory.ValidationError
	if errors.As(err, &validation) {
		return cli.ExitUsage
	}
	return 1
}
