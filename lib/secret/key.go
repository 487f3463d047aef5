// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"os"
)

// ReadKeyFile loads the first key line of an age identity file, as
// written by "cartvault archive keygen" or age-keygen. Blank lines and
// "#" comments are skipped. The file contents are zeroed after the key
// is copied out.
func ReadKeyFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	defer zero(data)

	for line := range bytes.Lines(data) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		return FromBytes(line)
	}
	return nil, fmt.Errorf("key file %s holds no key", path)
}
