// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"

	"github.com/cartvault/cartvault/lib/cart"
)

// Nop is a Memory that stores nothing. Saves succeed without writing
// and queries find nothing. It backs the "no memory" mode, where a
// session reads and writes cartridges without keeping local copies.
type Nop struct{}

var (
	_ Memory = Nop{}
	_ Memory = (*LocalMemory)(nil)
)

func (Nop) Configure(context.Context) error { return nil }

func (Nop) Save(context.Context, cart.Identity, []byte, Kind, map[string]string) (SaveResult, error) {
	return SaveResult{}, nil
}

func (Nop) GetByName(context.Context, string, Kind, bool) (*GameData, error) {
	return nil, nil
}

func (Nop) GetAll(context.Context, cart.Identity, *Kind, bool) ([]GameData, error) {
	return nil, nil
}

func (Nop) UpdateConfiguration(context.Context, Configuration) error { return nil }
