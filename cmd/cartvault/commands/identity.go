// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/cartvault/cartvault/cmd/cartvault/cli"
	"github.com/cartvault/cartvault/lib/cart"
	"github.com/cartvault/cartvault/lib/memory"
)

// identityFlags describe one cartridge on the command line, as read
// from its header.
type identityFlags struct {
	title      string
	code       string
	checksum   string
	support    string
	region     string
	idOverride string
	imageRatio float64
}

func (f *identityFlags) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.title, "title", "", "cartridge header title")
	flagSet.StringVar(&f.code, "code", "", "cartridge header game code")
	flagSet.StringVar(&f.checksum, "checksum", "", "cartridge header checksum")
	flagSet.StringVar(&f.support, "support", "", "GAMEBOY, GAMEBOY_OR_GAMEBOY_COLOR, GAMEBOY_COLOR or GAMEBOY_ADVANCE")
	flagSet.StringVar(&f.region, "region", "", "cartridge region (default UNKNOWN)")
	flagSet.StringVar(&f.idOverride, "id-override", "", "identifier replacing title_code$checksum")
	flagSet.Float64Var(&f.imageRatio, "image-ratio", 0, "box-art width/height ratio override")
}

// identity builds the cartridge identity from the flags. Overrides not
// given on the command line are taken from the stored CART snapshot,
// when one exists.
func (f *identityFlags) identity(ctx context.Context, changed func(name string) bool, store memory.Memory) (cart.Identity, error) {
	if f.title == "" || f.support == "" {
		return cart.Identity{}, cli.Usagef("--title and --support are required")
	}
	support, err := cart.ParseSupport(f.support)
	if err != nil {
		return cart.Identity{}, &cli.UsageError{Message: err.Error()}
	}
	region, err := cart.ParseRegion(f.region)
	if err != nil {
		return cart.Identity{}, &cli.UsageError{Message: err.Error()}
	}

	identity := cart.Identity{
		Title:          f.title,
		Code:           f.code,
		HeaderChecksum: f.checksum,
		Support:        support,
		Region:         region,
	}

	snapshot, err := store.GetByName(ctx, identity.CartFilename(), memory.KindCart, true)
	if err != nil {
		return cart.Identity{}, err
	}
	if snapshot != nil {
		if err := identity.ApplySnapshot(snapshot.Content); err != nil {
			return cart.Identity{}, err
		}
	}

	if changed("id-override") {
		identity.IDOverride = &f.idOverride
	}
	if changed("image-ratio") {
		identity.ImageRatioOverride = &f.imageRatio
	}
	return identity, nil
}

func formatVersion(version int) string {
	if version == 0 {
		return "current"
	}
	return strconv.Itoa(version)
}
